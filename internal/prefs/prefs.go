// Package prefs persists UI preferences in a small bbolt file.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// DarkModeKey is the key the dark-mode flag is stored under.
const DarkModeKey = "darkMode"

var bucketName = []byte("prefs")

// Store is a key/value preference store.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the preference file at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create prefs dir: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open prefs %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init prefs bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the stored value for key and whether it exists.
func (s *Store) Get(key string) (string, bool, error) {
	var (
		val   string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketName).Get([]byte(key)); v != nil {
			val, found = string(v), true
		}
		return nil
	})
	return val, found, err
}

// Set stores value under key.
func (s *Store) Set(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte(value))
	})
}

// DarkMode reports whether dark mode is on. Anything other than the
// exact string "true" counts as off.
func (s *Store) DarkMode() (bool, error) {
	v, _, err := s.Get(DarkModeKey)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

// SetDarkMode persists the dark-mode flag as "true" or "false".
func (s *Store) SetDarkMode(on bool) error {
	v := "false"
	if on {
		v = "true"
	}
	return s.Set(DarkModeKey, v)
}
