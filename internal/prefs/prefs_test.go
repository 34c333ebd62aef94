package prefs

import (
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "prefs.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, path
}

func TestDarkModeDefaultsOff(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	on, err := s.DarkMode()
	if err != nil {
		t.Fatal(err)
	}
	if on {
		t.Error("dark mode should be off when never set")
	}
}

func TestDarkModePersists(t *testing.T) {
	s, path := openTemp(t)
	if err := s.SetDarkMode(true); err != nil {
		t.Fatal(err)
	}
	v, ok, err := s.Get(DarkModeKey)
	if err != nil || !ok || v != "true" {
		t.Fatalf("stored value = %q %v %v", v, ok, err)
	}
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	on, err := s2.DarkMode()
	if err != nil || !on {
		t.Fatalf("expected dark mode after reopen, got %v %v", on, err)
	}

	if err := s2.SetDarkMode(false); err != nil {
		t.Fatal(err)
	}
	v, _, _ = s2.Get(DarkModeKey)
	if v != "false" {
		t.Errorf("expected \"false\", got %q", v)
	}
}

func TestDarkModeOnlyExactTrue(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	for _, v := range []string{"TRUE", "1", "yes", ""} {
		if err := s.Set(DarkModeKey, v); err != nil {
			t.Fatal(err)
		}
		if on, _ := s.DarkMode(); on {
			t.Errorf("value %q must not enable dark mode", v)
		}
	}
}
