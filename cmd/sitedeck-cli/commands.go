package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/fruitsalade/sitedeck/internal/access"
	"github.com/fruitsalade/sitedeck/pkg/client"
	"github.com/fruitsalade/sitedeck/pkg/format"
	"github.com/fruitsalade/sitedeck/pkg/models"
	"github.com/fruitsalade/sitedeck/pkg/tree"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the authentication state of the API session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		if apiKey != "" || username != "" {
			var err error
			if c, err = session(cmd.Context()); err != nil {
				return err
			}
		}
		status, err := c.AuthStatus(cmd.Context())
		if err != nil {
			return err
		}
		s := client.Session(status)
		out := cmd.OutOrStdout()
		if !s.Authenticated {
			fmt.Fprintln(out, "not authenticated")
			return nil
		}
		fmt.Fprintf(out, "authenticated as %s (username: %t, api key: %t)\n", s.DisplayName(), s.HasUsername, s.HasAPIKey)
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show site statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := session(cmd.Context())
		if err != nil {
			return err
		}
		info, err := c.SiteInfo(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "Domain\t%s\n", info.DisplayDomain())
		fmt.Fprintf(tw, "Hits\t%s\n", format.Hits(info.Hits))
		fmt.Fprintf(tw, "Created\t%s\n", format.Date(info.CreatedAt))
		updated := format.Date(info.LastUpdated)
		if rel := format.Relative(info.LastUpdated); rel != "" {
			updated += " (" + rel + ")"
		}
		fmt.Fprintf(tw, "Last updated\t%s\n", updated)
		return tw.Flush()
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := ""
		if len(args) == 1 {
			dir = tree.Clean(args[0])
		}
		c, err := session(cmd.Context())
		if err != nil {
			return err
		}
		files, err := c.List(cmd.Context(), dir)
		if err != nil {
			return err
		}
		return printListing(cmd.OutOrStdout(), files)
	},
}

func printListing(w io.Writer, files []models.FileEntry) error {
	if len(files) == 0 {
		fmt.Fprintln(w, "No files found in this directory")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tUPDATED")
	for _, f := range tree.Sort(files) {
		name := f.Name()
		if f.IsDirectory {
			name += "/"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, format.Size(f), format.Date(f.UpdatedAt))
	}
	dirs, n := tree.CountDirs(files)
	fmt.Fprintf(tw, "\n%d directories, %d files\n", dirs, n)
	return tw.Flush()
}

var catCmd = &cobra.Command{
	Use:   "cat <path>",
	Short: "Print a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := session(cmd.Context())
		if err != nil {
			return err
		}
		content, err := c.Read(cmd.Context(), tree.Clean(args[0]))
		if err != nil {
			return err
		}
		_, err = io.WriteString(cmd.OutOrStdout(), content)
		return err
	},
}

var putDir string

var putCmd = &cobra.Command{
	Use:   "put <file>...",
	Short: "Upload local files in one request",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := make([]client.UploadFile, 0, len(args))
		for _, name := range args {
			f, err := os.Open(name)
			if err != nil {
				return err
			}
			defer f.Close()
			files = append(files, client.UploadFile{Name: filepath.Base(name), Content: f})
		}
		c, err := session(cmd.Context())
		if err != nil {
			return err
		}
		if err := c.Upload(cmd.Context(), files, tree.Clean(putDir)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "uploaded %d file(s)\n", len(files))
		return nil
	},
}

var (
	createContent string
	createDir     string
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a text file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if name == "" {
			return fmt.Errorf("file name is required")
		}
		c, err := session(cmd.Context())
		if err != nil {
			return err
		}
		dir := tree.Clean(createDir)
		if err := c.CreateFile(cmd.Context(), name, createContent, dir); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", tree.BuildChildPath(dir, name))
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <path>...",
	Short: "Delete files or directories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := make([]string, 0, len(args))
		for _, a := range args {
			p := tree.Clean(a)
			if !tree.Deletable(models.FileEntry{Path: p}) {
				return fmt.Errorf("refusing to delete %s", p)
			}
			paths = append(paths, p)
		}
		c, err := session(cmd.Context())
		if err != nil {
			return err
		}
		if err := c.Delete(cmd.Context(), paths...); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", strings.Join(paths, ", "))
		return nil
	},
}

var hashCost int

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print a bcrypt hash for DASHBOARD_PASSWORD_BCRYPT",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := access.HashPassword(args[0], hashCost)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), h)
		return nil
	},
}

func init() {
	putCmd.Flags().StringVar(&putDir, "path", "", "destination directory")
	createCmd.Flags().StringVar(&createContent, "content", "", "file content")
	createCmd.Flags().StringVar(&createDir, "path", "", "destination directory")
	hashPasswordCmd.Flags().IntVar(&hashCost, "cost", bcrypt.DefaultCost, "bcrypt cost")
}
