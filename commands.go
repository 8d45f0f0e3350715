package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"photo-catalog/catalog"
	"photo-catalog/config"
	"photo-catalog/export"
	"photo-catalog/store"
	"photo-catalog/thumbnail"
)

// app carries everything a command needs once configuration has been loaded.
type app struct {
	configPath string

	cfg    *config.Config
	logger *zap.Logger
	store  catalog.Store
	mgr    *catalog.Manager
	sess   *catalog.Session
	prompt *prompter
	out    io.Writer
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photos",
		Short: "Photo catalog with albums, tags and search",
		Long: `Photos keeps per-user albums of image files on disk.

Albums reference photos by path; a photo shared by several albums keeps one caption and one set
of tags. Run without a subcommand to start the interactive shell.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runShell()
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML config file")

	cmd.AddCommand(
		newShellCmd(a),
		newUsersCmd(a),
		newSearchCmd(a),
		newExportCmd(a),
		newThumbnailCmd(a),
	)
	return cmd
}

func (a *app) open(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(""); err != nil {
		return err
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store, cfg.Snapshot, logger)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	logger.Debug("store opened", zap.String("driver", cfg.Store), zap.String("path", cfg.Snapshot))

	cat := catalog.LoadOrInit(st, cfg.StockDir, logger)
	a.cfg, a.logger, a.store = cfg, logger, st
	a.mgr = catalog.NewManager(cat, st, catalog.WithLogger(logger), catalog.WithLocation(loc))
	a.sess = catalog.NewSession(a.mgr, catalog.SessionOptions{AutoCreateUsers: cfg.AutoCreateUsers})
	a.out = cmd.OutOrStdout()
	a.prompt = newPrompter(cmd.InOrStdin(), a.out)
	return nil
}

// close flushes the logger and releases the store. Safe to call when open never ran.
func (a *app) close() error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

func (a *app) location() *time.Location {
	loc, err := a.cfg.Location()
	if err != nil {
		return time.Local
	}
	return loc
}

func (a *app) runShell() error {
	thumbs := thumbnail.NewDecoder(a.cfg.ThumbCacheSize, a.cfg.ThumbTTL, a.logger)
	newShell(a.prompt, a.mgr, a.sess, thumbs, a.location()).run()
	return nil
}

// login authenticates username for a one-shot command, prompting for a password when the
// account has one.
func (a *app) login(username string) (*catalog.User, error) {
	var password string
	if needsPassword(a.mgr.Catalog(), username) {
		pw, err := a.prompt.readPassword(fmt.Sprintf("Password for %s: ", username))
		if err != nil {
			return nil, err
		}
		password = pw
	}
	u, err := a.sess.Login(username, password)
	if u == nil {
		return nil, err
	}
	if err != nil {
		a.logger.Warn("login", zap.Error(err))
	}
	return u, nil
}

// loginOwner logs in an account that keeps albums, refusing the administrator.
func (a *app) loginOwner(username string) (*catalog.User, error) {
	if _, err := a.login(username); err != nil {
		return nil, err
	}
	return a.sess.RequireOwner()
}

func (a *app) loginAdmin() error {
	if _, err := a.login(catalog.AdminUsername); err != nil {
		return err
	}
	return a.sess.RequireAdmin()
}

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runShell()
		},
	}
}

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts (administrator only)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loginAdmin(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%-25s %-15s %-8s %-10s\n", "Username", "Role", "Albums", "Photos")
			fmt.Fprintln(a.out, strings.Repeat("-", 62))
			for _, u := range a.mgr.Users() {
				fmt.Fprintf(a.out, "%-25s %-15s %-8d %-10d\n", truncateString(u.Username, 25), u.Role, len(u.Albums), len(u.Photos))
			}
			return nil
		},
	})

	var password string
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a regular account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loginAdmin(); err != nil {
				return err
			}
			u, err := a.mgr.CreateUser(args[0], password)
			if u == nil {
				return err
			}
			fmt.Fprintf(a.out, "Added user '%s'.\n", u.Username)
			return err
		},
	}
	add.Flags().StringVar(&password, "password", "", "Initial password (optional)")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <username>",
		Short: "Delete an account and all its albums",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loginAdmin(); err != nil {
				return err
			}
			err := a.mgr.DeleteUser(args[0])
			if err != nil && !errors.Is(err, catalog.ErrPersistence) {
				return err
			}
			fmt.Fprintf(a.out, "Deleted user '%s'.\n", args[0])
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "passwd <username>",
		Short: "Set or clear an account password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loginAdmin(); err != nil {
				return err
			}
			u, ok := a.mgr.Catalog().User(args[0])
			if !ok {
				return fmt.Errorf("%w: user %q", catalog.ErrNotFound, args[0])
			}
			pw, err := a.prompt.readPassword(fmt.Sprintf("New password for %s (blank to remove): ", u.Username))
			if err != nil {
				return err
			}
			if err := a.mgr.SetPassword(u, pw); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Password updated.")
			return nil
		},
	})
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var username, saveAs string
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search a user's photos by date or tags",
	}
	cmd.PersistentFlags().StringVarP(&username, "user", "u", "", "Account to search (required)")
	cmd.PersistentFlags().StringVar(&saveAs, "save-as", "", "Save the results as a new album")
	_ = cmd.MarkPersistentFlagRequired("user")

	var from, to string
	byDate := &cobra.Command{
		Use:   "date",
		Short: "Photos captured between two days, inclusive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.loginOwner(username)
			if err != nil {
				return err
			}
			start, end, err := catalog.ParseDateRange(from, to, a.location())
			if err != nil {
				return err
			}
			results, err := a.mgr.SearchByDate(u, start, end)
			if err != nil {
				return err
			}
			return a.printResults(u, results, saveAs)
		},
	}
	byDate.Flags().StringVar(&from, "from", "", "First day (YYYY-MM-DD)")
	byDate.Flags().StringVar(&to, "to", "", "Last day (YYYY-MM-DD)")
	_ = byDate.MarkFlagRequired("from")
	_ = byDate.MarkFlagRequired("to")

	var (
		tags []string
		op   string
	)
	byTags := &cobra.Command{
		Use:   "tags",
		Short: "Photos carrying one tag, or two tags combined with and/or",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := buildTagQuery(tags, op)
			if err != nil {
				return err
			}
			u, err := a.loginOwner(username)
			if err != nil {
				return err
			}
			results, err := a.mgr.SearchByTags(u, q)
			if err != nil {
				return err
			}
			return a.printResults(u, results, saveAs)
		},
	}
	byTags.Flags().StringArrayVarP(&tags, "tag", "t", nil, "Tag as name=value (repeat once for a second tag)")
	byTags.Flags().StringVar(&op, "op", "and", "How to combine two tags: and, or")

	cmd.AddCommand(byDate, byTags)
	return cmd
}

func buildTagQuery(tags []string, op string) (catalog.TagQuery, error) {
	var q catalog.TagQuery
	if len(tags) == 0 || len(tags) > 2 {
		return q, fmt.Errorf("%w: give one or two --tag flags", catalog.ErrInvalidInput)
	}
	pairs := make([]catalog.TagPair, len(tags))
	for i, raw := range tags {
		t, err := catalog.ParseTag(raw)
		if err != nil {
			return q, err
		}
		pairs[i] = catalog.TagPair{Name: t.Name, Value: t.Value}
	}
	q.First = pairs[0]
	if len(pairs) == 2 {
		q.Second = pairs[1]
	}
	combinator, err := catalog.ParseCombinator(op)
	if err != nil {
		return q, err
	}
	q.Op = combinator
	return q, nil
}

func (a *app) printResults(u *catalog.User, results []*catalog.Photo, saveAs string) error {
	if len(results) == 0 {
		fmt.Fprintln(a.out, "No matching photos.")
		return nil
	}
	loc := a.location()
	fmt.Fprintf(a.out, "%-12s %-30s %s\n", "Date", "Photo", "Path")
	fmt.Fprintln(a.out, strings.Repeat("-", 80))
	for _, p := range results {
		fmt.Fprintf(a.out, "%-12s %-30s %s\n", formatDate(p.CaptureDate, true, loc), truncateString(p.DisplayName(), 30), p.Path)
	}
	if saveAs == "" {
		return nil
	}
	album, err := a.mgr.SaveResultsAsAlbum(u, saveAs, results)
	if album == nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %d photo(s) to '%s'.\n", album.Size(), album.Name)
	return err
}

func newExportCmd(a *app) *cobra.Command {
	var (
		username, out string
		verify        bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a user's albums and photos to a Parquet file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.loginOwner(username)
			if err != nil {
				return err
			}
			if out == "" {
				out = u.Username + ".parquet"
			}
			n, err := export.WriteFile(out, u)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Wrote %d row(s) to %s\n", n, out)
			a.logger.Info("export written", zap.String("user", u.Username), zap.String("path", out), zap.Int("rows", n))

			if !verify {
				return nil
			}
			rows, err := export.ReadFile(out)
			if err != nil {
				return fmt.Errorf("verify: %w", err)
			}
			if len(rows) != n {
				return fmt.Errorf("verify: read %d row(s), wrote %d", len(rows), n)
			}
			fmt.Fprintln(a.out, "Verified.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "user", "u", "", "Account to export (required)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default <user>.parquet)")
	cmd.Flags().BoolVar(&verify, "verify", false, "Read the file back and check the row count")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newThumbnailCmd(a *app) *cobra.Command {
	var (
		username, album, out string
		index, size          int
	)
	cmd := &cobra.Command{
		Use:   "thumbnail",
		Short: "Write a PNG thumbnail of a photo in an album",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.loginOwner(username)
			if err != nil {
				return err
			}
			al, err := a.mgr.Album(u, album)
			if err != nil {
				return err
			}
			photos := a.mgr.AlbumPhotos(u, al)
			if index < 1 || index > len(photos) {
				return fmt.Errorf("%w: album '%s' has %d photo(s)", catalog.ErrInvalidInput, al.Name, len(photos))
			}
			p := photos[index-1]

			dec := thumbnail.NewDecoder(a.cfg.ThumbCacheSize, a.cfg.ThumbTTL, a.logger)
			img, err := dec.Thumbnail(p.Path, size, size)
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := thumbnail.WritePNG(f, img); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			b := img.Bounds()
			fmt.Fprintf(a.out, "Wrote %dx%d thumbnail of %s to %s\n", b.Dx(), b.Dy(), p.DisplayName(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "user", "u", "", "Account owning the album (required)")
	cmd.Flags().StringVarP(&album, "album", "a", "", "Album name (required)")
	cmd.Flags().IntVarP(&index, "photo", "n", 1, "1-based photo position in the album")
	cmd.Flags().IntVar(&size, "size", 256, "Bounding box in pixels")
	cmd.Flags().StringVarP(&out, "out", "o", "thumbnail.png", "Output PNG file")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("album")
	return cmd
}
