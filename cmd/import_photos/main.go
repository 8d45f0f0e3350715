package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"photo-catalog/catalog"
	"photo-catalog/config"
	"photo-catalog/store"
)

// summary counts the outcome of one import run.
type summary struct {
	Imported   int
	Duplicates int
	Errors     int
}

// importDir adds every supported image in dir to album, creating the album when missing.
// Files are visited in directory order; subdirectories are ignored.
func importDir(mgr *catalog.Manager, u *catalog.User, albumName, dir string, out io.Writer) (summary, error) {
	var sum summary

	files, err := os.ReadDir(dir)
	if err != nil {
		return sum, fmt.Errorf("read %s: %w", dir, err)
	}

	album, err := mgr.Album(u, albumName)
	if errors.Is(err, catalog.ErrNotFound) {
		album, err = mgr.CreateAlbum(u, albumName)
		if album != nil {
			fmt.Fprintf(out, "Created album '%s'.\n", album.Name)
		}
	}
	if album == nil {
		return sum, err
	}

	for _, file := range files {
		if !file.Type().IsRegular() || !catalog.IsImageFile(file.Name()) {
			continue
		}

		fmt.Fprintf(out, "Importing: %s... ", file.Name())
		p, err := mgr.AddPhoto(u, album, filepath.Join(dir, file.Name()))
		switch {
		case errors.Is(err, catalog.ErrDuplicateContent):
			fmt.Fprintln(out, "ALREADY PRESENT")
			sum.Duplicates++
		case p == nil:
			fmt.Fprintf(out, "FAILED: %v\n", err)
			sum.Errors++
		case err != nil:
			// Added in memory but the snapshot could not be written.
			fmt.Fprintf(out, "SUCCESS (not saved: %v)\n", err)
			sum.Imported++
		default:
			fmt.Fprintln(out, "SUCCESS")
			sum.Imported++
		}
	}
	return sum, nil
}

// importUser logs in the account receiving the photos. The importer never prompts, so
// password-protected accounts are refused up front.
func importUser(mgr *catalog.Manager, sess *catalog.Session, username string) (*catalog.User, error) {
	if u, ok := mgr.Catalog().User(username); ok && u.HasPassword() {
		return nil, fmt.Errorf("user %s is password protected; import through the shell instead", u.Username)
	}
	u, err := sess.Login(username, "")
	if u == nil {
		return nil, fmt.Errorf("user %s: %w", username, err)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if _, err := sess.RequireOwner(); err != nil {
		return nil, err
	}
	return u, nil
}

func newImportCmd() *cobra.Command {
	var (
		configPath, username, albumName string
		createUser                      bool
	)

	cmd := &cobra.Command{
		Use:   "import_photos <dir>",
		Short: "Import every image in a directory into a user's album",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(""); err != nil {
				return err
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger, err := config.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			st, err := store.Open(cfg.Store, cfg.Snapshot, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			mgr := catalog.NewManager(catalog.LoadOrInit(st, cfg.StockDir, logger), st, catalog.WithLogger(logger))
			sess := catalog.NewSession(mgr, catalog.SessionOptions{AutoCreateUsers: createUser || cfg.AutoCreateUsers})
			u, err := importUser(mgr, sess, username)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Importing images from %s into %s/%s...\n", args[0], u.Username, albumName)
			sum, err := importDir(mgr, u, albumName, args[0], out)
			if err != nil {
				return err
			}
			logger.Info("import finished",
				zap.String("user", u.Username),
				zap.String("album", albumName),
				zap.Int("imported", sum.Imported),
				zap.Int("duplicates", sum.Duplicates),
				zap.Int("errors", sum.Errors))

			fmt.Fprintln(out, "\nImport complete!")
			fmt.Fprintf(out, "Successfully imported: %d photos\n", sum.Imported)
			fmt.Fprintf(out, "Already present: %d\n", sum.Duplicates)
			fmt.Fprintf(out, "Errors: %d\n", sum.Errors)
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVarP(&username, "user", "u", catalog.StockUsername, "Account receiving the photos")
	cmd.Flags().StringVarP(&albumName, "album", "a", catalog.StockAlbum, "Album to import into (created if missing)")
	cmd.Flags().BoolVar(&createUser, "create-user", false, "Create the account if it does not exist")
	return cmd
}

func main() {
	if err := fang.Execute(context.Background(), newImportCmd()); err != nil {
		os.Exit(1)
	}
}
