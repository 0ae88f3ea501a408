package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/shelf/internal/scheduler"
)

var (
	importBookmarks string
	importServices  string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import Homepage bookmarks and services once",
	Long: `Import Homepage bookmarks.yaml and services.yaml into the directory.
Entries whose URL is already present are skipped. Files default to
SHELF_BOOKMARK_FILE and SHELF_SERVICES_FILE.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, core, err := openCore(cmd.Context())
		if err != nil {
			return err
		}
		defer core.Close()

		var files []scheduler.ImportFile
		if path := firstSet(importBookmarks, cfg.BookmarkFile); path != "" {
			files = append(files, scheduler.ImportFile{Kind: scheduler.KindBookmarks, Path: path})
		}
		if path := firstSet(importServices, cfg.ServicesFile); path != "" {
			files = append(files, scheduler.ImportFile{Kind: scheduler.KindServices, Path: path})
		}
		if len(files) == 0 {
			return errors.New("nothing to import: pass --bookmarks or --services")
		}

		importer := scheduler.NewHomepageImporter(files, core.Directory, log, 0, false, nil)
		res, err := importer.Import(cmd.Context())
		if _, werr := fmt.Fprintf(cmd.OutOrStdout(), "read %d, created %d, skipped %d\n",
			res.Read, res.Created, res.Skipped); werr != nil && err == nil {
			err = werr
		}
		return err
	},
}

func init() {
	importCmd.Flags().StringVar(&importBookmarks, "bookmarks", "", "Path to a Homepage bookmarks.yaml")
	importCmd.Flags().StringVar(&importServices, "services", "", "Path to a Homepage services.yaml")
}

func firstSet(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
