package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmlinks/internal/exporter"
	"github.com/nikbrunner/bmlinks/internal/importer"
)

// NewImportCmd creates the import command.
func NewImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.html>",
		Short: "Import bookmarks from a browser HTML export",
		Long: `Import bookmarks from a Netscape bookmark file as written by browsers.
Folders with the same name under the same parent are merged and bookmarks
whose URL already exists are skipped. Link status attributes written by
"bmlinks export" are restored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			store, err := e.storage.Load()
			if err != nil {
				return fmt.Errorf("load bookmarks: %w", err)
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer file.Close()

			folders, bookmarks, err := importer.ParseHTMLBookmarks(file)
			if err != nil {
				return fmt.Errorf("parse HTML: %w", err)
			}

			added, skipped := store.ImportMerge(folders, bookmarks)

			if err := e.storage.Save(store); err != nil {
				return fmt.Errorf("save bookmarks: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d bookmarks, %d folders", added, len(folders))
			if skipped > 0 {
				fmt.Fprintf(out, " (%d duplicates skipped)", skipped)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Export bookmarks as browser-compatible HTML",
		Long: `Export all bookmarks as a Netscape bookmark file. Without a path the file
is written to the download directory as bmlinks-export-YYYY-MM-DD.html.
Checked bookmarks carry their link status as extra attributes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputPath := exporter.DefaultExportPath(time.Now())
			if len(args) == 1 {
				outputPath = args[0]
			}

			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			store, err := e.storage.Load()
			if err != nil {
				return fmt.Errorf("load bookmarks: %w", err)
			}

			file, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("create file: %w", err)
			}
			if err := exporter.WriteHTML(file, store); err != nil {
				file.Close()
				return fmt.Errorf("write file: %w", err)
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("write file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bookmarks, %d folders to %s\n",
				len(store.Bookmarks), len(store.Folders), outputPath)
			return nil
		},
	}
}
