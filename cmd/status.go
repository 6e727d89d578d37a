package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/migration-checksum/migration-checksum/internal/migration"
	"github.com/migration-checksum/migration-checksum/internal/render"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show resolved migrations and their checksums",
	Long:  "Display every migration source file selected by the configured sources and filters, in generation order, with its identifier and checksum.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")

		renderer, err := render.New(cfg.Format)
		if err != nil {
			return err
		}

		files, err := resolveMigrations()
		if err != nil {
			return err
		}

		type statusEntry struct {
			Identifier string `json:"identifier"`
			Checksum   int32  `json:"checksum"`
			File       string `json:"file"`
		}

		entries := make([]statusEntry, 0, len(files))
		for _, f := range files {
			checksum, err := migration.CalculateFileChecksum(fs, f.Path)
			if err != nil {
				return err
			}
			entries = append(entries, statusEntry{
				Identifier: f.Identifier(),
				Checksum:   checksum,
				File:       f.RelPath,
			})
		}

		if output == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		// Table format
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "IDENTIFIER\tCHECKSUM\tFILE")
		fmt.Fprintln(w, "----------\t--------\t----")

		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%d\t%s\n", e.Identifier, e.Checksum, e.File)
		}
		w.Flush()

		fmt.Printf("\nTotal: %d | Artifact: %s\n", len(entries), cfg.Target().Path(renderer.Extension()))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringP("output", "o", "table", "output format (table, json)")
}
