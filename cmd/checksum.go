package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/migration-checksum/migration-checksum/internal/migration"
)

var checksumCmd = &cobra.Command{
	Use:   "checksum <file>...",
	Short: "Print the checksum of individual files",
	Long:  "Calculate the Flyway checksum of each given file. Sources and filters from the configuration are ignored.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		initLogger()

		for _, path := range args {
			checksum, err := migration.CalculateFileChecksum(fs, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", checksum, migration.IdentifierFromFilename(path), path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checksumCmd)
}
