package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/migration-checksum/migration-checksum/internal/migration"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the generated artifact is up to date",
	Long: `Recalculate every checksum and compare the expected artifact with the one on disk.
Nothing is written. A missing or stale artifact is reported as a unified diff and
the command exits non-zero, which makes it suitable for CI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		gen, err := newGenerator()
		if err != nil {
			return err
		}

		if err := cfg.Target().Validate(); err != nil {
			return err
		}

		files, err := resolveMigrations()
		if err != nil {
			return err
		}

		res, err := gen.Check(files, cfg.Target())
		if errors.Is(err, migration.ErrOutOfDate) {
			log.Error().Str("path", res.Path).Msg("Checksum artifact does not match the migration sources:")
			fmt.Fprint(os.Stdout, res.Diff)
			return fmt.Errorf("%w - run 'migration-checksum generate' to refresh it", migration.ErrOutOfDate)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
