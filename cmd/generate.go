package cmd

import (
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the migration checksum artifact",
	Long: `Resolve the configured migration sources, calculate the checksum of every file
and (re)write the generated artifact under the destination directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		gen, err := newGenerator()
		if err != nil {
			return err
		}

		// Fail on a bad type name before touching any source.
		if err := cfg.Target().Validate(); err != nil {
			return err
		}

		files, err := resolveMigrations()
		if err != nil {
			return err
		}

		res, err := gen.Generate(files, cfg.Target())
		if err != nil {
			return err
		}

		for _, e := range res.Entries {
			log.Debug().
				Str("identifier", e.Identifier).
				Int32("checksum", e.Checksum).
				Str("file", e.Path).
				Msg("Recorded checksum")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
