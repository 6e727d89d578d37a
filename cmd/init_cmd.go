package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a migration-checksum configuration",
	Long:  "Create a migration-checksum.yaml configuration file with the default settings.",
	RunE: func(cmd *cobra.Command, args []string) error {
		initLogger()

		configPath := "./migration-checksum.yaml"
		if _, err := fs.Stat(configPath); err == nil {
			log.Warn().Str("path", configPath).Msg("Config file already exists, skipping")
		} else {
			if err := afero.WriteFile(fs, configPath, []byte(configTemplate), 0644); err != nil {
				return fmt.Errorf("failed to create config file: %w", err)
			}
			log.Info().Str("path", configPath).Msg("Created config file")
		}

		fmt.Println("\nInitialization complete! Next steps:")
		fmt.Println("  1. Point 'sources' in migration-checksum.yaml at your migration sources")
		fmt.Println("  2. Generate the checksum enum:  migration-checksum generate")
		fmt.Println("  3. Verify it in CI:             migration-checksum check")

		return nil
	},
}

const configTemplate = `# migration-checksum configuration

# Directories (walked recursively) or files holding migration sources
sources:
  - "src/main/java/db/migration"

# Ant-style patterns relative to each source; no includes means every file
includes:
  - "**/*.java"
excludes: []

# Skip VCS and editor files such as .git/, .DS_Store and *~
default_excludes: true

# Directory the artifact is generated into
destination: "build/generated/migration-checksum"

# Fully qualified name of the generated type; the namespace becomes the
# directory path below destination
type_name: "db.migration.JavaMigrationChecksum"

# Artifact format: java, go or yaml
format: "java"

# Log level: debug, info, warn, error
log_level: "info"
`

func init() {
	rootCmd.AddCommand(initCmd)
}
