package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newExportCommand() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all variables to a YAML save file",
		Long: `Write the full variable state as a YAML save file with numbers,
strings and booleans groups. The output round-trips through import.`,
		Example: `  # Write to a file
  talevault export --out save.yaml

  # Write to stdout
  talevault export --out -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			snap, err := store.GetAllVariables(cmd.Context())
			if err != nil {
				return err
			}

			if err := writeSaveFile(outFile, snap); err != nil {
				return err
			}

			if outFile != "-" {
				log.Info().
					Str("file", outFile).
					Int("variables", snap.Len()).
					Msg("Variables exported")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFile, "out", "o", "save.yaml", "output file (- for stdout)")

	return cmd
}
