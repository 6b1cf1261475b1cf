package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newImportCommand() *cobra.Command {
	var clearFirst bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import variables from a YAML save file",
		Long: `Bulk-load variables from a YAML save file with numbers, strings
and booleans groups.

Groups are applied in order: numbers, then booleans, then strings.
Each variable is written in its own transaction; a conflict partway
through stops the import and leaves the variables already written
applied. With --clear the store is emptied first, which also removes
any chance of cross-kind conflicts.`,
		Example: `  # Merge a save file into the current state
  talevault import save.yaml

  # Replace the current state entirely
  talevault import save.yaml --clear`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := readSaveFile(args[0])
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SetAllVariables(cmd.Context(), sf.Numbers, sf.Strings, sf.Booleans, clearFirst); err != nil {
				return err
			}

			log.Info().
				Str("file", args[0]).
				Int("numbers", len(sf.Numbers)).
				Int("strings", len(sf.Strings)).
				Int("booleans", len(sf.Booleans)).
				Bool("cleared", clearFirst).
				Msg("Variables imported")
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearFirst, "clear", false, "clear all existing variables before importing")

	return cmd
}
