package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newClearCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all variables",
		Long: `Delete every variable of every kind in a single transaction.

This is the reset used when a story restarts. The operation cannot be
undone; export first if the current state might still be needed.`,
		Example: `  # Interactive confirmation
  talevault clear

  # Skip the prompt
  talevault clear --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Fprint(os.Stderr, "Delete ALL variables? This cannot be undone. [y/N]: ")
				reader := bufio.NewReader(os.Stdin)
				answer, _ := reader.ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(os.Stderr, "Aborted")
					return nil
				}
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

			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}

			log.Info().Msg("All variables cleared")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}
