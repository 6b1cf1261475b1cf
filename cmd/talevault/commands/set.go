package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/talevault/talevault/pkg/vars"
)

func newSetCommand() *cobra.Command {
	var kindName string

	cmd := &cobra.Command{
		Use:   "set <name> <value>",
		Short: "Write a variable",
		Long: `Write a variable, creating it or updating it in place.

Without --type, the kind is inferred from the value: "true"/"false"
become booleans, anything that parses as a float becomes a number, and
everything else is stored as text. Use --type text to store literal
strings like "true" or "42".

A write is rejected when the name already exists under a different
kind. Clear the old variable first to change a name's kind.`,
		Example: `  # Inferred kinds
  talevault set player_name Avery
  talevault set gold 100
  talevault set seen_intro true

  # Store the literal text "42"
  talevault set door_code 42 --type text`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, raw := args[0], args[1]

			value, err := parseValue(raw, kindName)
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

			if err := store.SetValue(cmd.Context(), name, value); err != nil {
				if errors.Is(err, vars.ErrTypeConflict) {
					return fmt.Errorf("%w (clear %q first to change its kind)", err, name)
				}
				return err
			}

			log.Info().
				Str("name", name).
				Str("kind", string(value.Kind())).
				Msg("Variable set")
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindName, "type", "t", "", "variable kind to store (text, number, boolean; default inferred)")

	return cmd
}

// parseValue converts a command-line value into a typed store value,
// inferring the kind when none is forced.
func parseValue(raw, kindName string) (vars.Value, error) {
	switch kindName {
	case "text", "string":
		return vars.Text(raw), nil
	case "number":
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return vars.Value{}, fmt.Errorf("invalid number %q: %w", raw, err)
		}
		return vars.Number(n), nil
	case "boolean", "bool":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return vars.Value{}, fmt.Errorf("invalid boolean %q: %w", raw, err)
		}
		return vars.Boolean(b), nil
	case "":
		// Inference order matters: "1" is a number, not a boolean.
		if raw == "true" || raw == "false" {
			return vars.Boolean(raw == "true"), nil
		}
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return vars.Number(n), nil
		}
		return vars.Text(raw), nil
	}
	return vars.Value{}, fmt.Errorf("unknown variable type %q (want text, number, or boolean)", kindName)
}
