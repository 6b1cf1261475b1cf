package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/talevault/talevault/pkg/vars"
)

func newGetCommand() *cobra.Command {
	var kindName string

	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Read a variable",
		Long: `Read a variable by name and print its value.

Without --type, all three kinds are probed in order: text, then
number, then boolean. With --type, only the named table is consulted,
so a variable stored under another kind reports not found.`,
		Example: `  # Probe all kinds
  talevault get player_name

  # Read a specific kind only
  talevault get gold --type number

  # JSON output
  talevault get seen_intro --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			kind, err := parseKindFlag(kindName)
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

			value, found, err := store.TryGetValue(cmd.Context(), name, kind)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("variable %q not found", name)
			}

			if jsonOutput {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"name":  name,
					"kind":  string(value.Kind()),
					"value": value.Interface(),
				})
			}
			fmt.Println(value.String())
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindName, "type", "t", "any", "variable kind to read (any, text, number, boolean)")

	return cmd
}

// parseKindFlag maps the --type flag to a store kind.
func parseKindFlag(s string) (vars.Kind, error) {
	switch s {
	case "", "any":
		return vars.KindAny, nil
	case "text", "string":
		return vars.KindText, nil
	case "number":
		return vars.KindNumber, nil
	case "boolean", "bool":
		return vars.KindBoolean, nil
	}
	return "", fmt.Errorf("unknown variable type %q (want any, text, number, or boolean)", s)
}
