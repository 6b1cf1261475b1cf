package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/talevault/talevault/pkg/vars"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all variables",
		Long: `List every stored variable with its kind and value, sorted by
name. With --json the full snapshot is printed grouped by kind.`,
		Example: `  # Human-readable table
  talevault list

  # Machine-readable snapshot
  talevault list --json`,
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

			if jsonOutput {
				return json.NewEncoder(os.Stdout).Encode(snap)
			}

			printSnapshot(os.Stdout, snap)
			return nil
		},
	}

	return cmd
}

// printSnapshot renders a snapshot as an aligned table sorted by name.
func printSnapshot(out *os.File, snap vars.Snapshot) {
	type row struct {
		name, kind, value string
	}

	rows := make([]row, 0, snap.Len())
	for name, v := range snap.Strings {
		rows = append(rows, row{name, string(vars.KindText), v})
	}
	for name, v := range snap.Numbers {
		rows = append(rows, row{name, string(vars.KindNumber), strconv.FormatFloat(v, 'g', -1, 64)})
	}
	for name, v := range snap.Booleans {
		rows = append(rows, row{name, string(vars.KindBoolean), strconv.FormatBool(v)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].name < rows[j].name })

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tVALUE")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.name, r.kind, r.value)
	}
	w.Flush()

	fmt.Fprintf(out, "\n%d variable(s)\n", len(rows))
}
