package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/talevault/talevault/pkg/dialogue"
	"github.com/talevault/talevault/pkg/telemetry"
)

func newRunCommand(version string) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run a dialogue script",
		Long: `Execute a Starlark dialogue script against the variable store.

Scripts use the store builtins get, set, has, clear and vars, and the
session binding that identifies the run. Exported top-level bindings
are printed when the run succeeds.

With --watch the script is re-run every time the file changes, until
interrupted.`,
		Example: `  # Run once
  talevault run intro.star

  # Re-run on every save while authoring
  talevault run intro.star --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script := args[0]
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			tel, err := telemetry.NewTelemetry(cfg.TelemetrySettings(version))
			if err != nil {
				return err
			}
			defer tel.Shutdown(context.Background())

			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}

			rt := dialogue.NewRuntime(store,
				dialogue.WithTimeout(cfg.Script.Timeout.Std()),
				dialogue.WithLogger(tel.Logger.NewComponentLogger("dialogue")),
				dialogue.WithMetrics(tel.Metrics),
				dialogue.WithTracer(tel.Tracer),
				dialogue.WithCloser(store.Close),
			)
			defer rt.Close()

			if watch {
				err := rt.Watch(ctx, script)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}

			result, err := rt.RunFile(ctx, script)
			if err != nil {
				return err
			}

			return printRunResult(result)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-run the script when the file changes")

	return cmd
}

// printRunResult prints the exported globals of a successful run.
func printRunResult(result *dialogue.Result) error {
	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"session":  result.SessionID,
			"duration": result.Duration.String(),
			"globals":  result.Globals,
		})
	}

	names := make([]string, 0, len(result.Globals))
	for name := range result.Globals {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("%s = %v\n", name, result.Globals[name])
	}
	fmt.Fprintf(os.Stderr, "session %s finished in %s\n", result.SessionID, result.Duration)
	return nil
}
