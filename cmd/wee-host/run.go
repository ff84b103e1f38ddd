package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/weegigs/wee-host-go/connectors/hosthttp"
	"github.com/weegigs/wee-host-go/script"
)

var runCmd = &cobra.Command{
	Use:   "run [script]",
	Short: "Evaluate a script against the host bindings",
	Long: `Evaluate a script against the host bindings. Without an argument the
bundled demo script runs. If the script starts a server, it is served until
the process is interrupted. Otherwise the command exits once the script's
timers and fetches have completed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		name, source := script.DemoName, script.Demo
		if len(args) == 1 {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(err, "failed to read script")
			}
			name, source = filepath.Base(args[0]), string(content)
		}

		app, stop, err := start(ctx)
		if err != nil {
			return err
		}
		defer stop()

		runtime, err := script.New(
			app.Bindings,
			app.LogSink,
			app.Toast,
			app.Errors,
			script.Versions(app.Versions),
			script.Logger(app.Log),
			script.Env(environment(app.Config.Port)),
		)
		if err != nil {
			return err
		}
		defer runtime.Close()

		if err := runtime.Run(ctx, name, source); err != nil {
			return err
		}

		port, handler, ok := runtime.Listener()
		if !ok {
			return runtime.Wait(ctx)
		}

		address := fmt.Sprintf(":%d", port)
		app.Log.Info().Str("script", name).Str("address", address).Msg("listening")
		return hosthttp.Serve(
			ctx,
			address,
			hosthttp.WithTelemetry(handler, "wee-host-script"),
			hosthttp.GracePeriod(app.Config.ShutdownTimeout),
		)
	},
}

// environment exposes the process environment to scripts, with PORT taken
// from the configured port.
func environment(port int) map[string]string {
	env := map[string]string{}
	for _, entry := range os.Environ() {
		if key, value, ok := strings.Cut(entry, "="); ok {
			env[key] = value
		}
	}
	env["PORT"] = strconv.Itoa(port)

	return env
}
