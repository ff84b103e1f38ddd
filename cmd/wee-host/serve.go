package main

import (
	"github.com/spf13/cobra"

	"github.com/weegigs/wee-host-go/connectors/hosthttp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the counter demo, then serve the user agent echo",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		app, stop, err := start(ctx)
		if err != nil {
			return err
		}
		defer stop()

		if _, err := demo(ctx, app); err != nil {
			return err
		}

		handler := hosthttp.NewHandler(
			app.LogSink,
			app.Toast,
			hosthttp.Logger(app.Log),
			hosthttp.Versions(app.Versions),
		)

		app.Log.Info().Str("address", app.Config.Address()).Msg("listening")
		return hosthttp.Serve(ctx, app.Config.Address(), handler, hosthttp.GracePeriod(app.Config.ShutdownTimeout))
	},
}
