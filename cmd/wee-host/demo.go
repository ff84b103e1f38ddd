package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/weegigs/wee-host-go/host"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Create a counter through its binding and log each increment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, stop, err := start(cmd.Context())
		if err != nil {
			return err
		}
		defer stop()

		_, err = demo(cmd.Context(), app)
		return err
	},
}

func demo(ctx context.Context, app *Application) ([]int, error) {
	return host.RunCounterDemo(ctx, app.Counters, app.Config.Initial, app.Config.Calls, app.LogSink)
}
