package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/weegigs/wee-host-go/host"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "Print the versions reported by the echo server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := json.MarshalIndent(host.RuntimeVersions(), "", "  ")
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return err
	},
}
