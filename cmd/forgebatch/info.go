package main

import (
	"github.com/phrazzld/forgebatch/internal/platform/webui"
	"github.com/phrazzld/forgebatch/internal/service"
	"github.com/spf13/cobra"
)

func newInfoCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show samplers, models and the current model of the WebUI server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			client, err := webui.NewClient(a.cfg.WebUI, a.logger)
			if err != nil {
				return err
			}

			svc, err := service.NewInspectService(client, a.logger)
			if err != nil {
				return err
			}

			return svc.Report(cmd.Context()).Render(cmd.OutOrStdout())
		},
	}
}
