package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/phrazzld/forgebatch/internal/platform/webui"
	"github.com/phrazzld/forgebatch/internal/service"
	"github.com/spf13/cobra"
)

func newCaptureCmd(opts *globalOptions) *cobra.Command {
	var dir, format string

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Save the WebUI options and txt2img parameters to timestamped files",
		Long: `Save the current WebUI options and txt2img parameters to timestamped files.

Run it right after a successful generation in the WebUI to keep the working
configuration, then compare it with what the generate command sends.`,
		Args: cobra.NoArgs,
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

			result, err := svc.Capture(cmd.Context(), dir, format)
			if err != nil {
				return err
			}

			return printCaptureResult(cmd.OutOrStdout(), result, format)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "directory the captured files are written to")
	cmd.Flags().StringVar(&format, "format", service.FormatJSON, "file format: json or yaml")
	return cmd
}

func printCaptureResult(w io.Writer, result *service.CaptureResult, format string) error {
	var b strings.Builder

	b.WriteString("=== WebUI Configuration Capture Tool ===\n")

	if result.OptionsErr != nil {
		fmt.Fprintf(&b, "\nError getting options: %v\n", result.OptionsErr)
	}
	if result.ModelInfo != nil {
		b.WriteString("\n=== Current Model Configuration ===\n")
		if err := writeSection(&b, format, result.ModelInfo); err != nil {
			return err
		}
	}
	if result.OptionsFile != "" {
		fmt.Fprintf(&b, "Saved to %s\n", result.OptionsFile)
	}

	if result.ParamsErr != nil {
		fmt.Fprintf(&b, "\nError getting txt2img params: %v\n", result.ParamsErr)
	}
	if result.ParamsFile != "" {
		fmt.Fprintf(&b, "Saved to %s\n", result.ParamsFile)
		b.WriteString("\n=== Current txt2img Parameters ===\n")
		if err := writeSection(&b, format, result.KeyParams); err != nil {
			return err
		}
	}

	b.WriteString("\n")
	if result.InProgress() {
		b.WriteString("Generation in progress. Progress info:\n")
		if err := writeSection(&b, format, result.Progress); err != nil {
			return err
		}
	} else {
		b.WriteString("No generation currently in progress\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSection(b *strings.Builder, format string, v any) error {
	data, err := service.Encode(format, v)
	if err != nil {
		return err
	}
	b.Write(data)
	if len(data) > 0 && data[len(data)-1] != '\n' {
		b.WriteString("\n")
	}
	return nil
}
