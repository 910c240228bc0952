package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/phrazzld/forgebatch/internal/domain"
	"github.com/phrazzld/forgebatch/internal/generation"
	"github.com/phrazzld/forgebatch/internal/platform/webui"
	"github.com/phrazzld/forgebatch/internal/service"
	"github.com/spf13/cobra"
)

func newGenerateCmd(opts *globalOptions) *cobra.Command {
	req := domain.NewGenerationRequest("", "")

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("generate <%s> --prompt <text>", strings.Join(generation.Names(), "|")),
		Short: "Generate one image",
		Long: `Generate one image with the given model on the WebUI server.

The model is loaded first, then the image and a _meta.txt sidecar describing it
are written to the output directory. This is the command queue tasks are
dispatched to, so a queue line reads like its arguments:
  flux --prompt "a lighthouse at dusk" --seed 7`,
		Example: `  forgebatch generate realistic --prompt "a red fox in snow" --negative "blurry" --output renders`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: generation.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Model = args[0]

			a, err := initializeApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			client, err := webui.NewClient(a.cfg.WebUI, a.logger)
			if err != nil {
				return err
			}

			svc, err := service.NewImageService(client, a.cfg.Models.Dir, a.logger,
				service.WithLoadWait(loadWaitOverride(a.cfg.WebUI.ModelLoadWaitSeconds)))
			if err != nil {
				return err
			}

			image, err := svc.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}

			return printGeneratedImage(cmd.OutOrStdout(), image)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Prompt, "prompt", "", "prompt for image generation")
	flags.StringVar(&req.NegativePrompt, "negative", "", "negative prompt (model default when empty)")
	flags.Int64Var(&req.Seed, "seed", domain.DefaultSeed, "seed value, -1 for random")
	flags.IntVar(&req.Width, "width", domain.DefaultWidth, "image width")
	flags.IntVar(&req.Height, "height", domain.DefaultHeight, "image height")
	flags.IntVar(&req.Steps, "steps", domain.DefaultSteps, "number of inference steps")
	flags.StringVar(&req.OutputDir, "output", domain.DefaultOutputDir, "output directory")
	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}

// loadWaitOverride converts the configured wait; negative keeps each model's default.
func loadWaitOverride(seconds int) time.Duration {
	if seconds < 0 {
		return -1
	}
	return time.Duration(seconds) * time.Second
}

func printGeneratedImage(w io.Writer, image *service.GeneratedImage) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Image saved to disk: %s\n", image.ImagePath)
	fmt.Fprintf(&b, "Metadata saved to: %s\n", image.MetadataPath)

	if image.Metadata.HasInfo {
		b.WriteString("\nGeneration Info (raw):\n")
		b.WriteString(image.Metadata.Info)
		b.WriteString("\n")

		if image.InfoParseErr != nil {
			fmt.Fprintf(&b, "Failed to parse infotext: %v\n", image.InfoParseErr)
		} else {
			b.WriteString("\nParsed Metadata:\n")
			keys := make([]string, 0, len(image.ParsedInfo))
			for k := range image.ParsedInfo {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(&b, "- %s: %v\n", k, image.ParsedInfo[k])
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
