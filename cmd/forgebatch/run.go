package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/phrazzld/forgebatch/internal/config"
	"github.com/phrazzld/forgebatch/internal/events"
	"github.com/phrazzld/forgebatch/internal/platform/filestore"
	"github.com/phrazzld/forgebatch/internal/platform/process"
	"github.com/phrazzld/forgebatch/internal/task"
	"github.com/spf13/cobra"
)

func newRunCmd(opts *globalOptions) *cobra.Command {
	var queuePath, donePath string

	cmd := &cobra.Command{
		Use:   "run --queue <file> --done <file>",
		Short: "Run every queued task once",
		Long: `Run every task of the queue file once, strictly in order.

Successful tasks are appended to the done file. Failed tasks are written back to
the queue file; when none fail the queue file is removed. Task failures do not
change the exit status, only failures to read or write the queue, done or log
files do.`,
		Example: `  forgebatch run --queue queue.txt --done done.txt`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if queuePath == "" {
				queuePath = a.cfg.Batch.QueueFile
			}
			if donePath == "" {
				donePath = a.cfg.Batch.DoneFile
			}
			if queuePath == "" || donePath == "" {
				return errors.New("both --queue and --done are required")
			}

			dispatch, err := dispatchCommand(a.cfg, opts)
			if err != nil {
				return err
			}

			_, err = runBatch(cmd.Context(), a.cfg, dispatch, queuePath, donePath, cmd.OutOrStdout(), a.logger)
			return err
		},
	}

	cmd.Flags().StringVar(&queuePath, "queue", "", "path to the queue file (tasks to run)")
	cmd.Flags().StringVar(&donePath, "done", "", "path to the done file (completed tasks)")
	return cmd
}

// dispatchCommand returns the command every descriptor is appended to: the
// configured one, or this binary's generate command carrying the same
// configuration flags.
func dispatchCommand(cfg *config.Config, opts *globalOptions) ([]string, error) {
	if len(cfg.Batch.DispatchCommand) > 0 {
		return cfg.Batch.DispatchCommand, nil
	}

	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate forgebatch executable: %w", err)
	}

	command := []string{self}
	if opts.configFile != "" {
		command = append(command, "--config", opts.configFile)
	}
	if opts.envFile != "" {
		command = append(command, "--env-file", opts.envFile)
	}
	return append(command, "generate"), nil
}

// runBatch wires the file stores, the process executor and the console report
// into a runner and performs one pass over the queue. A missing queue file
// ends the run before anything else happens.
func runBatch(
	ctx context.Context,
	cfg *config.Config,
	dispatch []string,
	queuePath, donePath string,
	out io.Writer,
	logger *slog.Logger,
) (*task.Summary, error) {
	if _, err := os.Stat(queuePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(out, "No queue file found: %s\n", queuePath)
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to check queue file: %w", task.ErrStoreIO, err)
	}

	executor, err := process.NewExecutor(dispatch, process.WithDir(cfg.Batch.WorkDir))
	if err != nil {
		return nil, fmt.Errorf("invalid dispatch command: %w", err)
	}

	emitter := events.NewDispatcher(logger)
	emitter.Subscribe(events.NewConsoleHandler(out))

	runner, err := task.NewRunner(
		filestore.NewQueueFileStore(queuePath),
		filestore.NewDoneFileStore(donePath),
		filestore.NewTaskLogWriter(filestore.LogDirFor(donePath, cfg.Batch.LogDirName)),
		executor,
		emitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch runner: %w", err)
	}

	return runner.Run(ctx)
}
