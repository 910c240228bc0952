package task

import (
	"context"
	"fmt"
	"testing"

	"github.com/phrazzld/forgebatch/internal/events"
	"pgregory.net/rapid"
)

// TestProperty_RunPartitionsQueue checks that after a run every loaded
// descriptor ends up in exactly one of the done store or the rewritten queue,
// in its original relative order, with duplicates preserved.
func TestProperty_RunPartitionsQueue(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// Small alphabet so duplicates show up often
		descriptors := rapid.SliceOfN(
			rapid.SampledFrom([]string{"flux a", "flux b", "jugger c", "realistic d", "flux e"}),
			0, 12,
		).Draw(t, "descriptors")
		failing := rapid.SliceOfN(rapid.Bool(), len(descriptors), len(descriptors)).Draw(t, "failing")

		tasks := make([]Descriptor, len(descriptors))
		for i, d := range descriptors {
			tasks[i] = Descriptor(d)
		}

		// Outcome is decided per position, not per text, so equal lines may differ
		call := 0
		executor := ExecutorFunc(func(ctx context.Context, d Descriptor) Result {
			fail := failing[call]
			call++
			if fail {
				return Result{Command: d.String(), ExitCode: 1}
			}
			return Result{Command: d.String()}
		})

		queue := NewMockQueueStore(tasks...)
		done := NewMockDoneStore()
		logs := NewMockLogWriter()
		logger := testLogger()
		runner, err := NewRunner(queue, done, logs, executor, events.NewDispatcher(logger), logger)
		if err != nil {
			t.Fatalf("NewRunner: %v", err)
		}

		if _, err := runner.Run(context.Background()); err != nil {
			t.Fatalf("Run: %v", err)
		}

		var wantDone, wantQueue []Descriptor
		for i, d := range tasks {
			if failing[i] {
				wantQueue = append(wantQueue, d)
			} else {
				wantDone = append(wantDone, d)
			}
		}

		if got := done.Done(); fmt.Sprint(got) != fmt.Sprint(wantDone) {
			t.Fatalf("done store = %v, want %v", got, wantDone)
		}
		if got := queue.Tasks(); fmt.Sprint(got) != fmt.Sprint(wantQueue) {
			t.Fatalf("queue = %v, want %v", got, wantQueue)
		}
		if queue.Exists() != (len(wantQueue) > 0) {
			t.Fatalf("queue exists = %v with %d retained", queue.Exists(), len(wantQueue))
		}
		if got := len(logs.Records()); got != len(tasks) {
			t.Fatalf("log records = %d, want %d", got, len(tasks))
		}
	})
}

// TestProperty_ParseDescriptorSkipsNoise checks that blank and comment lines
// never become descriptors and that real lines are trimmed, not rewritten.
func TestProperty_ParseDescriptorSkipsNoise(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pad := rapid.StringMatching(`[ \t]{0,3}`).Draw(t, "pad")
		body := rapid.StringMatching(`[a-z][a-z0-9 "=-]{0,20}[a-z0-9"]`).Draw(t, "body")

		if _, ok := ParseDescriptor(pad); ok {
			t.Fatalf("blank line %q parsed as a task", pad)
		}
		if _, ok := ParseDescriptor(pad + CommentPrefix + body); ok {
			t.Fatalf("comment line parsed as a task")
		}

		d, ok := ParseDescriptor(pad + body + pad)
		if !ok {
			t.Fatalf("line %q rejected", body)
		}
		if d.String() != body {
			t.Fatalf("descriptor = %q, want %q", d, body)
		}
	})
}
