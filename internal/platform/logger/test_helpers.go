package logger

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// CaptureBuffer collects JSON log records written by loggers under test.
// Runner tests log from the executor and the stores at once, so writes are
// serialized.
type CaptureBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer.
func (c *CaptureBuffer) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

// String returns everything written so far.
func (c *CaptureBuffer) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Records decodes one JSON object per line.
func (c *CaptureBuffer) Records() ([]map[string]any, error) {
	var records []map[string]any
	scanner := bufio.NewScanner(strings.NewReader(c.String()))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("log line %q is not JSON: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}

// NewCaptureLogger returns a debug-level JSON logger writing into a fresh
// CaptureBuffer.
func NewCaptureLogger(t *testing.T) (*slog.Logger, *CaptureBuffer) {
	t.Helper()

	buf := &CaptureBuffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// NewCaptureContext returns a context carrying a logger from NewCaptureLogger,
// as the runner hands to its stores and executor.
func NewCaptureContext(t *testing.T) (context.Context, *CaptureBuffer) {
	t.Helper()

	log, buf := NewCaptureLogger(t)
	return WithLogger(context.Background(), log), buf
}

// AssertLogContains fails t unless the captured output contains text.
func AssertLogContains(t *testing.T, buf *CaptureBuffer, text string) {
	t.Helper()

	if out := buf.String(); !strings.Contains(out, text) {
		t.Errorf("log output does not contain %q:\n%s", text, out)
	}
}

// AssertLogField fails t unless some captured record has key set to want.
// Numbers decode as float64.
func AssertLogField(t *testing.T, buf *CaptureBuffer, key string, want any) {
	t.Helper()

	records, err := buf.Records()
	if err != nil {
		t.Fatalf("decode captured logs: %v", err)
	}
	for _, rec := range records {
		if got, ok := rec[key]; ok && got == want {
			return
		}
	}
	t.Errorf("no log record has %s=%v among %d records:\n%s", key, want, len(records), buf.String())
}
