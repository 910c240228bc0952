// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels. Records go to stderr so stdout stays free for the
// batch progress report, and can additionally be copied to a size-rotated file
// managed by lumberjack.
package logger
