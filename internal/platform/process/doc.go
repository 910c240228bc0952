// Package process launches one child process per task descriptor and captures
// its output. It implements task.Executor.
//
// A descriptor is appended to a fixed dispatch command and tokenized with shell
// word rules, so quoted prompts reach the child as single arguments. No shell
// is involved in the launch itself.
package process
