// Package main implements the forgebatch command: a batch runner that works
// through a queue file of image generation tasks, plus the generate command
// each task is dispatched to and two tools for inspecting the WebUI server.
package main

import (
	"fmt"
	"os"
)

// main is the entry point for forgebatch.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
