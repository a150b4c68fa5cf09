package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
)

func main() {
	// Kernels allocate large float planes per call.
	debug.SetGCPercent(200)

	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
