// facetarget - pick the face to lip-sync in an avatar source image
// Detects faces, lets the user (or a quality score) choose one, and prints
// the normalized center for --bounding-box.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
