// ./main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/xkilldash9x/formforge/cmd"
)

// osExit is swapped out in tests.
var osExit = os.Exit

func main() {
	// Cancel in-flight renders on SIGINT or SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			stop()
			osExit(130)
			return
		}
		stop()
		osExit(1)
	}
}
