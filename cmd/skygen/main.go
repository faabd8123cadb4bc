// Command skygen opens a window and draws a row of colored cubes around an orbiting camera.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/Carmen-Shannon/skygen/common"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		common.Logger().Error("skygen", "err", err)
		os.Exit(1)
	}
}
