// Package cli holds process level helpers shared by the commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/waftester/schemafuzz/pkg/defaults"
)

// SignalContext returns a child of parent cancelled on SIGINT/SIGTERM.
// A second signal within gracePeriod exits the process with
// defaults.ExitInterrupted.
//
//	ctx, cancel := cli.SignalContext(context.Background(), duration.InterruptGrace)
//	defer cancel()
func SignalContext(parent context.Context, gracePeriod time.Duration) (context.Context, context.CancelFunc) {
	return notifyContext(parent, gracePeriod, signalSource{}, os.Stderr, os.Exit)
}

// source delivers interrupts. Tests substitute a plain channel.
type source interface {
	subscribe() (<-chan os.Signal, func())
}

type signalSource struct{}

func (signalSource) subscribe() (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	return ch, func() { signal.Stop(ch) }
}

type chanSource chan os.Signal

func (c chanSource) subscribe() (<-chan os.Signal, func()) { return c, func() {} }

func notifyContext(parent context.Context, gracePeriod time.Duration, src source, w io.Writer, exit func(int)) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sig, stop := src.subscribe()

	go func() {
		defer stop()
		select {
		case s := <-sig:
			fmt.Fprintf(w, "\n%s received, finishing the current operation (again to abort)\n", s)
			cancel()

			timer := time.NewTimer(gracePeriod)
			defer timer.Stop()
			select {
			case <-sig:
				exit(defaults.ExitInterrupted)
			case <-timer.C:
			}
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
