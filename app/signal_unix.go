//go:build !windows
// +build !windows

package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
)

// interrupt blocks until a termination signal is received or cancel is
// closed. SIGUSR1 runs status without returning.
func interrupt(cancel <-chan struct{}, status func()) error {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)
	defer signal.Stop(c)
	for {
		select {
		case sig := <-c:
			if sig == syscall.SIGUSR1 {
				status()
				continue
			}
			return fmt.Errorf("received signal %s", sig)
		case <-cancel:
			return errors.New("canceled")
		}
	}
}
