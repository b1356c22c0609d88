// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signal

import (
	"os"
	"os/signal"
	"syscall"
)

// shutdownRequestChannel is used to initiate shutdown from one of the
// subsystems using the same code paths as when an interrupt signal is
// received.
var shutdownRequestChannel = make(chan struct{})

// InterruptListener returns a channel that will be closed when an interrupt
// signal is received from the OS, or a shutdown request is made through
// ShutdownRequestChannel.
func InterruptListener() <-chan struct{} {
	c := make(chan struct{})
	go func() {
		interruptChannel := make(chan os.Signal, 1)
		signal.Notify(interruptChannel, os.Interrupt, syscall.SIGTERM)

		select {
		case sig := <-interruptChannel:
			log.Infof("Received signal (%s). Shutting down...", sig)
		case <-shutdownRequestChannel:
			log.Info("Shutdown requested. Shutting down...")
		}
		close(c)

		// Listen for repeated signals and display a message so the user
		// knows the shutdown is in progress and the process is not
		// hung.
		for {
			select {
			case sig := <-interruptChannel:
				log.Infof("Received signal (%s). Already shutting down...", sig)
			case <-shutdownRequestChannel:
				log.Info("Shutdown requested. Already shutting down...")
			}
		}
	}()
	return c
}

// ShutdownRequested returns true when the channel returned by
// InterruptListener was closed.  This simplifies early shutdown slightly
// since the caller can just use an if statement instead of a select.
func ShutdownRequested(interruptChannel <-chan struct{}) bool {
	select {
	case <-interruptChannel:
		return true
	default:
	}
	return false
}

// RequestShutdown initiates a clean shutdown through the same code paths as
// an OS interrupt.
func RequestShutdown() {
	shutdownRequestChannel <- struct{}{}
}
