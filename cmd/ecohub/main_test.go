package main

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"codeberg.org/mutker/ecohub/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleSignalsRestoresDefaultHandlers(t *testing.T) {
	origNotify, origStop := notifySignals, stopSignals
	t.Cleanup(func() {
		notifySignals, stopSignals = origNotify, origStop
	})

	var (
		registered chan<- os.Signal
		watched    []os.Signal
		stopped    = make(chan chan<- os.Signal, 1)
	)
	notifySignals = func(c chan<- os.Signal, sig ...os.Signal) {
		registered = c
		watched = sig
		c <- syscall.SIGINT
	}
	stopSignals = func(c chan<- os.Signal) {
		stopped <- c
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		handleSignals(cancel, logger.Nop())
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handleSignals did not return after a signal")
	}

	require.Error(t, ctx.Err())
	assert.ElementsMatch(t, []os.Signal{syscall.SIGINT, syscall.SIGTERM}, watched)

	select {
	case c := <-stopped:
		assert.Equal(t, registered, c)
	default:
		t.Fatal("signal notification was not stopped")
	}
}
