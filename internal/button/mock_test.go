//go:build !pi

package button

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"syscall"
	"testing"
	"time"
)

func TestSimulatedPress(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	events, err := Watch(ctx, DefaultPin)
	require.NoError(t, err)

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGHUP))

	select {
	case e := <-events:
		assert.True(t, e.Pressed)
	case <-time.After(2 * time.Second):
		t.Fatal("no button event")
	}

	cancel()
	for range events {
	}
}
