package control_test

import (
	"context"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"radioflow/blocks"
	"radioflow/control"
	"radioflow/script"
)

const fixture = `
blocks:
  - id: src
    class: float32_const_source
    params:
      data: [1, 2, 3]
  - id: scale
    class: scale_transform
    params:
      factor: 3.0
  - id: sink
    class: throttled_sink
    params:
      samples_per_sec: 100000
      burst: 100000
connections:
  - from: src.out
    to: scale.in
  - from: scale.out
    to: sink.in
`

const infiniteFixture = `
blocks:
  - id: src
    class: infinite_counter_source
    params:
      batch_size: 8
      sample_rate: 1000
  - id: sink
    class: throttled_sink
    params:
      samples_per_sec: 100000
      burst: 100000
connections:
  - from: src.out
    to: sink.in
`

func newTestContext(t *testing.T) *control.Context {
	reg := script.NewRegistry()
	blocks.Register(reg)
	return control.New(reg, nil)
}

func TestLoadStartWaitHappyPath(t *testing.T) {
	c := newTestContext(t)
	require.Equal(t, control.Unloaded, c.State())

	require.NoError(t, c.Load(context.Background(), strings.NewReader(fixture)))
	require.Equal(t, control.Loaded, c.State())

	require.NoError(t, c.Start(context.Background()))
	require.Equal(t, control.Running, c.State())

	done := make(chan error, 1)
	go func() { done <- c.Wait() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return")
	}
	require.Equal(t, control.Stopped, c.State())
}

func TestStopIsIdempotent(t *testing.T) {
	c := newTestContext(t)
	require.NoError(t, c.Load(context.Background(), strings.NewReader(fixture)))
	require.NoError(t, c.Start(context.Background()))

	require.NoError(t, c.Stop(context.Background(), time.Second))
	require.NoError(t, c.Stop(context.Background(), time.Second))
}

// TestSigintTransitionsRunningToStopped covers spec property #9: SIGINT
// while Running must transition the Context to Stopping and eventually
// Stopped, driven entirely by the scheduler's own signal handler rather
// than an explicit Stop call from the test.
func TestSigintTransitionsRunningToStopped(t *testing.T) {
	c := newTestContext(t)
	require.NoError(t, c.Load(context.Background(), strings.NewReader(infiniteFixture)))
	require.NoError(t, c.Start(context.Background()))
	require.Equal(t, control.Running, c.State())

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGINT))

	require.Eventually(t, func() bool {
		st := c.State()
		return st == control.Stopping || st == control.Stopped
	}, 2*time.Second, 10*time.Millisecond, "state did not transition after SIGINT")

	require.Eventually(t, func() bool {
		return c.State() == control.Stopped
	}, 5*time.Second, 10*time.Millisecond, "state did not reach Stopped after SIGINT")
}

func TestLoadLeavesStateUntouchedOnFailure(t *testing.T) {
	c := newTestContext(t)
	err := c.Load(context.Background(), strings.NewReader("blocks: [{id: x, class: nope}]"))
	require.Error(t, err)
	require.Equal(t, control.Unloaded, c.State())
	require.NotEmpty(t, c.Strerror())
}
