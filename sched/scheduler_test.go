package sched_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"radioflow/blocks"
	"radioflow/graph"
	"radioflow/sched"
	"radioflow/types"
)

func TestSchedulerRunsSourceTransformSink(t *testing.T) {
	g := graph.New()
	src := blocks.NewFloat32ConstSource("src", []float32{1, 2, 3, 4})
	scale := blocks.NewScaleTransform("scale", 2)
	var out bytes.Buffer
	sink := blocks.NewRawFileSink("sink", &out, types.Float32Type)

	srcID := g.AddBlock(src)
	scaleID := g.AddBlock(scale)
	sinkID := g.AddBlock(sink)
	require.NoError(t, g.Connect(srcID, "out", scaleID, "in"))
	require.NoError(t, g.Connect(scaleID, "out", sinkID, "in"))

	plan, err := graph.Infer(g)
	require.NoError(t, err)

	s := sched.NewScheduler(plan)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.Spawn(ctx))
	require.NoError(t, s.Wait())

	require.Len(t, out.Bytes(), 4*4)
}

func TestSchedulerStopCancelsInfiniteSource(t *testing.T) {
	g := graph.New()
	src := blocks.NewInfiniteCounterSource("src", 8, 1000)
	sink := blocks.NewThrottledSink("sink", 10000, 10000)

	srcID := g.AddBlock(src)
	sinkID := g.AddBlock(sink)
	require.NoError(t, g.Connect(srcID, "out", sinkID, "in"))

	plan, err := graph.Infer(g)
	require.NoError(t, err)

	s := sched.NewScheduler(plan)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Spawn(ctx))
	time.Sleep(50 * time.Millisecond)
	cancel()

	done := make(chan error, 1)
	go func() { done <- s.Wait() }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}
