package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeItems(n int) <-chan Item[int] {
	ch := make(chan Item[int], n)
	for i := range n {
		ch <- Item[int]{Seq: i, Value: i}
	}
	close(ch)
	return ch
}

func double(_ context.Context, v int) (int, error) { return v * 2, nil }

func TestRun_OrderPreservation(t *testing.T) {
	items := makeItems(200)
	results := Run(context.Background(), items, 8, double)

	var collected []int
	err := OrderedCollect(results, func(r Result[int]) error {
		require.NoError(t, r.Err)
		collected = append(collected, r.Seq)
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, collected, 200)
	for i, seq := range collected {
		assert.Equal(t, i, seq, "result %d out of order", i)
	}
}

func TestRun_SingleWorker(t *testing.T) {
	items := makeItems(50)
	results := Run(context.Background(), items, 1, double)

	var collected []int
	err := OrderedCollect(results, func(r Result[int]) error {
		collected = append(collected, r.Value)
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, collected, 50)
	for i, v := range collected {
		assert.Equal(t, i*2, v)
	}
}

func TestRun_WorkersDefaultToNumCPU(t *testing.T) {
	items := makeItems(10)
	results := Run(context.Background(), items, 0, double)

	count := 0
	err := OrderedCollect(results, func(r Result[int]) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestRun_EmptyInput(t *testing.T) {
	ch := make(chan Item[int])
	close(ch)
	results := Run(context.Background(), ch, 4, double)

	count := 0
	err := OrderedCollect(results, func(r Result[int]) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestOrderedCollect_EarlyError(t *testing.T) {
	items := makeItems(100)
	results := Run(context.Background(), items, 4, double)

	count := 0
	err := OrderedCollect(results, func(r Result[int]) error {
		count++
		if count == 5 {
			return fmt.Errorf("stop at 5")
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 5, count)
}

func TestRun_PropagatesPerItemError(t *testing.T) {
	items := makeItems(5)
	results := Run(context.Background(), items, 2, func(_ context.Context, v int) (int, error) {
		if v == 3 {
			return 0, fmt.Errorf("boom at %d", v)
		}
		return v, nil
	})

	var errs int
	err := OrderedCollect(results, func(r Result[int]) error {
		if r.Err != nil {
			errs++
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, errs)
}

func TestOrderedChannel_OrderPreservation(t *testing.T) {
	items := makeItems(200)
	results := Run(context.Background(), items, 8, double)

	var collected []int
	for r := range OrderedChannel(context.Background(), results) {
		require.NoError(t, r.Err)
		collected = append(collected, r.Seq)
	}

	assert.Len(t, collected, 200)
	for i, seq := range collected {
		assert.Equal(t, i, seq, "result %d out of order", i)
	}
}

func TestOrderedChannel_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	items := makeItems(1000)
	results := Run(ctx, items, 4, double)

	ordered := OrderedChannel(ctx, results)
	count := 0
	for range ordered {
		count++
		if count == 10 {
			cancel()
		}
	}
	assert.Less(t, count, 1000)
}

func TestRun_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := makeItems(1000)
	results := Run(ctx, items, 4, double)

	count := 0
	for range results {
		count++
	}
	assert.Less(t, count, 1000)
}
