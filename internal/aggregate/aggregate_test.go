package aggregate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"local-library/internal/aggregate"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRunJoinsAllResults(t *testing.T) {
	results, err := aggregate.Run(context.Background(), aggregate.Tasks{
		"books": aggregate.Query(func(ctx context.Context) ([]string, error) {
			time.Sleep(20 * time.Millisecond)
			return []string{"Foundation", "I, Robot"}, nil
		}),
		"count": aggregate.Query(func(ctx context.Context) (int64, error) {
			return 7, nil
		}),
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, []string{"Foundation", "I, Robot"}, aggregate.Get[[]string](results, "books"))
	assert.Equal(t, int64(7), aggregate.Get[int64](results, "count"))
}

func TestRunRunsTasksConcurrently(t *testing.T) {
	started := make(chan struct{}, 2)
	release := make(chan struct{})

	task := func(ctx context.Context) (any, error) {
		started <- struct{}{}
		select {
		case <-release:
			return true, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	done := make(chan error, 1)
	go func() {
		_, err := aggregate.Run(context.Background(), aggregate.Tasks{"a": task, "b": task})
		done <- err
	}()

	// Both tasks must be in flight before either is released.
	for range 2 {
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatal("tasks did not start concurrently")
		}
	}
	close(release)
	require.NoError(t, <-done)
}

func TestRunFailsWithFirstError(t *testing.T) {
	boom := errors.New("connection reset")
	var siblingCancelled bool

	results, err := aggregate.Run(context.Background(), aggregate.Tasks{
		"book": func(ctx context.Context) (any, error) {
			return nil, boom
		},
		"instances": func(ctx context.Context) (any, error) {
			select {
			case <-ctx.Done():
				siblingCancelled = true
				return nil, ctx.Err()
			case <-time.After(5 * time.Second):
				return []string{"copy"}, nil
			}
		},
	})

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "book")
	assert.Nil(t, results)
	assert.True(t, siblingCancelled)
}

func TestRunNoTasks(t *testing.T) {
	results, err := aggregate.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGetMissing(t *testing.T) {
	assert.Nil(t, aggregate.Get[[]string](aggregate.Results{}, "missing"))
	assert.Zero(t, aggregate.Get[int64](aggregate.Results{}, "missing"))
}
