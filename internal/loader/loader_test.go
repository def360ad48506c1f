package loader

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_CoalescesOneWindowIntoOneFetch(t *testing.T) {
	var calls atomic.Int32
	var gotKeys []int64
	l := New(func(_ context.Context, keys []int64) (map[int64]string, error) {
		calls.Add(1)
		gotKeys = keys
		out := make(map[int64]string, len(keys))
		for _, k := range keys {
			out[k] = "v"
		}
		return out, nil
	}, WithWait(5*time.Millisecond))

	ctx := context.Background()
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, ok, err := l.Load(ctx, 7)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, "v", v)
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, []int64{7}, gotKeys, "duplicate submits must be deduplicated before the bulk fetch")
}

func TestLoad_AbsentKeyIsNotAnError(t *testing.T) {
	l := New(func(_ context.Context, keys []int64) (map[int64]string, error) {
		out := make(map[int64]string)
		for _, k := range keys {
			if k != 2 { // 2 is absent from the store
				out[k] = "v"
			}
		}
		return out, nil
	}, WithWait(5*time.Millisecond))

	ctx := context.Background()
	t1 := l.LoadThunk(ctx, 1)
	t2 := l.LoadThunk(ctx, 2)
	t3 := l.LoadThunk(ctx, 3)

	_, ok, err := t1()
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = t2()
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = t3()
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLoad_FetchErrorFansOutToAllWaiters(t *testing.T) {
	boom := errors.New("connection reset")
	l := New(func(_ context.Context, _ []int64) (map[int64]string, error) {
		return nil, boom
	}, WithWait(5*time.Millisecond))

	ctx := context.Background()
	t1 := l.LoadThunk(ctx, 1)
	t2 := l.LoadThunk(ctx, 2)

	_, _, err := t1()
	require.ErrorIs(t, err, boom)
	_, _, err = t2()
	require.ErrorIs(t, err, boom)
}

func TestLoad_ResolvedKeysAreCachedPerInstance(t *testing.T) {
	var calls atomic.Int32
	fetch := func(_ context.Context, keys []int64) (map[int64]string, error) {
		calls.Add(1)
		out := make(map[int64]string, len(keys))
		for _, k := range keys {
			out[k] = "v"
		}
		return out, nil
	}
	l := New(fetch, WithWait(time.Millisecond))
	ctx := context.Background()

	_, _, err := l.Load(ctx, 1)
	require.NoError(t, err)
	_, _, err = l.Load(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int32(1), calls.Load())

	// a fresh instance has an empty cache
	l2 := New(fetch, WithWait(time.Millisecond))
	_, _, err = l2.Load(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int32(2), calls.Load())
}

func TestLoad_CompositeKeysAreOrderedTuples(t *testing.T) {
	l := New(func(_ context.Context, keys [][2]int64) (map[[2]int64]struct{}, error) {
		out := make(map[[2]int64]struct{})
		for _, k := range keys {
			if k == [2]int64{1, 2} {
				out[k] = struct{}{}
			}
		}
		return out, nil
	}, WithWait(5*time.Millisecond))

	ctx := context.Background()
	_, ok, err := l.Load(ctx, [2]int64{1, 2})
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.Load(ctx, [2]int64{2, 1})
	require.NoError(t, err)
	require.False(t, ok, "[a,b] and [b,a] are different keys")
}

func TestLoad_MaxBatchClosesWindowEarly(t *testing.T) {
	var batches [][]int64
	var mu sync.Mutex
	l := New(func(_ context.Context, keys []int64) (map[int64]string, error) {
		mu.Lock()
		batches = append(batches, keys)
		mu.Unlock()
		out := make(map[int64]string, len(keys))
		for _, k := range keys {
			out[k] = "v"
		}
		return out, nil
	}, WithWait(50*time.Millisecond), WithMaxBatch(2))

	ctx := context.Background()
	t1 := l.LoadThunk(ctx, 1)
	t2 := l.LoadThunk(ctx, 2) // fills the first window
	t3 := l.LoadThunk(ctx, 3) // opens a second one

	for _, th := range []func() (string, bool, error){t1, t2, t3} {
		_, ok, err := th()
		require.NoError(t, err)
		require.True(t, ok)
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, batches, 2)
	require.ElementsMatch(t, []int64{1, 2}, batches[0])
	require.Equal(t, []int64{3}, batches[1])
}

func TestLoad_CancelledWaiterDoesNotAbortDispatch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	fetched := make(chan struct{})
	l := New(func(ctx context.Context, keys []int64) (map[int64]string, error) {
		close(started)
		<-release
		// the dispatch context must survive the caller's cancellation
		require.NoError(t, ctx.Err())
		close(fetched)
		return map[int64]string{keys[0]: "v"}, nil
	}, WithWait(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	th := l.LoadThunk(ctx, 1)
	<-started
	cancel()

	// the waiter observes the cancellation and discards the result
	_, _, err := th()
	require.ErrorIs(t, err, context.Canceled)

	close(release)
	select {
	case <-fetched:
	case <-time.After(time.Second):
		t.Fatal("dispatch did not complete after waiter cancellation")
	}
}
