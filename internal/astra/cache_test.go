package astra

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingFactory(calls *int32) Factory {
	return func(context.Context) (*Client, error) {
		atomic.AddInt32(calls, 1)
		return New(Options{BaseURL: "http://upstream.test"}, nil)
	}
}

func TestCache_ReturnsSameHandle(t *testing.T) {
	var calls int32
	c := NewCache("/api/rest/v1/keyspaces/ks", countingFactory(&calls), nil)

	first, err := c.Get(context.Background())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := c.Get(context.Background())
		require.NoError(t, err)
		assert.Same(t, first, again)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestCache_FailureIsNotCached(t *testing.T) {
	var calls int32
	boom := errors.New("bad credentials")
	c := NewCache("base", func(context.Context) (*Client, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, boom
		}
		return New(Options{BaseURL: "http://upstream.test"}, nil)
	}, nil)

	_, err := c.Get(context.Background())
	require.ErrorIs(t, err, boom)

	cl, err := c.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cl)

	again, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, cl, again)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestCache_ConcurrentColdStartBuildsOnce(t *testing.T) {
	var calls int32
	gate := make(chan struct{})
	c := NewCache("base", func(ctx context.Context) (*Client, error) {
		atomic.AddInt32(&calls, 1)
		<-gate
		return New(Options{BaseURL: "http://upstream.test"}, nil)
	}, nil)

	const n = 50
	var wg sync.WaitGroup
	got := make([]*Client, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], errs[i] = c.Get(context.Background())
		}(i)
	}
	close(gate)
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, got[0], got[i])
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFactoryFor(t *testing.T) {
	f := FactoryFor(Options{DatabaseID: "id", Region: "eu", Keyspace: "ks"}, nil)
	cl, err := f(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ks", cl.Keyspace())

	bad := FactoryFor(Options{BaseURL: "relative/path"}, nil)
	_, err = bad(context.Background())
	require.Error(t, err)
}
