package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReassemblerAccumulatesUntilDone(t *testing.T) {
	var seen []string
	r := NewReassembler(OnFragment(func(fragment, text string) {
		seen = append(seen, text)
	}))

	require.NoError(t, r.Feed([]byte(`{"answer":"# Title\n\n"}`)))
	require.NoError(t, r.Feed([]byte(`{"answer":"Body "}`)))
	require.NoError(t, r.Feed([]byte(`{"answer":"text."}`)))
	assert.False(t, r.Finished())
	require.NoError(t, r.Feed([]byte(`{"done":true}`)))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	text, err := r.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nBody text.", text)
	assert.Equal(t, 3, r.Fragments())
	assert.Equal(t, []string{"# Title\n\n", "# Title\n\nBody ", "# Title\n\nBody text."}, seen)

	r.Append("late")
	assert.Equal(t, "# Title\n\nBody text.", r.Text(), "fragments after completion are ignored")
}

func TestReassemblerMalformedFrameKeepsStreaming(t *testing.T) {
	var notices []string
	r := NewReassembler(OnNotice(func(n string) { notices = append(notices, n) }))
	r.Append("partial")

	err := r.Feed([]byte(`{"unexpected":1}`))
	assert.ErrorIs(t, err, ErrMalformedMessage)
	assert.False(t, r.Finished())
	assert.Equal(t, []string{NoticeMalformed}, notices)

	require.NoError(t, r.Feed([]byte(`{"answer":" more"}`)))
	assert.Equal(t, "partial more", r.Text())
}

func TestReassemblerRemoteErrorTerminates(t *testing.T) {
	r := NewReassembler()
	r.Append("kept")
	require.NoError(t, r.Feed([]byte(`{"error":"model overloaded"}`)))

	select {
	case <-r.Done():
	default:
		t.Fatal("expected stream to be finished")
	}
	var remote *RemoteError
	require.True(t, errors.As(r.Err(), &remote))
	assert.Equal(t, "model overloaded", remote.Message)
	assert.Equal(t, "kept", r.Text())

	r.Complete()
	assert.Error(t, r.Err(), "first terminal state wins")
}

func TestReassemblerIdleTimeoutCompletes(t *testing.T) {
	r := NewReassembler(WithIdleTimeout(20 * time.Millisecond))
	// no timer before the first fragment
	time.Sleep(40 * time.Millisecond)
	assert.False(t, r.Finished())

	r.Append("a")
	r.Append("b")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	text, err := r.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ab", text)
}

func TestReassemblerWithoutIdleTimeoutWaitsForMarker(t *testing.T) {
	r := NewReassembler()
	r.Append("a")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	text, err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "a", text)
	assert.False(t, r.Finished())
}

func TestReassemblerConcurrentReaders(t *testing.T) {
	r := NewReassembler()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !r.Finished() {
				_ = r.Text()
			}
		}()
	}
	for i := 0; i < 100; i++ {
		r.Append("x")
	}
	r.Complete()
	wg.Wait()
	assert.Len(t, r.Text(), 100)
}
