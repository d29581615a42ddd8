package stream

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Reassembler.
type Option func(*Reassembler)

// OnFragment registers a hook called after every appended fragment with the
// fragment and the accumulated text.
func OnFragment(fn func(fragment, text string)) Option {
	return func(r *Reassembler) {
		r.onFragment = fn
	}
}

// OnNotice registers a hook receiving user-facing notices such as
// NoticeMalformed.
func OnNotice(fn func(notice string)) Option {
	return func(r *Reassembler) {
		r.onNotice = fn
	}
}

// WithIdleTimeout completes the stream after d without fragments, counted
// from the last fragment. It is meant for servers that never send a done
// frame; zero disables it.
func WithIdleTimeout(d time.Duration) Option {
	return func(r *Reassembler) {
		r.idle = d
	}
}

// WithLogger sets the logger used for dropped frames.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Reassembler) {
		r.log = l
	}
}

// Reassembler accumulates the answer fragments of one stream. One goroutine
// feeds it while others read Text or wait for completion.
type Reassembler struct {
	mu        sync.Mutex
	buf       strings.Builder
	fragments int
	finished  bool
	err       error
	done      chan struct{}
	timer     *time.Timer

	idle       time.Duration
	onFragment func(fragment, text string)
	onNotice   func(string)
	log        zerolog.Logger
}

// NewReassembler returns an empty, unfinished Reassembler.
func NewReassembler(opts ...Option) *Reassembler {
	r := &Reassembler{
		done: make(chan struct{}),
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Feed decodes one frame and applies it. A malformed frame is logged and
// reported through the notice hook; the stream continues and the returned
// error wraps ErrMalformedMessage.
func (r *Reassembler) Feed(frame []byte) error {
	msg, err := DecodeMessage(frame)
	if err != nil {
		r.log.Warn().Err(err).Int("bytes", len(frame)).Msg("dropping frame")
		r.notice(NoticeMalformed)
		return err
	}
	r.Apply(msg)
	return nil
}

// Apply applies a decoded message.
func (r *Reassembler) Apply(msg Message) {
	switch msg.Kind {
	case KindAnswer:
		r.Append(msg.Text)
	case KindError:
		r.Fail(&RemoteError{Message: msg.Text})
	case KindDone:
		r.Complete()
	}
}

// Append adds a fragment. Fragments arriving after completion are ignored.
func (r *Reassembler) Append(fragment string) {
	r.mu.Lock()
	if r.finished {
		r.mu.Unlock()
		return
	}
	r.buf.WriteString(fragment)
	r.fragments++
	text := r.buf.String()
	if r.idle > 0 {
		if r.timer == nil {
			r.timer = time.AfterFunc(r.idle, r.Complete)
		} else {
			r.timer.Reset(r.idle)
		}
	}
	hook := r.onFragment
	r.mu.Unlock()
	if hook != nil {
		hook(fragment, text)
	}
}

// Complete finishes the stream successfully.
func (r *Reassembler) Complete() {
	r.finish(nil)
}

// Fail finishes the stream with err. Text received so far is kept.
func (r *Reassembler) Fail(err error) {
	if err == nil {
		err = errors.New("stream failed")
	}
	r.finish(err)
}

func (r *Reassembler) finish(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return
	}
	r.finished = true
	r.err = err
	if r.timer != nil {
		r.timer.Stop()
	}
	close(r.done)
}

// Done is closed when the stream completes or fails.
func (r *Reassembler) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the stream finishes or ctx ends and returns the
// accumulated text with the stream error, if any.
func (r *Reassembler) Wait(ctx context.Context) (string, error) {
	select {
	case <-r.done:
		return r.Text(), r.Err()
	case <-ctx.Done():
		return r.Text(), ctx.Err()
	}
}

// Text returns the text accumulated so far.
func (r *Reassembler) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

// Fragments returns the number of appended fragments.
func (r *Reassembler) Fragments() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fragments
}

// Finished reports whether the stream has completed or failed.
func (r *Reassembler) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}

// Err returns the terminal error, nil while streaming or after success.
func (r *Reassembler) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Reassembler) notice(msg string) {
	if r.onNotice != nil {
		r.onNotice(msg)
	}
}
