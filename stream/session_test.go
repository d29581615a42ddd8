package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// answerServer replies to every query with the given frames.
func answerServer(t *testing.T, frames func(query string) []any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var q Query
			if err := json.Unmarshal(data, &q); err != nil {
				return
			}
			for _, f := range frames(q.Query) {
				if raw, ok := f.(string); ok {
					if err := conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
						return
					}
					continue
				}
				if err := conn.WriteJSON(f); err != nil {
					return
				}
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestSessionAskStreamsAnswer(t *testing.T) {
	srv := answerServer(t, func(q string) []any {
		return []any{Answer("Echo: "), Answer(q), Done()}
	})
	var mu sync.Mutex
	var states []State
	s := NewSession(wsURL(srv), OnStateChange(func(st State) {
		mu.Lock()
		states = append(states, st)
		mu.Unlock()
	}))
	assert.Equal(t, Disconnected, s.State())

	ctx := waitCtx(t)
	r, err := s.Ask(ctx, "quantum")
	require.NoError(t, err)
	text, err := r.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Echo: quantum", text)
	assert.Equal(t, Open, s.State())
	assert.Same(t, r, s.Active())

	// the connection is reused for the next query
	r2, err := s.Ask(ctx, "again")
	require.NoError(t, err)
	text, err = r2.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Echo: again", text)

	require.NoError(t, s.Close())
	assert.Equal(t, Disconnected, s.State())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{Connecting, Open, Closing, Disconnected}, states)
}

func TestSessionRejectsOverlappingQueries(t *testing.T) {
	release := make(chan struct{})
	srv := answerServer(t, func(q string) []any {
		<-release
		return []any{Answer(q), Done()}
	})
	s := NewSession(wsURL(srv))
	defer s.Close()
	ctx := waitCtx(t)

	r, err := s.Ask(ctx, "first")
	require.NoError(t, err)
	_, err = s.Ask(ctx, "second")
	assert.ErrorIs(t, err, ErrStreamInProgress)

	close(release)
	text, err := r.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", text)
}

func TestSessionRemoteError(t *testing.T) {
	srv := answerServer(t, func(q string) []any {
		return []any{Answer("partial"), Error("Query is required")}
	})
	s := NewSession(wsURL(srv))
	defer s.Close()
	ctx := waitCtx(t)

	r, err := s.Ask(ctx, "")
	require.NoError(t, err)
	text, err := r.Wait(ctx)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "Query is required", remote.Message)
	assert.Equal(t, "partial", text)
	assert.Equal(t, Open, s.State(), "a server error does not tear down the session")
}

func TestSessionMalformedFrameIsNotFatal(t *testing.T) {
	srv := answerServer(t, func(q string) []any {
		return []any{Answer("a"), "garbage", Answer("b"), Done()}
	})
	var mu sync.Mutex
	var notices []string
	s := NewSession(wsURL(srv), WithStreamOptions(OnNotice(func(n string) {
		mu.Lock()
		notices = append(notices, n)
		mu.Unlock()
	})))
	defer s.Close()
	ctx := waitCtx(t)

	r, err := s.Ask(ctx, "q")
	require.NoError(t, err)
	text, err := r.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ab", text)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{NoticeMalformed}, notices)
}

func TestSessionDroppedConnectionFailsStreamAndReconnects(t *testing.T) {
	var mu sync.Mutex
	conns := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		mu.Lock()
		conns++
		first := conns == 1
		mu.Unlock()
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var q Query
			_ = json.Unmarshal(data, &q)
			_ = conn.WriteJSON(Answer("partial"))
			if first {
				// drop without a close frame
				conn.UnderlyingConn().Close()
				return
			}
			_ = conn.WriteJSON(Done())
		}
	}))
	defer srv.Close()

	var notices []string
	var nmu sync.Mutex
	s := NewSession(wsURL(srv))
	defer s.Close()
	ctx := waitCtx(t)

	r, err := s.Ask(ctx, "q", OnNotice(func(n string) {
		nmu.Lock()
		notices = append(notices, n)
		nmu.Unlock()
	}))
	require.NoError(t, err)
	text, err := r.Wait(ctx)
	assert.ErrorIs(t, err, ErrConnection)
	assert.Equal(t, "partial", text, "partial text is kept")
	assert.Eventually(t, func() bool { return s.State() == Disconnected }, time.Second, 10*time.Millisecond)
	nmu.Lock()
	assert.Empty(t, notices, "the failure is reported through Wait only")
	nmu.Unlock()

	// the next query re-establishes the connection with a fresh buffer
	r2, err := s.Ask(ctx, "q")
	require.NoError(t, err)
	text, err = r2.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "partial", text)
	mu.Lock()
	assert.Equal(t, 2, conns)
	mu.Unlock()
}

func TestSessionConnectFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	s := NewSession(wsURL(srv))
	_, err := s.Ask(waitCtx(t), "q")
	assert.ErrorIs(t, err, ErrConnection)
	assert.Equal(t, Disconnected, s.State())
}

func TestSessionCloseFailsActiveStream(t *testing.T) {
	srv := answerServer(t, func(q string) []any {
		return []any{Answer("started")}
	})
	s := NewSession(wsURL(srv))
	ctx := waitCtx(t)
	r, err := s.Ask(ctx, "q")
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return r.Text() == "started" }, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Close())
	_, err = r.Wait(ctx)
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.NoError(t, s.Close(), "closing twice is a no-op")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", Disconnected.String())
	assert.Equal(t, "connecting", Connecting.String())
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "closing", Closing.String())
}
