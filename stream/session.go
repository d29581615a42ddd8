package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// State is the connection state of a Session.
type State int32

const (
	Disconnected State = iota
	Connecting
	Open
	Closing
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closing:
		return "closing"
	default:
		return "unknown"
	}
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDialer replaces the websocket dialer.
func WithDialer(d *websocket.Dialer) SessionOption {
	return func(s *Session) {
		if d != nil {
			s.dialer = d
		}
	}
}

// WithHeader sets headers sent with the websocket handshake.
func WithHeader(h http.Header) SessionOption {
	return func(s *Session) {
		s.header = h.Clone()
	}
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(l zerolog.Logger) SessionOption {
	return func(s *Session) {
		s.log = l
	}
}

// OnStateChange registers a hook called after every state transition.
func OnStateChange(fn func(State)) SessionOption {
	return func(s *Session) {
		s.onState = fn
	}
}

// WithStreamOptions sets options applied to the Reassembler of every query.
func WithStreamOptions(opts ...Option) SessionOption {
	return func(s *Session) {
		s.streamOpts = append(s.streamOpts, opts...)
	}
}

// Session owns the single websocket connection to an answer server and at
// most one active answer stream. It moves through
// Disconnected -> Connecting -> Open -> Closing -> Disconnected; a dropped
// connection returns it to Disconnected and the next Ask dials again.
type Session struct {
	url        string
	dialer     *websocket.Dialer
	header     http.Header
	log        zerolog.Logger
	onState    func(State)
	streamOpts []Option

	mu     sync.Mutex
	state  State
	conn   *websocket.Conn
	active *Reassembler
	reader chan struct{}

	writeMu sync.Mutex
}

// NewSession returns a disconnected session for the websocket at url.
func NewSession(url string, opts ...SessionOption) *Session {
	s := &Session{
		url: url,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// State returns the current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connect dials the server. It is a no-op when already open and fails with
// ErrNotOpen while another transition is in flight.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case Open:
		s.mu.Unlock()
		return nil
	case Connecting, Closing:
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotOpen, st)
	}
	s.setStateLocked(Connecting)
	s.mu.Unlock()
	s.notifyState(Connecting)

	conn, _, err := s.dialer.DialContext(ctx, s.url, s.header)
	if err != nil {
		s.mu.Lock()
		s.setStateLocked(Disconnected)
		s.mu.Unlock()
		s.notifyState(Disconnected)
		s.log.Warn().Err(err).Str("url", s.url).Msg("connect failed")
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	s.mu.Lock()
	s.conn = conn
	s.reader = make(chan struct{})
	reader := s.reader
	s.setStateLocked(Open)
	s.mu.Unlock()
	s.notifyState(Open)
	s.log.Debug().Str("url", s.url).Msg("connected")

	go s.readLoop(conn, reader)
	return nil
}

// Ask sends query and returns the Reassembler collecting its answer. A
// disconnected session is connected first. Ask fails with
// ErrStreamInProgress while a previous answer is still streaming and with
// ErrNotOpen while the session is connecting or closing.
func (s *Session) Ask(ctx context.Context, query string, opts ...Option) (*Reassembler, error) {
	if s.State() == Disconnected {
		if err := s.Connect(ctx); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	if s.state != Open {
		st := s.state
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotOpen, st)
	}
	if s.active != nil && !s.active.Finished() {
		s.mu.Unlock()
		return nil, ErrStreamInProgress
	}
	all := append(append([]Option{WithLogger(s.log)}, s.streamOpts...), opts...)
	r := NewReassembler(all...)
	s.active = r
	conn := s.conn
	s.mu.Unlock()

	data, err := json.Marshal(Query{Query: query})
	if err != nil {
		r.Fail(err)
		return nil, fmt.Errorf("stream: encode query: %w", err)
	}
	s.writeMu.Lock()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	} else {
		_ = conn.SetWriteDeadline(time.Time{})
	}
	err = conn.WriteMessage(websocket.TextMessage, data)
	s.writeMu.Unlock()
	if err != nil {
		s.log.Warn().Err(err).Msg("send failed")
		s.drop(conn, ErrConnection)
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	s.log.Debug().Str("query", query).Msg("query sent")
	return r, nil
}

// Active returns the Reassembler of the latest query, nil before the first.
func (s *Session) Active() *Reassembler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Close closes the connection. The active stream, if unfinished, fails
// with ErrSessionClosed. Close waits for the reader goroutine to exit.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state != Open {
		s.mu.Unlock()
		return nil
	}
	s.setStateLocked(Closing)
	conn := s.conn
	reader := s.reader
	s.mu.Unlock()
	s.notifyState(Closing)

	s.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	s.writeMu.Unlock()
	err := conn.Close()
	<-reader
	if err != nil {
		return fmt.Errorf("stream: close: %w", err)
	}
	return nil
}

func (s *Session) readLoop(conn *websocket.Conn, reader chan struct{}) {
	defer close(reader)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && s.State() != Closing {
				s.log.Warn().Err(err).Msg("connection dropped")
			}
			s.drop(conn, ErrConnection)
			return
		}
		s.mu.Lock()
		active := s.active
		s.mu.Unlock()
		if active == nil || active.Finished() {
			s.log.Debug().Int("bytes", len(data)).Msg("frame without active stream")
			continue
		}
		_ = active.Feed(data)
	}
}

// drop moves the session to Disconnected if conn is still current and fails
// the unfinished stream.
func (s *Session) drop(conn *websocket.Conn, cause error) {
	s.mu.Lock()
	if s.conn != conn {
		s.mu.Unlock()
		return
	}
	if s.state == Closing {
		cause = ErrSessionClosed
	}
	s.conn = nil
	s.setStateLocked(Disconnected)
	active := s.active
	s.mu.Unlock()
	_ = conn.Close()
	s.notifyState(Disconnected)
	if active != nil && !active.Finished() {
		active.Fail(cause)
	}
}

func (s *Session) setStateLocked(st State) {
	s.state = st
}

func (s *Session) notifyState(st State) {
	if s.onState != nil {
		s.onState(st)
	}
}
