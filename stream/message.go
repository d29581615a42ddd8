// Package stream implements the client side of the answer transport: the
// JSON frame contract, the Reassembler that accumulates answer fragments into
// one text buffer, and the Session that owns the websocket connection.
package stream

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMalformedMessage reports a frame that is not JSON or carries none of
	// the known keys. It never ends a stream.
	ErrMalformedMessage = errors.New("malformed message")
	// ErrConnection reports a dropped or unreachable transport.
	ErrConnection = errors.New("connection error, please try again")
	// ErrNotOpen rejects sends while the session is not open.
	ErrNotOpen = errors.New("session not open")
	// ErrStreamInProgress rejects a query while another answer streams.
	ErrStreamInProgress = errors.New("stream in progress")
	// ErrSessionClosed fails the active stream when the session is closed
	// locally.
	ErrSessionClosed = errors.New("session closed")
)

// NoticeMalformed is shown to the user for malformed frames.
const NoticeMalformed = "Error processing response"

// RemoteError is an error reported by the server in an {"error": ...} frame.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return "server error: " + e.Message
}

// Kind tags the variant of a Message.
type Kind uint8

const (
	KindAnswer Kind = iota + 1
	KindError
	KindDone
)

func (k Kind) String() string {
	switch k {
	case KindAnswer:
		return "answer"
	case KindError:
		return "error"
	case KindDone:
		return "done"
	default:
		return "unknown"
	}
}

// Message is one inbound frame.
type Message struct {
	Kind Kind
	// Text is the fragment of an answer frame or the message of an error frame.
	Text string
}

// Answer returns an answer frame carrying fragment.
func Answer(fragment string) Message { return Message{Kind: KindAnswer, Text: fragment} }

// Error returns an error frame.
func Error(msg string) Message { return Message{Kind: KindError, Text: msg} }

// Done returns the terminal frame.
func Done() Message { return Message{Kind: KindDone} }

type wireMessage struct {
	Answer *string `json:"answer,omitempty"`
	Error  *string `json:"error,omitempty"`
	Done   bool    `json:"done,omitempty"`
}

// DecodeMessage parses a frame. When several keys are present, error wins
// over answer and answer over done.
func DecodeMessage(data []byte) (Message, error) {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	switch {
	case w.Error != nil:
		return Error(*w.Error), nil
	case w.Answer != nil:
		return Answer(*w.Answer), nil
	case w.Done:
		return Done(), nil
	default:
		return Message{}, fmt.Errorf("%w: no answer, error or done key", ErrMalformedMessage)
	}
}

// MarshalJSON encodes m in its wire form.
func (m Message) MarshalJSON() ([]byte, error) {
	var w wireMessage
	switch m.Kind {
	case KindAnswer:
		w.Answer = &m.Text
	case KindError:
		w.Error = &m.Text
	case KindDone:
		w.Done = true
	default:
		return nil, fmt.Errorf("stream: cannot encode message kind %d", m.Kind)
	}
	return json.Marshal(w)
}

// Query is the outbound frame asking for an answer.
type Query struct {
	Query string `json:"query"`
}
