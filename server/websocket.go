package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"pkt.systems/mdpage/answer"
	"pkt.systems/mdpage/internal/metrics"
	"pkt.systems/mdpage/stream"
)

// errClientGone marks a failed frame write; the connection is abandoned.
var errClientGone = errors.New("client gone")

// handleWebSocket answers one query at a time per connection. Queries sent
// while an answer streams are read after its done frame.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxQueryFrameBytes)

	log := s.log.With().Str("conn", uuid.NewString()).Str("remote", r.RemoteAddr).Logger()
	log.Debug().Msg("client connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("websocket read failed")
			} else {
				log.Debug().Msg("client disconnected")
			}
			return
		}
		var q stream.Query
		if err := json.Unmarshal(data, &q); err != nil {
			if writeFrame(conn, stream.Error("invalid query frame: "+err.Error())) != nil {
				return
			}
			continue
		}
		query, err := answer.CheckQuery(q.Query)
		if err != nil {
			if writeFrame(conn, stream.Error(err.Error())) != nil {
				return
			}
			continue
		}
		if err := s.streamAnswer(ctx, conn, query, log); err != nil {
			return
		}
	}
}

// streamAnswer sends the answer frames followed by done, or an error frame
// when the source fails. It returns an error only when the client is gone.
func (s *Server) streamAnswer(ctx context.Context, conn *websocket.Conn, query string, log zerolog.Logger) error {
	log = log.With().Str("stream", uuid.NewString()).Logger()
	source := s.source.Name()
	metrics.ActiveStreams.Inc()
	defer metrics.ActiveStreams.Dec()

	start := time.Now()
	fragments := 0
	err := s.source.Stream(ctx, query, func(fragment string) error {
		if fragment == "" {
			return nil
		}
		if err := writeFrame(conn, stream.Answer(fragment)); err != nil {
			return fmt.Errorf("%w: %v", errClientGone, err)
		}
		fragments++
		metrics.StreamedFragments.Inc()
		return nil
	})
	switch {
	case errors.Is(err, errClientGone):
		metrics.StreamResults.WithLabelValues(source, "disconnected").Inc()
		log.Debug().Err(err).Int("fragments", fragments).Msg("client left mid-stream")
		return err
	case err != nil:
		metrics.StreamResults.WithLabelValues(source, "error").Inc()
		log.Error().Err(err).Int("fragments", fragments).Msg("answer stream failed")
		if werr := writeFrame(conn, stream.Error(err.Error())); werr != nil {
			return fmt.Errorf("%w: %v", errClientGone, werr)
		}
		return nil
	}
	metrics.StreamResults.WithLabelValues(source, "ok").Inc()
	log.Info().Int("fragments", fragments).Dur("took", time.Since(start)).Msg("answer streamed")
	if werr := writeFrame(conn, stream.Done()); werr != nil {
		return fmt.Errorf("%w: %v", errClientGone, werr)
	}
	return nil
}

func writeFrame(conn *websocket.Conn, msg stream.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(frameWriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}
