package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/fraudsight/fraudsight/internal/agent"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type      string `json:"type"`       // "ask"
	SessionID string `json:"session_id"` // empty for new sessions
	Question  string `json:"question"`
}

// wsMessage is the outgoing WebSocket message format. One "ask" produces a
// series of "step" and "fragment" messages followed by a single "outcome".
type wsMessage struct {
	Type       string   `json:"type"` // "step", "fragment", "outcome", "error"
	SessionID  string   `json:"session_id,omitempty"`
	Step       string   `json:"step,omitempty"`
	Label      string   `json:"label,omitempty"`
	Detail     string   `json:"detail,omitempty"`
	Fragment   string   `json:"fragment,omitempty"`
	Answer     string   `json:"answer,omitempty"`
	QueryType  string   `json:"query_type,omitempty"`
	SQLQuery   string   `json:"sql_query,omitempty"`
	Score      *int     `json:"score,omitempty"`
	Sources    []string `json:"sources,omitempty"`
	Confidence string   `json:"confidence,omitempty"`
	Attempts   int      `json:"attempts,omitempty"`
	Error      string   `json:"error,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendWS(conn, wsMessage{Type: "error", Error: "invalid message format"})
			continue
		}
		if req.Type != "ask" {
			s.sendWS(conn, wsMessage{Type: "error", SessionID: req.SessionID, Error: "unknown message type: " + req.Type})
			continue
		}
		if req.Question == "" {
			s.sendWS(conn, wsMessage{Type: "error", SessionID: req.SessionID, Error: "question is required"})
			continue
		}

		s.streamAnswer(conn, r, req)
	}
}

// streamAnswer relays the processing events for one question over the
// socket as they arrive.
func (s *Server) streamAnswer(conn *websocket.Conn, r *http.Request, req wsRequest) {
	sessionID, history := s.sessions.get(req.SessionID)

	for ev := range s.processor.Process(r.Context(), req.Question, history) {
		switch ev.Kind {
		case agent.EventStep:
			s.sendWS(conn, wsMessage{
				Type:      "step",
				SessionID: sessionID,
				Step:      ev.Step,
				Label:     ev.Label,
				Detail:    ev.Detail,
			})
		case agent.EventFragment:
			s.sendWS(conn, wsMessage{
				Type:      "fragment",
				SessionID: sessionID,
				Fragment:  ev.Fragment,
			})
		case agent.EventOutcome:
			out := ev.Outcome
			m := wsMessage{
				Type:       "outcome",
				SessionID:  sessionID,
				Answer:     out.Answer,
				QueryType:  string(out.QueryType),
				Sources:    out.Sources,
				Confidence: string(out.Confidence),
				Attempts:   out.Attempts,
			}
			if out.SQL != nil {
				m.SQLQuery = out.SQL.Query
			}
			if out.Score != nil {
				m.Score = &out.Score.Score
			}
			s.sendWS(conn, m)

			if out.Confidence != agent.ConfidenceUnavailable {
				s.sessions.append(sessionID, agent.Exchange{Question: req.Question, Answer: out.Answer})
			}
		}
	}
}

func (s *Server) sendWS(conn *websocket.Conn, m wsMessage) {
	if err := conn.WriteJSON(m); err != nil {
		s.logger.Warn().Err(err).Msg("websocket write failed")
	}
}
