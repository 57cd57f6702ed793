package server

import (
	"encoding/json"
	"net/http"

	"github.com/fraudsight/fraudsight/internal/agent"
)

// askRequest is the JSON body of POST /api/ask.
type askRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

// askResponse is the non-streaming answer payload.
type askResponse struct {
	SessionID  string   `json:"session_id"`
	Answer     string   `json:"answer"`
	QueryType  string   `json:"query_type"`
	SQLQuery   string   `json:"sql_query,omitempty"`
	Score      *int     `json:"score,omitempty"`
	Sources    []string `json:"sources,omitempty"`
	Confidence string   `json:"confidence"`
	Attempts   int      `json:"attempts"`
}

// handleAsk answers one question synchronously. Clients that want progress
// steps and incremental text use the WebSocket endpoint instead.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	sessionID, history := s.sessions.get(req.SessionID)

	var outcome *agent.Outcome
	for ev := range s.processor.Process(r.Context(), req.Question, history) {
		if ev.Kind == agent.EventOutcome {
			outcome = ev.Outcome
		}
	}
	if outcome == nil {
		writeError(w, http.StatusInternalServerError, "processing produced no result")
		return
	}

	if outcome.Confidence != agent.ConfidenceUnavailable {
		s.sessions.append(sessionID, agent.Exchange{Question: req.Question, Answer: outcome.Answer})
	}

	resp := askResponse{
		SessionID:  sessionID,
		Answer:     outcome.Answer,
		QueryType:  string(outcome.QueryType),
		Sources:    outcome.Sources,
		Confidence: string(outcome.Confidence),
		Attempts:   outcome.Attempts,
	}
	if outcome.SQL != nil {
		resp.SQLQuery = outcome.SQL.Query
	}
	if outcome.Score != nil {
		resp.Score = &outcome.Score.Score
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error().Err(err).Msg("encoding ask response")
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
