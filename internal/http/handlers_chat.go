package http

import (
	"net/http"

	"tradebook/internal/llm"
)

type chatRequest struct {
	Messages []llm.Message `json:"messages"`
}

type chatReply struct {
	Reply string `json:"reply"`
}

// handleChat forwards a conversation to the trading copilot and returns
// its reply. The assistant enforces its own domain restriction.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages must not be empty")
		return
	}

	reply, err := s.assistant.Chat(r.Context(), req.Messages)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatReply{Reply: reply})
}
