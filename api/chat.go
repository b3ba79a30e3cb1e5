package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/byggassist/backend/model"
)

type chatRequest struct {
	Message string        `json:"message"`
	History []chatMessage `json:"history"`
}

type chatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type chatResult struct {
	Reply string      `json:"reply"`
	Usage model.Usage `json:"usage"`
}

// handleChat runs one conversational turn and streams the model's text
// back as server-sent events. Each text delta arrives as a "delta" event;
// a final "done" event carries the complete reply and token usage.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	messages := make([]*model.Message, 0, len(req.History)+1)
	for _, m := range req.History {
		msg := model.NewUserTextMessage(m.Text)
		if m.Role == "assistant" {
			msg.Source = model.MessageSourceModel
		}
		messages = append(messages, msg)
	}
	messages = append(messages, model.NewUserTextMessage(req.Message))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, _ := w.(http.Flusher)
	stream := func(_ context.Context, chunk string) {
		writeEvent(w, "delta", map[string]string{"text": chunk})
		if flusher != nil {
			flusher.Flush()
		}
	}

	result, err := s.gateway.RunTurn(r.Context(), messages, IdentityFrom(r.Context()), stream)
	if err != nil {
		slog.ErrorContext(r.Context(), "chat turn failed", "error", err)
		writeEvent(w, "error", map[string]string{"message": turnErrorMessage(err)})
		if flusher != nil {
			flusher.Flush()
		}
		return
	}

	writeEvent(w, "done", chatResult{Reply: result.Reply, Usage: result.Usage})
	if flusher != nil {
		flusher.Flush()
	}
}

// turnErrorMessage keeps provider internals out of client responses.
func turnErrorMessage(err error) string {
	var pe *model.ProviderError
	if errors.As(err, &pe) {
		return pe.Message()
	}
	return "The assistant could not complete this turn. Please try again."
}

func writeEvent(w http.ResponseWriter, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
