package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"

	"estoque/internal/apiclient"
	"estoque/internal/chatbot"
	"estoque/internal/components"
	"estoque/internal/log"
)

const (
	threadCookie    = "estoque_thread"
	threadCookieAge = 30 * 24 * 60 * 60

	chatUnavailableText = "Assistente indisponível no momento."
	chatHistoryError    = "Erro ao carregar o histórico."
	chatSendError       = "Não foi possível enviar a mensagem."
	chatEmptyText       = "Escreva uma mensagem ou anexe um arquivo."
	chatInvalidText     = "Não foi possível ler a mensagem enviada."
)

// threadID returns the conversation id stored in the cookie, issuing a new
// one when missing.
func threadID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(threadCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     threadCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   threadCookieAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *Server) handleChatPage(w http.ResponseWriter, r *http.Request) {
	view := components.ChatPageView{ThreadID: threadID(w, r)}
	s.renderHTML(w, r, http.StatusOK, "assistente", func(w io.Writer) error { return s.renderer.ChatPage(w, view) })
}

// writeChat renders a batch of exchanges. Failures are rendered as fragments
// with status 200 so htmx swaps them into the conversation.
func (s *Server) writeChat(w http.ResponseWriter, r *http.Request, view components.ChatMessagesView) {
	s.renderHTML(w, r, http.StatusOK, "mensagens", func(w io.Writer) error { return s.renderer.ChatMessages(w, view) })
}

// handleChatHistory renders the stored conversation. A 404 from the backend
// means there is no history yet.
func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		s.writeChat(w, r, components.ChatMessagesView{Error: chatUnavailableText})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), partialTimeout)
	defer cancel()
	history, err := s.chat.GetChatHistory(ctx)
	switch {
	case apiclient.IsNotFound(err):
		history = nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Failed to load chat history",
			log.FieldComponent, log.ComponentChatbot, log.FieldError, err)
		s.writeChat(w, r, components.ChatMessagesView{Error: chatHistoryError})
		return
	}

	s.writeChat(w, r, components.ChatMessagesView{
		Messages:  components.BuildChatMessages(history, s.now()),
		ShowEmpty: true,
	})
}

// handleChatMessage forwards one user turn. Images go to the image endpoint,
// audio to the audio endpoint, anything else is a text message.
func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		s.writeChat(w, r, components.ChatMessagesView{Error: chatUnavailableText})
		return
	}

	req, err := ParseChatRequest(w, r)
	switch {
	case errors.Is(err, errEmptyChatMessage):
		s.writeChat(w, r, components.ChatMessagesView{Error: chatEmptyText})
		return
	case err != nil:
		s.logger.WarnContext(r.Context(), "Invalid chat request", log.FieldError, err)
		s.writeChat(w, r, components.ChatMessagesView{Error: chatInvalidText})
		return
	}
	if req.ThreadID == "" {
		req.ThreadID = threadID(w, r)
	}

	ctx, cancel := context.WithTimeout(r.Context(), apiclient.DefaultTimeout)
	defer cancel()

	var resp *chatbot.ChatResponse
	switch {
	case req.Image != nil:
		resp, err = s.chat.SendImageMessage(ctx, req)
	case req.Audio != nil:
		resp, err = s.chat.SendAudioMessage(ctx, req)
	default:
		resp, err = s.chat.SendMessage(ctx, req)
	}
	if err == nil && resp == nil {
		err = errors.New("empty assistant response")
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to send chat message",
			log.FieldComponent, log.ComponentChatbot,
			log.FieldThreadID, req.ThreadID,
			log.FieldError, err)
		s.writeChat(w, r, components.ChatMessagesView{Error: chatSendError})
		return
	}

	atomic.AddInt64(&s.appMetrics.chatMessages, 1)
	s.writeChat(w, r, components.ChatMessagesView{
		Messages: components.BuildChatMessages([]chatbot.ChatResponse{*resp}, s.now()),
	})
}
