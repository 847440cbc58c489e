package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"estoque/internal/chatbot"
	"estoque/internal/core"
	"estoque/internal/statistics"
)

const (
	maxJSONBody = 64 << 10
	// maxUploadSize caps a chat message including its attachment.
	maxUploadSize = 10 << 20
)

// lists render from State, which holds no more than this
const maxListLimit = statistics.RecentTransactionsLimit

var errEmptyChatMessage = errors.New("mensagem vazia")

// ParsePeriod reads the period query parameter; unknown keys fall back to the default window.
func ParsePeriod(query url.Values) core.PeriodOption {
	return core.PeriodByKey(strings.TrimSpace(query.Get("period")))
}

// ParseLimit reads a positive limit capped at maxListLimit. Missing or invalid
// values return def.
func ParseLimit(query url.Values, def int) int {
	v := strings.TrimSpace(query.Get("limit"))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return min(n, maxListLimit)
}

// ParseID parses a positive numeric path id.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// ParseTransactionRequest decodes and validates a JSON transaction body.
func ParseTransactionRequest(r *http.Request) (core.TransactionRequest, error) {
	var req core.TransactionRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("decode transaction: %w", err)
	}
	req.Description = sanitizeInput(req.Description)
	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}

// ParseChatRequest reads the multipart chat form: message, optional image or
// audio file and thread_id. A message or an attachment is required.
func ParseChatRequest(w http.ResponseWriter, r *http.Request) (chatbot.ChatRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return chatbot.ChatRequest{}, fmt.Errorf("parse form: %w", err)
	}

	req := chatbot.ChatRequest{
		ThreadID:    sanitizeInput(r.FormValue("thread_id")),
		UserMessage: sanitizeInput(r.FormValue("message")),
	}

	var err error
	if req.Image, err = readAttachment(r, "image"); err != nil {
		return req, err
	}
	if req.Audio, err = readAttachment(r, "audio"); err != nil {
		return req, err
	}
	if req.UserMessage == "" && req.Image == nil && req.Audio == nil {
		return req, errEmptyChatMessage
	}
	return req, nil
}

func readAttachment(r *http.Request, field string) (*chatbot.Attachment, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &chatbot.Attachment{
		Filename:    sanitizeInput(header.Filename),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// sanitizeInput removes control characters except tab, newline and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
