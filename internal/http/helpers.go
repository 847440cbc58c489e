package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"

	"estoque/internal/log"
)

// renderHTML writes a rendered partial with status. Output is buffered, so a
// failed render can still answer with an error fragment.
func (s *Server) renderHTML(w http.ResponseWriter, r *http.Request, status int, name string, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		atomic.AddInt64(&s.appMetrics.partialErrors, 1)
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			log.NewFields().
				WithComponent(log.ComponentTemplate).
				WithOperation(log.OpRender).
				WithError(err).
				ToSlice()...)
		ErrorFragment(http.StatusInternalServerError, "Erro ao exibir "+name).Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
