package http

import (
	"encoding/json"
	"html/template"
	"net/http"

	"estoque/internal/live"
)

// NotificationEvent is the client-side event that shows a toast.
const NotificationEvent = "show-notification"

// NotificationType selects the toast style.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// toast lifetime in milliseconds
var notificationDuration = map[NotificationType]int{
	NotificationSuccess: 3000,
	NotificationError:   6000,
}

// HTMXResponse collects the status, headers, HX-Trigger events and body of
// one reply. HTMX fires the events even when it does not swap the body.
type HTMXResponse struct {
	status int
	header http.Header
	events map[string]any
	body   []byte
}

// NewHTMXResponse starts a 200 reply.
func NewHTMXResponse() *HTMXResponse {
	return &HTMXResponse{
		status: http.StatusOK,
		header: make(http.Header),
		events: make(map[string]any),
	}
}

func (b *HTMXResponse) Status(code int) *HTMXResponse {
	b.status = code
	return b
}

// Trigger adds an event with its detail payload to HX-Trigger.
func (b *HTMXResponse) Trigger(event string, detail any) *HTMXResponse {
	b.events[event] = detail
	return b
}

// TriggerStatisticsRefresh makes every statistics partial on the page reload.
func (b *HTMXResponse) TriggerStatisticsRefresh(reason string, transactionID int64) *HTMXResponse {
	return b.Trigger(live.RefreshEvent, live.NewRefresh(reason, transactionID))
}

// Notify shows a toast with message.
func (b *HTMXResponse) Notify(kind NotificationType, message string) *HTMXResponse {
	return b.Trigger(NotificationEvent, map[string]any{
		"type":     string(kind),
		"message":  message,
		"duration": notificationDuration[kind],
	})
}

func (b *HTMXResponse) Header(name, value string) *HTMXResponse {
	b.header.Set(name, value)
	return b
}

// HTML sets an already escaped HTML body.
func (b *HTMXResponse) HTML(html string) *HTMXResponse {
	b.header.Set("Content-Type", "text/html; charset=utf-8")
	b.body = []byte(html)
	return b
}

// JSON sets v as the body. An encoding failure turns the reply into a 500.
func (b *HTMXResponse) JSON(v any) *HTMXResponse {
	b.header.Set("Content-Type", "application/json")
	data, err := json.Marshal(v)
	if err != nil {
		b.status = http.StatusInternalServerError
		data, _ = json.Marshal(errorBody{Error: "failed to encode response"})
	}
	b.body = data
	return b
}

// Write sends the reply.
func (b *HTMXResponse) Write(w http.ResponseWriter) {
	for name, values := range b.header {
		w.Header()[name] = values
	}
	if len(b.events) > 0 {
		if events, err := json.Marshal(b.events); err == nil {
			w.Header().Set("HX-Trigger", string(events))
		}
	}
	w.WriteHeader(b.status)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorFragment is an alert fragment with status. The message is escaped.
func ErrorFragment(status int, message string) *HTMXResponse {
	return NewHTMXResponse().
		Status(status).
		HTML(`<div class="alert alert--error" role="alert">` + template.HTMLEscapeString(message) + `</div>`)
}
