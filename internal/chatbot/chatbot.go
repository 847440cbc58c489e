// Package chatbot wraps the inventory assistant endpoints of the backend.
// Responses are returned as the backend sends them; errors are never retried.
package chatbot

import (
	"context"
	"fmt"

	"estoque/internal/apiclient"
	"estoque/internal/core"
)

const (
	pathMessage      = "/bot/message"
	pathImageMessage = "/bot/image_message"
	pathAudioMessage = "/bot/audio_message"
	pathHistory      = "/bot/history"
)

// Attachment is a binary upload. Data travels base64 encoded in JSON.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// ChatRequest is one user turn.
type ChatRequest struct {
	ThreadID    string      `json:"thread_id,omitempty"`
	UserMessage string      `json:"user_message"`
	Image       *Attachment `json:"image,omitempty"`
	Audio       *Attachment `json:"audio,omitempty"`
}

// ChatResponse is the stored exchange returned by the backend.
type ChatResponse struct {
	ID          int64          `json:"id"`
	ThreadID    string         `json:"thread_id"`
	UserMessage string         `json:"user_message"`
	AIMessage   string         `json:"ai_message"`
	CreateAt    core.Timestamp `json:"create_at"`
}

// ChatHistoryEntry has the same shape as a response.
type ChatHistoryEntry = ChatResponse

// Client talks to the /bot endpoints.
type Client struct {
	api *apiclient.Client
}

// New creates a chatbot client on top of api.
func New(api *apiclient.Client) *Client {
	return &Client{api: api}
}

// SendMessage posts a text message.
func (c *Client) SendMessage(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return c.post(ctx, pathMessage, req)
}

// SendImageMessage posts a message with an image attached.
func (c *Client) SendImageMessage(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return c.post(ctx, pathImageMessage, req)
}

// SendAudioMessage posts a message with an audio clip attached.
func (c *Client) SendAudioMessage(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return c.post(ctx, pathAudioMessage, req)
}

// GetChatHistory returns every stored exchange.
func (c *Client) GetChatHistory(ctx context.Context) ([]ChatHistoryEntry, error) {
	var out []ChatHistoryEntry
	if err := c.api.GetJSON(ctx, pathHistory, nil, &out); err != nil {
		return nil, fmt.Errorf("get chat history: %w", err)
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, req ChatRequest) (*ChatResponse, error) {
	var out ChatResponse
	if err := c.api.PostJSON(ctx, path, req, &out); err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	return &out, nil
}
