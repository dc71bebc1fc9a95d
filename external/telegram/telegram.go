// Package telegram sends dashboard notifications through the Telegram Bot
// API. Callers treat it as fire-and-forget: errors are for logging only.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const apiBaseURL = "https://api.telegram.org"

// Client posts messages to one chat via one bot.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	chatID     string
}

func NewClient(token, chatID string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    apiBaseURL,
		token:      token,
		chatID:     chatID,
	}
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage posts a text message to the configured chat.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: c.chatID, Text: text})
	if err != nil {
		return err
	}

	u := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("telegram API: %s", result.Description)
	}
	return nil
}
