// Package gmail is a thin wrapper around the Gmail REST API. It reads with a
// pre-provisioned OAuth access token; the OAuth flow itself is outside this
// service.
package gmail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://gmail.googleapis.com/gmail/v1/users/me"

// Client calls the Gmail API for one mailbox.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

// Message is the header preview the dashboard renders.
type Message struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Snippet string `json:"snippet"`
	Body    string `json:"body,omitempty"`
}

func NewClient(accessToken string) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		baseURL:     defaultBaseURL,
		accessToken: accessToken,
	}
}

// NewClientWithEndpoint is NewClient pointed at a non-default API base URL.
func NewClientWithEndpoint(accessToken, baseURL string) *Client {
	c := NewClient(accessToken)
	c.baseURL = baseURL
	return c
}

type listResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type messageResponse struct {
	ID      string `json:"id"`
	Snippet string `json:"snippet"`
	Payload struct {
		Headers []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"headers"`
		Body struct {
			Data string `json:"data"`
		} `json:"body"`
	} `json:"payload"`
}

// ListMessages returns message IDs matching a Gmail search query, resolved to
// header previews.
func (c *Client) ListMessages(ctx context.Context, query string, max int) ([]Message, error) {
	u := fmt.Sprintf("%s/messages?q=%s&maxResults=%s",
		c.baseURL, url.QueryEscape(query), strconv.Itoa(max))

	var list listResponse
	if err := c.get(ctx, u, &list); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	messages := make([]Message, 0, len(list.Messages))
	for _, ref := range list.Messages {
		msg, err := c.GetMessage(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}
	return messages, nil
}

// GetMessage fetches one message with its From/Subject headers and snippet.
func (c *Client) GetMessage(ctx context.Context, id string) (*Message, error) {
	u := fmt.Sprintf("%s/messages/%s?format=full", c.baseURL, url.PathEscape(id))

	var raw messageResponse
	if err := c.get(ctx, u, &raw); err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}

	msg := &Message{ID: raw.ID, Snippet: raw.Snippet}
	for _, h := range raw.Payload.Headers {
		switch h.Name {
		case "From":
			msg.From = h.Value
		case "Subject":
			msg.Subject = h.Value
		}
	}
	// Fall back to the snippet when the body is not a simple part.
	msg.Body = raw.Snippet
	return msg, nil
}

func (c *Client) get(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gmail API returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
