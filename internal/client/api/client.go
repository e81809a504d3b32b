// Package api implements the HTTP client for the messagely server. It keeps
// the bearer token obtained at login and attaches it to subsequent requests.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/messagely/internal/shared"
)

// Client defines the server operations available to the CLI.
type Client interface {
	Register(ctx context.Context, p RegisterParams) (string, error)
	Login(ctx context.Context, username string, password []byte) (string, error)
	SetToken(token string)
	Users(ctx context.Context) ([]UserSummary, error)
	User(ctx context.Context, username string) (*User, error)
	Inbox(ctx context.Context, username string) ([]ReceivedMessage, error)
	Sent(ctx context.Context, username string) ([]SentMessage, error)
	Message(ctx context.Context, id string) (*MessageDetail, error)
	Send(ctx context.Context, toUsername, body string) (*Message, error)
	MarkRead(ctx context.Context, id string) (*ReadReceipt, error)
}

type httpClient struct {
	baseURL string
	http    *http.Client
	token   string
}

// NewClient builds a Client for the server at baseURL, e.g. "http://localhost:3000".
func NewClient(baseURL string, timeout time.Duration) Client {
	return &httpClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *httpClient) SetToken(token string) {
	c.token = token
}

// do sends a request and decodes the JSON response into out (unless out is
// nil). Error statuses are mapped back onto the shared sentinels, so callers
// can use errors.Is the same way server-side code does.
func (c *httpClient) do(ctx context.Context, method, path string, body, out any) error {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error encoding request: %v", err)
		}
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return fmt.Errorf("error building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return errorFromStatus(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding response: %v", err)
	}
	return nil
}

func errorFromStatus(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	var sentinel error
	switch resp.StatusCode {
	case http.StatusNotFound:
		sentinel = shared.ErrorNotFound
	case http.StatusConflict:
		sentinel = shared.ErrorConflict
	case http.StatusUnauthorized:
		sentinel = shared.ErrorUnauthorized
	case http.StatusBadRequest:
		sentinel = shared.ErrorBadRequest
	default:
		sentinel = shared.ErrorInternal
	}

	if payload.Error != "" {
		return fmt.Errorf("%w: %s", sentinel, payload.Error)
	}
	return sentinel
}

func (c *httpClient) Register(ctx context.Context, p RegisterParams) (string, error) {
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/register", p, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *httpClient) Login(ctx context.Context, username string, password []byte) (string, error) {
	body := map[string]string{"username": username, "password": string(password)}
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/login", body, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *httpClient) Users(ctx context.Context) ([]UserSummary, error) {
	var resp struct {
		Users []UserSummary `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/users", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (c *httpClient) User(ctx context.Context, username string) (*User, error) {
	var resp struct {
		User *User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(username), nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *httpClient) Inbox(ctx context.Context, username string) ([]ReceivedMessage, error) {
	var resp struct {
		Messages []ReceivedMessage `json:"messages"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(username)+"/to", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func (c *httpClient) Sent(ctx context.Context, username string) ([]SentMessage, error) {
	var resp struct {
		Messages []SentMessage `json:"messages"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(username)+"/from", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func (c *httpClient) Message(ctx context.Context, id string) (*MessageDetail, error) {
	var resp struct {
		Message *MessageDetail `json:"message"`
	}
	if err := c.do(ctx, http.MethodGet, "/messages/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Message, nil
}

func (c *httpClient) Send(ctx context.Context, toUsername, body string) (*Message, error) {
	req := map[string]string{"to_username": toUsername, "body": body}
	var resp struct {
		Message *Message `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/messages", req, &resp); err != nil {
		return nil, err
	}
	return resp.Message, nil
}

func (c *httpClient) MarkRead(ctx context.Context, id string) (*ReadReceipt, error) {
	var resp struct {
		Message *ReadReceipt `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/messages/"+url.PathEscape(id)+"/read", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Message, nil
}
