// Package client talks to the notification API and keeps a locally filtered inbox.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/notihub/notification-backend-go/internal/domain/auth"
	"github.com/notihub/notification-backend-go/internal/domain/notification"
)

// Page is one server-side page of notifications
type Page struct {
	Items []notification.NotificationResponse
	Meta  notification.PaginationMeta
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	return c.token
}

// Login asks the mock issuer for a token and keeps it for later calls
func (c *Client) Login(ctx context.Context, ownerID string) (auth.TokenResponse, error) {
	var resp auth.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/notifications/login", auth.LoginRequest{OwnerID: ownerID}, &resp, nil); err != nil {
		return auth.TokenResponse{}, err
	}
	c.token = resp.Token
	return resp, nil
}

func (c *Client) Create(ctx context.Context, req notification.CreateNotificationRequest) (*notification.NotificationResponse, error) {
	var resp notification.CreateNotificationResponse
	if err := c.do(ctx, http.MethodPost, "/api/notifications", req, &resp, nil); err != nil {
		return nil, err
	}
	return &resp.Notification, nil
}

// List fetches one page; zero page or limit lets the server pick its default
func (c *Client) List(ctx context.Context, ownerID string, page, limit int) (*Page, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/notifications/from/" + url.PathEscape(ownerID)
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	result := &Page{}
	if err := c.do(ctx, http.MethodGet, path, nil, &result.Items, &result.Meta); err != nil {
		return nil, err
	}
	if result.Items == nil {
		result.Items = []notification.NotificationResponse{}
	}
	return result, nil
}

func (c *Client) MarkRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPatch, "/api/notifications/"+url.PathEscape(id)+"/read", nil, nil, nil)
}

// Cancel soft-deletes a notification. A record that is already gone, for
// example after a racing second cancel, unwraps to ErrNotificationNotFound.
func (c *Client) Cancel(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/notifications/"+url.PathEscape(id), nil, nil, nil)
}

// Stream calls fn for every lifecycle event of ownerID until ctx ends, the
// server closes the stream, or fn returns an error
func (c *Client) Stream(ctx context.Context, ownerID string, fn func(notification.Event) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/notifications/stream/"+url.PathEscape(ownerID), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	c.authorize(req)

	// The default client timeout would cut the stream.
	streamClient := *c.httpClient
	streamClient.Timeout = 0

	resp, err := streamClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	var eventName string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			eventName = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			if !strings.HasPrefix(eventName, "notification.") {
				continue
			}
			var n notification.NotificationResponse
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &n); err != nil {
				return fmt.Errorf("decode %s event: %w", eventName, err)
			}
			if err := fn(notification.Event{Type: notification.EventType(eventName), Notification: n}); err != nil {
				return err
			}
		case line == "":
			eventName = ""
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, data, meta interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if resp.StatusCode == http.StatusNoContent || (data == nil && meta == nil) {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	if meta != nil && len(env.Meta) > 0 {
		if err := json.Unmarshal(env.Meta, meta); err != nil {
			return fmt.Errorf("decode response meta: %w", err)
		}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.Details = env.Error.Details
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
