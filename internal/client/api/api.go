// Package client_api talks to the matchroom HTTP API on behalf of one user.
package client_api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/humanbelnik/kinoswap/matchroom/internal/protocol"
)

const tokenHeader = "X-user-token"

var (
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("forbidden")
	ErrConflict    = errors.New("conflict")
	ErrExpired     = errors.New("room expired")
	ErrBadRequest  = errors.New("bad request")
	ErrUnavailable = errors.New("service unavailable")
	ErrUnexpected  = errors.New("unexpected response")
)

type Ticket struct {
	Code     string `json:"code"`
	Pin      string `json:"pin,omitempty"`
	PoolSeed int64  `json:"pool_seed"`
	Slot     string `json:"slot"`
	Mode     string `json:"mode"`
}

type errorResponse struct {
	Message string `json:"message"`
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// New targets baseURL, e.g. http://localhost:8080/api/v1. An empty token is
// replaced by the one the server issues on the first response.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		token:   token,
	}
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) CreateRoom(ctx context.Context) (Ticket, error) {
	var t Ticket
	err := c.do(ctx, http.MethodPost, "/rooms", nil, http.StatusCreated, &t)
	return t, err
}

func (c *Client) CreateSolo(ctx context.Context, seed *int64) (Ticket, error) {
	var t Ticket
	err := c.do(ctx, http.MethodPost, "/rooms/solo", map[string]*int64{"seed": seed}, http.StatusCreated, &t)
	return t, err
}

func (c *Client) JoinRoom(ctx context.Context, code, pin string) (Ticket, error) {
	var t Ticket
	err := c.do(ctx, http.MethodPost, "/rooms/"+url.PathEscape(code)+"/join", map[string]string{"pin": pin}, http.StatusOK, &t)
	return t, err
}

func (c *Client) RefreshIdentity(ctx context.Context, code, slot string) error {
	path := fmt.Sprintf("/rooms/%s/slots/%s/identity", url.PathEscape(code), url.PathEscape(slot))
	return c.do(ctx, http.MethodPost, path, nil, http.StatusNoContent, nil)
}

func (c *Client) Queue(ctx context.Context, code, slot string, limit, offset int) (protocol.QueuePage, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	path := fmt.Sprintf("/rooms/%s/slots/%s/queue?%s", url.PathEscape(code), url.PathEscape(slot), q.Encode())

	var p protocol.QueuePage
	err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &p)
	return p, err
}

func (c *Client) Popular(ctx context.Context, offset, limit int) ([]protocol.Title, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var resp struct {
		Movies []protocol.Title `json:"movies"`
	}
	err := c.do(ctx, http.MethodGet, "/movies?"+q.Encode(), nil, http.StatusOK, &resp)
	return resp.Movies, err
}

func (c *Client) Movie(ctx context.Context, id int64) (protocol.Title, error) {
	var t protocol.Title
	err := c.do(ctx, http.MethodGet, "/movies/"+strconv.FormatInt(id, 10), nil, http.StatusOK, &t)
	return t, err
}

// Slot binds the client to one seat so it can feed a queue agent.
func (c *Client) Slot(code, slot string) *SlotSource {
	return &SlotSource{client: c, code: code, slot: slot}
}

type SlotSource struct {
	client *Client
	code   string
	slot   string
}

func (s *SlotSource) Queue(ctx context.Context, limit, offset int) (protocol.QueuePage, error) {
	return s.client.Queue(ctx, s.code, s.slot, limit, offset)
}

func (s *SlotSource) Popular(ctx context.Context, offset, limit int) ([]protocol.Title, error) {
	return s.client.Popular(ctx, offset, limit)
}

func (s *SlotSource) Title(ctx context.Context, id int64) (protocol.Title, error) {
	return s.client.Movie(ctx, id)
}

func (c *Client) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t := c.Token(); t != "" {
		req.Header.Set(tokenHeader, t)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if t := resp.Header.Get(tokenHeader); t != "" {
		c.mu.Lock()
		if c.token == "" {
			c.token = t
		}
		c.mu.Unlock()
	}

	if resp.StatusCode != want {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func statusError(resp *http.Response) error {
	var e errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&e)

	var kind error
	switch resp.StatusCode {
	case http.StatusNotFound:
		kind = ErrNotFound
	case http.StatusForbidden:
		kind = ErrForbidden
	case http.StatusConflict:
		kind = ErrConflict
	case http.StatusGone:
		kind = ErrExpired
	case http.StatusBadRequest:
		kind = ErrBadRequest
	case http.StatusServiceUnavailable:
		kind = ErrUnavailable
	default:
		kind = ErrUnexpected
	}
	if e.Message == "" {
		return fmt.Errorf("%w: %s", kind, resp.Status)
	}
	return fmt.Errorf("%w: %s", kind, e.Message)
}
