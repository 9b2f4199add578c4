package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/tierlist/internal/domain/model"
)

// client wraps http.Client and counts requests.
type client struct {
	http    *http.Client
	baseURL string
	stats   *Stats
}

func newClient(baseURL string, timeout time.Duration, stats *Stats) *client {
	return &client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		stats:   stats,
	}
}

// state is the subset of the session state the simulator reads.
type state struct {
	ID                string      `json:"id"`
	Buckets           []string    `json:"buckets"`
	Tiers             model.Tiers `json:"tiers"`
	CanUndo           bool        `json:"canUndo"`
	CanRedo           bool        `json:"canRedo"`
	UnrankedRemaining int         `json:"unrankedRemaining"`
	HeadToHead        string      `json:"headToHead"`
	Changed           bool        `json:"changed"`
	Duplicate         bool        `json:"duplicate"`
}

type pair struct {
	Left  model.Contestant `json:"left"`
	Right model.Contestant `json:"right"`
}

type headToHead struct {
	State       string `json:"state"`
	Pair        *pair  `json:"pair"`
	Comparisons int    `json:"comparisons"`
	Changed     bool   `json:"changed"`
	Duplicate   bool   `json:"duplicate"`
}

// do sends body as JSON (when non-nil), expects want and decodes the reply into out.
func (c *client) do(ctx context.Context, method, path string, key string, body, out any, want int) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}

	c.stats.Requests.Add(1)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != want {
		return fmt.Errorf("%w: %s %s returned %d: %s", ErrStatus, method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *client) health(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/healthz", "", nil, nil, http.StatusOK); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	return nil
}

func (c *client) create(ctx context.Context, group string, seed int64) (state, error) {
	body := map[string]any{}
	if group != "" {
		body["group"] = group
	}
	if seed != 0 {
		body["seed"] = seed
	}
	var st state
	err := c.do(ctx, http.MethodPost, "/sessions", "", body, &st, http.StatusCreated)
	return st, err
}

func (c *client) session(ctx context.Context, id string) (state, error) {
	var st state
	err := c.do(ctx, http.MethodGet, "/sessions/"+id, "", nil, &st, http.StatusOK)
	return st, err
}

// action posts to a session action that returns the session state.
func (c *client) action(ctx context.Context, id, action, key string) (state, error) {
	var st state
	err := c.do(ctx, http.MethodPost, "/sessions/"+id+"/"+action, key, nil, &st, http.StatusOK)
	return st, err
}

func (c *client) h2h(ctx context.Context, id, action, key string, body any) (headToHead, error) {
	var h headToHead
	err := c.do(ctx, http.MethodPost, "/sessions/"+id+"/h2h/"+action, key, body, &h, http.StatusOK)
	return h, err
}

func (c *client) choose(ctx context.Context, id, key, winner string) (headToHead, error) {
	return c.h2h(ctx, id, "choose", key, map[string]string{"winner_id": winner})
}

func (c *client) remove(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/sessions/"+id, "", nil, nil, http.StatusNoContent)
}
