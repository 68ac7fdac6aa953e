package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/okian/supportxp/internal/domain/model"
)

// Submission outcomes as seen by the client.
const (
	outcomeAccepted  = "accepted"
	outcomeDuplicate = "duplicate"
	outcomeFailed    = "failed"
)

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 512

// Client talks to the engine's HTTP API.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a Client for baseURL with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, http.StatusOK, nil); err != nil {
		return errors.Mark(err, ErrUnhealthy)
	}
	return nil
}

// Submit posts s to POST /v1/activities and reports the outcome.
func (c *Client) Submit(ctx context.Context, s model.ActivitySubmission) (string, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return outcomeFailed, errors.Wrap(err, "marshal submission")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/activities", bytes.NewReader(body))
	if err != nil {
		return outcomeFailed, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return outcomeFailed, errors.Wrap(err, "submit activity")
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusAccepted:
		_, _ = io.Copy(io.Discard, resp.Body)
		return outcomeAccepted, nil
	case http.StatusOK:
		var ack ackResponse
		if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
			return outcomeFailed, errors.Wrap(err, "decode ack")
		}
		if ack.Duplicate {
			return outcomeDuplicate, nil
		}
		return outcomeAccepted, nil
	}
	return outcomeFailed, unexpected(resp)
}

// Stats fetches GET /v1/stats.
func (c *Client) Stats(ctx context.Context) (model.IntakeStats, error) {
	var out model.IntakeStats
	err := c.do(ctx, http.MethodGet, "/v1/stats", nil, http.StatusOK, &out)
	return out, err
}

// Leaderboard fetches the top n users from GET /v1/leaderboard.
func (c *Client) Leaderboard(ctx context.Context, n int) ([]model.XPStanding, error) {
	var out []model.XPStanding
	err := c.do(ctx, http.MethodGet, "/v1/leaderboard?limit="+strconv.Itoa(n), nil, http.StatusOK, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, want int, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != want {
		return unexpected(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}

func unexpected(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return errors.Wrapf(ErrUnexpected, "%s %s: status %d: %s",
		resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, strings.TrimSpace(string(msg)))
}
