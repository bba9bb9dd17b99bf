package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harrisonrobin/taskplan/pkg/model"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	mod = "syncclient"

	DefaultBaseURL = "http://localhost:5000/api"
	DefaultTimeout = 30 * time.Second
)

// ErrOperationFailed is returned, wrapped, by every failed remote call. The
// caller is not expected to tell a rejected request from a broken transport.
var ErrOperationFailed = errors.New("remote operation failed")

// RemoteError is a non-2xx answer from the scheduling service.
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: service answered %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: service answered %d: %s", e.Op, e.StatusCode, e.Message)
}

func (e *RemoteError) Unwrap() error { return ErrOperationFailed }

type transportError struct {
	op  string
	err error
}

func (e *transportError) Error() string { return fmt.Sprintf("%s: %v", e.op, e.err) }

func (e *transportError) Is(target error) bool { return target == ErrOperationFailed }

func (e *transportError) Unwrap() error { return e.err }

// Client talks to the remote scheduling service. It keeps no task state.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithTokenSource authenticates every request with a bearer token.
func WithTokenSource(ctx context.Context, ts oauth2.TokenSource) Option {
	return func(cl *Client) {
		hc := oauth2.NewClient(ctx, ts)
		hc.Timeout = cl.http.Timeout
		cl.http = hc
	}
}

// WithTimeout sets the per-request timeout of the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.http.Timeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tasksResponse struct {
	Tasks []model.Task `json:"tasks"`
}

type scheduleResponse struct {
	Schedule model.Schedule `json:"schedule"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// FetchAll returns every task known to the service, in service order.
func (c *Client) FetchAll(ctx context.Context) ([]model.Task, error) {
	var resp tasksResponse
	if err := c.do(ctx, "fetch tasks", http.MethodGet, "/tasks", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// AddTask submits a task that already carries its caller-generated id.
func (c *Client) AddTask(ctx context.Context, task model.Task) error {
	return c.do(ctx, "add task", http.MethodPost, "/add-task", task, nil)
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, "delete task", http.MethodDelete, "/task/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) CompleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, "complete task", http.MethodPut, "/task/"+strconv.FormatInt(id, 10)+"/complete", nil, nil)
}

// GenerateSchedule asks the service for a fresh schedule of its stored tasks.
func (c *Client) GenerateSchedule(ctx context.Context) (model.Schedule, error) {
	var resp scheduleResponse
	if err := c.do(ctx, "generate schedule", http.MethodPost, "/generate-schedule", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.Schedule, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %s: failed to encode request: %w", ErrOperationFailed, op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &transportError{op: op, err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug().Str("mod", mod).Str("op", op).Str("request_id", requestID).Err(err).Msg("transport failure")
		return &transportError{op: op, err: err}
	}
	defer resp.Body.Close()

	log.Debug().
		Str("mod", mod).
		Str("op", op).
		Str("request_id", requestID).
		Int("code", resp.StatusCode).
		TimeDiff("latency", time.Now(), start).
		Send()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remote := &RemoteError{Op: op, StatusCode: resp.StatusCode}
		var e errorResponse
		if b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); len(b) > 0 && json.Unmarshal(b, &e) == nil {
			remote.Message = e.Error
			if remote.Message == "" {
				remote.Message = e.Message
			}
		}
		return remote
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &transportError{op: op, err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
