// Package backend is the site's HTTP client for the registration API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/chancity/tournamenthub/internal/domain/registration"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	registrationsPath = "/api/v1/registrations"
	statusPath        = "/api/admin/settings/public/registration-status"
	healthPath        = "/health"

	// NetworkErrorMessage is the only text shown for transport failures.
	NetworkErrorMessage = "Network error. Please check your connection and try again."
	fallbackMessage     = "Registration failed"

	maxResponseBytes = 1 << 20
)

type Kind int

const (
	Success Kind = iota
	Failure
)

type ErrorKind string

const (
	ErrorNone       ErrorKind = ""
	ErrorValidation ErrorKind = "validation"
	ErrorServer     ErrorKind = "server"
	ErrorNetwork    ErrorKind = "network"
)

// Result is the outcome of one submission attempt. On Success,
// RegistrationID and Message are set; on Failure, Errors holds the ordered
// user-facing messages.
type Result struct {
	Kind           Kind
	ErrorKind      ErrorKind
	RegistrationID string
	Message        string
	Errors         []string
}

func (r Result) OK() bool { return r.Kind == Success }

// DisplayID is the short reference shown to the team: the first eight
// characters of the id upper-cased, or PENDING when the API returned none.
func (r Result) DisplayID() string {
	id := strings.TrimSpace(r.RegistrationID)
	if id == "" {
		return "PENDING"
	}
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

type clientIPKey struct{}

// WithClientIP records the visitor address that Submit forwards to the API
// as X-Forwarded-For, so per-client limits apply to the visitor and not to
// the site server.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func clientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return strings.TrimSpace(ip)
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the traced default client, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

type successBody struct {
	RegistrationID string `json:"registration_id"`
	Message        string `json:"message"`
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type detailItem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// Submit posts req to the registration endpoint. It never returns an error:
// every outcome, including transport failure, is folded into the Result.
func (c *Client) Submit(ctx context.Context, req registration.CreateRegistrationRequest) Result {
	body, err := json.Marshal(req)
	if err != nil {
		c.log.ErrorContext(ctx, "registration_encode_failed", "err", err)
		return networkFailure()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+registrationsPath, bytes.NewReader(body))
	if err != nil {
		c.log.ErrorContext(ctx, "registration_request_failed", "err", err)
		return networkFailure()
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if ip := clientIP(ctx); ip != "" {
		httpReq.Header.Set("X-Forwarded-For", ip)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.WarnContext(ctx, "registration_transport_failed", "err", err)
		return networkFailure()
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.log.WarnContext(ctx, "registration_read_failed", "err", err, "status", resp.StatusCode)
		return networkFailure()
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var ok successBody
		if err := json.Unmarshal(raw, &ok); err != nil {
			c.log.WarnContext(ctx, "registration_response_undecodable", "err", err, "status", resp.StatusCode)
			return networkFailure()
		}

		if strings.TrimSpace(ok.Message) == "" {
			ok.Message = registration.MessageSubmitted
		}

		return Result{
			Kind:           Success,
			RegistrationID: ok.RegistrationID,
			Message:        ok.Message,
		}
	}

	return failureFromBody(resp.StatusCode, raw)
}

// failureFromBody maps a non-2xx response to user-facing messages.
func failureFromBody(status int, raw []byte) Result {
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err != nil {
		msg := http.StatusText(status)
		if msg == "" {
			msg = fallbackMessage
		}
		return Result{Kind: Failure, ErrorKind: ErrorServer, Errors: []string{msg}}
	}

	var items []detailItem
	if err := json.Unmarshal(eb.Detail, &items); err == nil && items != nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			msgs = append(msgs, FormatFieldError(locStrings(it.Loc), it.Msg))
		}
		return Result{Kind: Failure, ErrorKind: ErrorValidation, Errors: msgs}
	}

	var detail string
	if err := json.Unmarshal(eb.Detail, &detail); err != nil || strings.TrimSpace(detail) == "" {
		detail = fallbackMessage
	}

	return Result{Kind: Failure, ErrorKind: ErrorServer, Errors: []string{detail}}
}

func networkFailure() Result {
	return Result{Kind: Failure, ErrorKind: ErrorNetwork, Errors: []string{NetworkErrorMessage}}
}

func locStrings(loc []any) []string {
	out := make([]string, 0, len(loc))
	for _, l := range loc {
		switch v := l.(type) {
		case string:
			out = append(out, v)
		case float64:
			out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}

// FormatFieldError renders one validation entry as "Field name: msg". The
// field is the last loc segment with underscores as spaces and the first
// letter upper-cased.
func FormatFieldError(loc []string, msg string) string {
	if len(loc) == 0 {
		return msg
	}

	field := strings.ReplaceAll(loc[len(loc)-1], "_", " ")
	if r, size := utf8.DecodeRuneInString(field); r != utf8.RuneError {
		field = string(unicode.ToUpper(r)) + field[size:]
	}

	return field + ": " + msg
}

var ErrUnexpectedStatus = errors.New("unexpected status")

type statusBody struct {
	RegistrationOpen *bool `json:"registration_open"`
}

// RegistrationOpen asks the API whether the form should be shown. Callers
// should treat any error as open.
func (c *Client) RegistrationOpen(ctx context.Context) (bool, error) {
	url := c.baseURL + statusPath + "?t=" + strconv.FormatInt(time.Now().UnixMilli(), 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return true, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return true, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var sb statusBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&sb); err != nil {
		return true, fmt.Errorf("decode registration status: %w", err)
	}
	if sb.RegistrationOpen == nil {
		return true, fmt.Errorf("decode registration status: missing registration_open")
	}

	return *sb.RegistrationOpen, nil
}

// Health reports whether the API answers its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}
