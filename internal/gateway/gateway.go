// Package gateway wraps every outbound call to the hospital-network API.
// It attaches the session's bearer token, speaks the upstream JSON
// envelope {success, data, pagination?, message?}, and normalizes all
// failure modes into a typed Error. A 401 clears the injected session so
// every caller sees one consistent unauthenticated policy. No call is
// retried automatically; retrying is the operator's decision.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/orbitcare/console/internal/session"
)

// DefaultTimeout bounds every upstream call.
const DefaultTimeout = 15 * time.Second

// maxResponseBytes caps how much of an upstream response is read.
const maxResponseBytes = 10 << 20

const fallbackMessage = "Something went wrong. Please try again."

// Client is the remote data gateway. One Client serves one session.
type Client struct {
	baseURL string
	http    *http.Client
	sess    *session.Session
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client. Handy for
// sharing a transport across sessions and for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger attaches a logger for per-call debug logging.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a gateway client for the API at baseURL, bound to sess.
func New(baseURL string, sess *session.Session, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		sess:    sess,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the upstream response convention.
type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
	Message    string          `json:"message,omitempty"`
}

// Login exchanges credentials for a token and user metadata. It does not
// mutate the session; the login flow decides what to persist.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var data struct {
		Token string `json:"token"`
		User  struct {
			Name string `json:"name"`
			Role string `json:"role"`
		} `json:"user"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &data); err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:       data.Token,
		DisplayName: data.User.Name,
		Role:        data.User.Role,
	}, nil
}

// ListHospitals fetches the unfiltered hospital listing.
func (c *Client) ListHospitals(ctx context.Context) ([]Hospital, *Pagination, error) {
	var hospitals []Hospital
	pg, err := c.do(ctx, http.MethodGet, "/hospital/fetchAll", nil, nil, &hospitals)
	if err != nil {
		return nil, nil, err
	}
	return hospitals, pg, nil
}

// SearchHospitalsByName queries the name-search endpoint with a trimmed
// free-text query.
func (c *Client) SearchHospitalsByName(ctx context.Context, q string) ([]Hospital, error) {
	query := url.Values{"q": []string{strings.TrimSpace(q)}}
	var hospitals []Hospital
	if _, err := c.do(ctx, http.MethodGet, "/hospital/fetchByName", query, nil, &hospitals); err != nil {
		return nil, err
	}
	return hospitals, nil
}

// GetHospital fetches a single hospital by id.
func (c *Client) GetHospital(ctx context.Context, id string) (*Hospital, error) {
	var h Hospital
	if _, err := c.do(ctx, http.MethodGet, "/hospital/fetchById/"+url.PathEscape(id), nil, nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// CreateHospital onboards a new hospital.
func (c *Client) CreateHospital(ctx context.Context, req CreateHospitalRequest) (*Hospital, error) {
	var h Hospital
	if _, err := c.do(ctx, http.MethodPost, "/hospital/create", nil, req, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// UpdateHospital patches an existing hospital.
func (c *Client) UpdateHospital(ctx context.Context, id string, req UpdateHospitalRequest) (*Hospital, error) {
	var h Hospital
	if _, err := c.do(ctx, http.MethodPatch, "/hospital/update/"+url.PathEscape(id), nil, req, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// ListDepartments fetches the department reference data.
func (c *Client) ListDepartments(ctx context.Context) ([]Department, error) {
	var departments []Department
	if _, err := c.do(ctx, http.MethodGet, "/department/getAll", nil, nil, &departments); err != nil {
		return nil, err
	}
	return departments, nil
}

// ListPatients fetches the read-only patient listing.
func (c *Client) ListPatients(ctx context.Context) ([]Patient, error) {
	var patients []Patient
	if _, err := c.do(ctx, http.MethodGet, "/patient/fetchAll", nil, nil, &patients); err != nil {
		return nil, err
	}
	return patients, nil
}

// do performs one upstream call and normalizes its outcome. out, when
// non-nil, receives the envelope's data field.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (*Pagination, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: KindDecode, Message: fallbackMessage, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: fallbackMessage, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.sess.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("upstream call failed")
		return nil, &Error{Kind: KindNetwork, Message: "Could not reach the server. Please try again.", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "Could not reach the server. Please try again.", Err: err}
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("upstream call")

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode == http.StatusUnauthorized {
		// One consistent policy: any 401 invalidates the session here,
		// so no caller has to remember to do it.
		c.sess.Clear()
		msg := env.Message
		if msg == "" {
			msg = "Your session has expired. Please log in again."
		}
		return nil, &Error{Kind: KindUnauthenticated, Message: msg, Status: resp.StatusCode}
	}

	if decodeErr != nil {
		kind := KindDecode
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			kind = KindBusiness
		}
		return nil, &Error{Kind: kind, Message: fallbackMessage, Status: resp.StatusCode, Err: decodeErr}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = fallbackMessage
		}
		return nil, &Error{Kind: KindBusiness, Message: msg, Status: resp.StatusCode}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, &Error{Kind: KindDecode, Message: fallbackMessage, Status: resp.StatusCode, Err: err}
		}
	}

	return env.Pagination, nil
}
