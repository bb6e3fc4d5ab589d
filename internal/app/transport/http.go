package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"anychat/internal/pkg/auth/jwt"
	"anychat/internal/pkg/logx"
	"anychat/internal/pkg/metrics"
)

const (
	// DefaultTimeout is the per-request ceiling when none is configured.
	DefaultTimeout = 30 * time.Second

	// maxResponseSize limits response body reads.
	maxResponseSize = 10 << 20

	// RequestIDHeader carries a fresh UUID on every provider request.
	RequestIDHeader = "X-Request-ID"
)

// HTTPSender is the net/http Sender. It mints a client token for every request,
// so a long-lived sender never presents an expired token.
type HTTPSender struct {
	baseURL    string
	identity   jwt.ClientIdentity
	issuer     *jwt.Issuer
	tokenTTL   time.Duration
	rawHeader  bool
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures an HTTPSender.
type Option func(*HTTPSender)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *HTTPSender) {
		if d > 0 {
			s.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying client. Its Timeout is kept as-is.
func WithHTTPClient(c *http.Client) Option {
	return func(s *HTTPSender) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithRawAuthHeader sends "Authorization: <token>" instead of "Bearer <token>".
func WithRawAuthHeader() Option {
	return func(s *HTTPSender) { s.rawHeader = true }
}

// WithTokenTTL sets the lifetime of the per-request client token.
func WithTokenTTL(d time.Duration) Option {
	return func(s *HTTPSender) { s.tokenTTL = d }
}

// WithIssuer replaces the token issuer, mainly to pin its clock.
func WithIssuer(issuer *jwt.Issuer) Option {
	return func(s *HTTPSender) {
		if issuer != nil {
			s.issuer = issuer
		}
	}
}

// NewHTTPSender returns a Sender bound to one provider base URL and one client identity.
func NewHTTPSender(baseURL string, identity jwt.ClientIdentity, opts ...Option) *HTTPSender {
	s := &HTTPSender{
		baseURL:    strings.TrimRight(baseURL, "/"),
		identity:   identity,
		issuer:     jwt.NewIssuer(),
		tokenTTL:   jwt.DefaultTTL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger: logx.Logger().With().
			Str("component", "transport").
			Str("client_id", identity.ClientID).
			Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send implements Sender.
func (s *HTTPSender) Send(ctx context.Context, uri string, method string, data map[string]any, headers map[string]string) Envelope {
	if method == "" {
		method = http.MethodGet
	}
	requestID := uuid.NewString()

	logger := s.logger.With().
		Str("request_id", requestID).
		Str("method", method).
		Str("uri", uri).
		Logger()

	started := time.Now()
	envelope := s.do(ctx, requestID, uri, method, data, headers)
	elapsed := time.Since(started)

	metrics.ObserveRemote(method, envelope.Status, envelope.Success, elapsed)

	if envelope.Success {
		logger.Debug().Int("status", envelope.Status).Dur("latency", elapsed).Msg("Provider request completed")
	} else {
		logger.Warn().Int("status", envelope.Status).Str("error", envelope.Error).Dur("latency", elapsed).Msg("Provider request failed")
	}

	return envelope
}

func (s *HTTPSender) do(ctx context.Context, requestID, uri, method string, data map[string]any, headers map[string]string) Envelope {
	token, err := s.issuer.Mint(s.identity, nil, s.tokenTTL)
	if err != nil {
		return Envelope{Error: err.Error()}
	}
	metrics.TokenMinted("client")

	var body io.Reader
	if len(data) > 0 {
		encoded, err := json.Marshal(data)
		if err != nil {
			return Envelope{Error: fmt.Sprintf("encode request body: %v", err)}
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+uri, body)
	if err != nil {
		return Envelope{Error: fmt.Sprintf("build request: %v", err)}
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.rawHeader {
		req.Header.Set("Authorization", token)
	} else {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set(RequestIDHeader, requestID)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := s.httpClient.Do(req)
	if err != nil {
		return Envelope{Error: err.Error()}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return Envelope{Status: res.StatusCode, Error: fmt.Sprintf("read response: %v", err)}
	}

	return Envelope{
		Success: res.StatusCode >= 200 && res.StatusCode < 400,
		Status:  res.StatusCode,
		Body:    decodeBody(raw),
	}
}

// decodeBody returns nil for empty or non-JSON bodies.
func decodeBody(raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil
	}
	return decoded
}
