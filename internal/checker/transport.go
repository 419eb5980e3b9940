package checker

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const (
	// DefaultTimeout bounds every single HTTP attempt (HEAD or GET).
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent identifies the checker in server logs.
	DefaultUserAgent = "bmlinks/1.0 (+https://github.com/nikbrunner/bmlinks)"
)

// Kind tags the outcome of one HTTP attempt.
type Kind int

const (
	KindResponse         Kind = iota // non-redirect response, StatusCode is set
	KindRedirect                     // 301, 302, 303, 307 or 308; Location holds the raw header
	KindMethodNotAllowed             // 405
	KindTimedOut                     // the attempt's own deadline fired
	KindCancelled                    // the caller's context was cancelled
	KindUnreachable                  // DNS failure, connection refused, network unreachable
	KindTransportError               // anything else: TLS, protocol, malformed request
)

func (k Kind) String() string {
	switch k {
	case KindResponse:
		return "response"
	case KindRedirect:
		return "redirect"
	case KindMethodNotAllowed:
		return "method-not-allowed"
	case KindTimedOut:
		return "timed-out"
	case KindCancelled:
		return "cancelled"
	case KindUnreachable:
		return "unreachable"
	case KindTransportError:
		return "transport-error"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Outcome is the result of a single HTTP attempt.
type Outcome struct {
	Kind       Kind
	StatusCode int    // 0 when no response was received
	Reason     string // reason phrase, e.g. "Not Found"
	Location   string // raw Location header for KindRedirect
	Err        error  // set for the failure kinds
}

// Prober issues one HTTP request without following redirects.
type Prober interface {
	Probe(ctx context.Context, method, rawURL string) Outcome
}

// HTTPProber is the net/http implementation of Prober.
type HTTPProber struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// ProberOption configures an HTTPProber.
type ProberOption func(*HTTPProber)

// WithTimeout sets the per-attempt timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) ProberOption {
	return func(p *HTTPProber) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every attempt.
func WithUserAgent(ua string) ProberOption {
	return func(p *HTTPProber) {
		if ua != "" {
			p.userAgent = ua
		}
	}
}

// WithHTTPClient uses the given client's transport and jar.
// Its redirect policy is always replaced so redirects reach the resolver.
func WithHTTPClient(c *http.Client) ProberOption {
	return func(p *HTTPProber) {
		if c != nil {
			p.client = c
		}
	}
}

// NewHTTPProber creates a prober with redirects disabled at the transport level.
func NewHTTPProber(opts ...ProberOption) *HTTPProber {
	p := &HTTPProber{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(p)
	}

	var client http.Client
	if p.client != nil {
		client = *p.client
	} else {
		client.Transport = newTransport()
	}
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	p.client = &client

	return p
}

// Timeout returns the per-attempt timeout.
func (p *HTTPProber) Timeout() time.Duration {
	return p.timeout
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   DefaultTimeout,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   DefaultTimeout,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
	}
}

// Probe sends a single request and reports what happened.
// Only headers are read; the body of a GET is closed unread.
func (p *HTTPProber) Probe(ctx context.Context, method, rawURL string) Outcome {
	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, rawURL, nil)
	if err != nil {
		return Outcome{Kind: KindTransportError, Err: err}
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := p.client.Do(req)
	if err != nil {
		return p.classifyError(ctx, err)
	}
	_ = resp.Body.Close()

	return outcomeFromResponse(resp)
}

// classifyError maps a client error to an outcome kind.
// The caller's context is consulted first so a user cancellation is never reported
// as a timeout or a network failure.
func (p *HTTPProber) classifyError(parent context.Context, err error) Outcome {
	if parent.Err() != nil {
		return Outcome{Kind: KindCancelled, Err: parent.Err()}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Outcome{Kind: KindTimedOut, Err: fmt.Errorf("request timed out after %s", p.timeout)}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && !dnsErr.IsTimeout {
		return Outcome{Kind: KindUnreachable, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Outcome{Kind: KindTimedOut, Err: fmt.Errorf("request timed out after %s", p.timeout)}
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return Outcome{Kind: KindUnreachable, Err: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return Outcome{Kind: KindUnreachable, Err: err}
	}

	return Outcome{Kind: KindTransportError, Err: err}
}

func outcomeFromResponse(resp *http.Response) Outcome {
	out := Outcome{
		StatusCode: resp.StatusCode,
		Reason:     reasonPhrase(resp),
	}

	switch {
	case isRedirectStatus(resp.StatusCode):
		out.Kind = KindRedirect
		out.Location = resp.Header.Get("Location")
	case resp.StatusCode == http.StatusMethodNotAllowed:
		out.Kind = KindMethodNotAllowed
	default:
		out.Kind = KindResponse
	}

	return out
}

func isRedirectStatus(code int) bool {
	switch code {
	case http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return true
	}
	return false
}

// reasonPhrase extracts "Not Found" from a Status line like "404 Not Found".
func reasonPhrase(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); reason != "" {
		return reason
	}
	return http.StatusText(resp.StatusCode)
}
