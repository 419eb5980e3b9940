package checker

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nikbrunner/bmlinks/internal/logging"
	"github.com/nikbrunner/bmlinks/internal/model"
	"github.com/nikbrunner/bmlinks/internal/urlutil"
)

// DefaultMaxRedirects is the number of redirects followed before giving up.
const DefaultMaxRedirects = 10

// Resolver follows the redirect chain of a single URL by hand and classifies
// the terminal response.
type Resolver struct {
	prober         Prober
	maxRedirects   int
	privateDomains []string
	logger         *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithMaxRedirects sets the redirect limit. Negative values are ignored.
func WithMaxRedirects(n int) ResolverOption {
	return func(r *Resolver) {
		if n >= 0 {
			r.maxRedirects = n
		}
	}
}

// WithPrivateDomains marks hosts whose 404/410 answers usually mean
// "login required" rather than "gone". Subdomains match too.
func WithPrivateDomains(domains ...string) ResolverOption {
	return func(r *Resolver) {
		for _, d := range domains {
			if d = strings.TrimSpace(d); d != "" {
				r.privateDomains = append(r.privateDomains, strings.ToLower(d))
			}
		}
	}
}

// WithResolverLogger sets the logger used for per-hop debug output.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a Resolver on top of the given prober.
func NewResolver(prober Prober, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		prober:       prober,
		maxRedirects: DefaultMaxRedirects,
		logger:       logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxRedirects returns the configured redirect limit.
func (r *Resolver) MaxRedirects() int {
	return r.maxRedirects
}

// Resolve checks rawURL and returns its verdict.
//
// The returned error is non-nil only when ctx was cancelled; it wraps
// ErrCancelled. Every other failure is expressed as a Result with
// model.StatusError or model.StatusNotFound.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (Result, error) {
	original := strings.TrimSpace(rawURL)
	if original == "" {
		return Result{Status: model.StatusNotFound, Message: MsgEmptyURL}, nil
	}
	if !urlutil.IsHTTPScheme(original) {
		return Result{Status: model.StatusUnknown, Message: MsgNotHTTP}, nil
	}

	originKey := urlutil.Normalize(original)
	visited := map[string]struct{}{originKey: {}}
	current := original
	redirects := 0

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrCancelled, err)
		}

		out := r.attempt(ctx, current)
		r.logger.Debug("probe", "url", current, "outcome", out.Kind.String(), "status", out.StatusCode)

		switch out.Kind {
		case KindCancelled:
			return Result{}, fmt.Errorf("%w: %w", ErrCancelled, out.Err)

		case KindTimedOut:
			res := Result{Status: model.StatusError, Message: out.Err.Error()}
			return summarize(res, originKey, current, redirects), nil

		case KindUnreachable:
			res := Result{Status: model.StatusNotFound, Message: describeError(out.Err)}
			return summarize(res, originKey, current, redirects), nil

		case KindTransportError:
			res := Result{Status: model.StatusError, Message: describeError(out.Err)}
			return summarize(res, originKey, current, redirects), nil

		case KindRedirect:
			next, failure := r.nextHop(current, out, visited, redirects)
			if failure != "" {
				r.logger.Debug("redirect chain rejected", "url", current, "reason", failure)
				return Result{Status: model.StatusError, Message: failure, StatusCode: out.StatusCode}, nil
			}
			visited[urlutil.Normalize(next)] = struct{}{}
			redirects++
			current = next

		default:
			return summarize(r.classify(current, out), originKey, current, redirects), nil
		}
	}
}

// attempt probes url with HEAD and retries once with GET when the server
// rejects HEAD with 405.
func (r *Resolver) attempt(ctx context.Context, url string) Outcome {
	out := r.prober.Probe(ctx, http.MethodHead, url)
	if out.Kind == KindMethodNotAllowed {
		r.logger.Debug("HEAD not allowed, retrying with GET", "url", url)
		out = r.prober.Probe(ctx, http.MethodGet, url)
	}
	return out
}

// nextHop validates a redirect and returns the absolute URL to follow.
// A non-empty failure ends the chain with that message.
func (r *Resolver) nextHop(current string, out Outcome, visited map[string]struct{}, redirects int) (string, string) {
	if strings.TrimSpace(out.Location) == "" {
		return "", MsgMissingLocation
	}

	next, err := urlutil.ResolveReference(current, out.Location)
	if err != nil {
		return "", fmt.Sprintf("invalid redirect Location %q", out.Location)
	}
	if !urlutil.IsHTTPScheme(next) {
		return "", fmt.Sprintf("redirect to non-HTTP URL %s", next)
	}

	if _, seen := visited[urlutil.Normalize(next)]; seen {
		return "", fmt.Sprintf("redirect loop detected after %d redirect(s)", redirects+1)
	}
	if redirects >= r.maxRedirects {
		return "", fmt.Sprintf("too many redirects (max %d)", r.maxRedirects)
	}

	return next, ""
}

// classify maps a terminal response to a status.
func (r *Resolver) classify(url string, out Outcome) Result {
	code := out.StatusCode
	res := Result{StatusCode: code, Message: statusMessage(code, out.Reason)}

	switch {
	case code >= 200 && code < 300:
		res.Status = model.StatusAccessible
	case code == http.StatusNotFound || code == http.StatusGone:
		if r.isPrivate(url) {
			res.Status = model.StatusError
			res.Message = "possibly private (" + res.Message + ")"
		} else {
			res.Status = model.StatusNotFound
		}
	default:
		res.Status = model.StatusError
	}

	return res
}

func (r *Resolver) isPrivate(url string) bool {
	host := urlutil.Host(url)
	for _, domain := range r.privateDomains {
		if urlutil.IsSameOrSubdomain(host, domain) {
			return true
		}
	}
	return false
}

// summarize records where the chain ended when it moved away from the original URL.
func summarize(res Result, originKey, final string, redirects int) Result {
	if redirects == 0 || urlutil.Normalize(final) == originKey {
		return res
	}
	res.RedirectDetected = true
	res.RedirectURL = final
	res.RedirectCount = redirects
	res.Message = fmt.Sprintf("%s (redirected %dx)", res.Message, redirects)
	return res
}
