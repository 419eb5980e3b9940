package checker

import (
	"fmt"

	"github.com/nikbrunner/bmlinks/internal/model"
)

// Result is the verdict for one URL.
type Result struct {
	Status     model.LinkStatus
	Message    string
	StatusCode int // last HTTP status seen, 0 if none

	// RedirectDetected is set when the chain ended somewhere other than the
	// normalized original URL. RedirectURL and RedirectCount are only
	// meaningful when it is true.
	RedirectDetected bool
	RedirectURL      string
	RedirectCount    int
}

// RedirectTarget returns the final destination as an optional value for storage.
func (r Result) RedirectTarget() *string {
	if !r.RedirectDetected || r.RedirectURL == "" {
		return nil
	}
	dest := r.RedirectURL
	return &dest
}

func (r Result) String() string {
	if r.Message == "" {
		return r.Status.String()
	}
	return fmt.Sprintf("%s: %s", r.Status, r.Message)
}

// Message texts for verdicts reached without a terminal HTTP response.
const (
	MsgEmptyURL        = "URL is empty"
	MsgNotHTTP         = "Not an HTTP/HTTPS URL"
	MsgMissingLocation = "redirect without Location header"
)

func statusMessage(code int, reason string) string {
	if reason == "" {
		return fmt.Sprintf("HTTP %d", code)
	}
	return fmt.Sprintf("HTTP %d %s", code, reason)
}
