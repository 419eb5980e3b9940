package model

import "fmt"

// LinkStatus is the last known accessibility of a bookmark URL.
type LinkStatus int

const (
	StatusUnknown    LinkStatus = iota // not checked yet, or not an HTTP/HTTPS URL
	StatusAccessible                   // 2xx after following redirects
	StatusNotFound                     // 404/410, DNS failure, connection refused
	StatusError                        // any other failure
)

var linkStatusNames = map[LinkStatus]string{
	StatusUnknown:    "unknown",
	StatusAccessible: "accessible",
	StatusNotFound:   "not_found",
	StatusError:      "error",
}

// String returns the stable lowercase name used in JSON and SQLite.
func (s LinkStatus) String() string {
	if name, ok := linkStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("LinkStatus(%d)", int(s))
}

// ParseLinkStatus converts a stored name back into a LinkStatus.
// Empty input maps to StatusUnknown so records written before checking existed load cleanly.
func ParseLinkStatus(name string) (LinkStatus, error) {
	if name == "" {
		return StatusUnknown, nil
	}
	for status, n := range linkStatusNames {
		if n == name {
			return status, nil
		}
	}
	return StatusUnknown, fmt.Errorf("unknown link status %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s LinkStatus) MarshalText() ([]byte, error) {
	if _, ok := linkStatusNames[s]; !ok {
		return nil, fmt.Errorf("invalid link status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *LinkStatus) UnmarshalText(text []byte) error {
	status, err := ParseLinkStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// IsFailure reports whether the status represents a broken link.
func (s LinkStatus) IsFailure() bool {
	return s == StatusNotFound || s == StatusError
}
