package remote

import (
	"errors"
	"fmt"
)

// Kind is the closed failure taxonomy of the remote boundary. Callers that
// fall back to local data do so per kind, not via a catch-all, so the
// failure mode stays auditable.
type Kind int

const (
	KindUnreachable Kind = iota // dial/timeout/transport failure
	KindHTTPStatus              // non-2xx response
	KindEmptyBody               // 2xx with no body where one is required
	KindDecode                  // body present but not decodable
)

func (k Kind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindHTTPStatus:
		return "http_status"
	case KindEmptyBody:
		return "empty_body"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

type Error struct {
	Kind   Kind
	Op     string // e.g. "products.list"
	Status int    // set for KindHTTPStatus
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote %s: %s (status %d)", e.Op, e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("remote %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("remote %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Classify extracts the failure kind from any error returned by this
// package. Errors from elsewhere classify as KindUnreachable, the most
// conservative fallback trigger.
func Classify(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnreachable
}
