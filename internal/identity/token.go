package identity

import "errors"

// ErrUnavailable means neither an authenticated user nor a device
// fingerprint could be established for the caller.
var ErrUnavailable = errors.New("identity unavailable")

type Kind uint8

const (
	KindNone Kind = iota
	KindAuthenticated
	KindAnonymous
)

func (k Kind) String() string {
	switch k {
	case KindAuthenticated:
		return "authenticated"
	case KindAnonymous:
		return "anonymous"
	default:
		return "none"
	}
}

// Token is the resolved voter/viewer principal for one request: either an
// authenticated user id or an anonymous browser fingerprint, never both.
// The zero value is an unavailable identity.
type Token struct {
	kind  Kind
	value string
}

func Authenticated(userID string) Token {
	if userID == "" {
		return Token{}
	}
	return Token{kind: KindAuthenticated, value: userID}
}

func Anonymous(fingerprint string) Token {
	if fingerprint == "" {
		return Token{}
	}
	return Token{kind: KindAnonymous, value: fingerprint}
}

func (t Token) Kind() Kind { return t.kind }

func (t Token) Valid() bool { return t.kind != KindNone }

func (t Token) UserID() (string, bool) {
	if t.kind != KindAuthenticated {
		return "", false
	}
	return t.value, true
}

func (t Token) Fingerprint() (string, bool) {
	if t.kind != KindAnonymous {
		return "", false
	}
	return t.value, true
}

// Key is a stable string form used for rate limiting and log fields.
func (t Token) Key() string {
	switch t.kind {
	case KindAuthenticated:
		return "u:" + t.value
	case KindAnonymous:
		return "f:" + t.value
	default:
		return ""
	}
}

func (t Token) String() string {
	if !t.Valid() {
		return "none"
	}
	return t.Key()
}
