package identity

import "fmt"

// AuthState reports the ambient authenticated session, if any.
type AuthState interface {
	UserID() (string, bool)
}

// Fingerprinter computes a device fingerprint for an anonymous caller.
type Fingerprinter interface {
	Fingerprint() (string, error)
}

// UserID is an AuthState backed by a plain user id; empty means anonymous.
type UserID string

func (u UserID) UserID() (string, bool) {
	return string(u), u != ""
}

// Resolver turns request state into a Token.
type Resolver struct {
	cache *SessionCache
}

func NewResolver(cache *SessionCache) *Resolver {
	return &Resolver{cache: cache}
}

// Resolve returns Authenticated when auth carries a user and never touches
// fp in that case. Otherwise the session's cached fingerprint is reused, or
// fp is computed once and cached under sessionID.
func (r *Resolver) Resolve(sessionID string, auth AuthState, fp Fingerprinter) (Token, error) {
	if auth != nil {
		if userID, ok := auth.UserID(); ok {
			return Authenticated(userID), nil
		}
	}

	if sessionID != "" && r.cache != nil {
		if cached, ok := r.cache.Get(sessionID); ok {
			return Anonymous(cached), nil
		}
	}

	if fp == nil {
		return Token{}, ErrUnavailable
	}
	fingerprint, err := fp.Fingerprint()
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if fingerprint == "" {
		return Token{}, ErrUnavailable
	}

	if sessionID != "" && r.cache != nil {
		r.cache.Set(sessionID, fingerprint)
	}
	return Anonymous(fingerprint), nil
}

// EndSession drops the cached fingerprint for a finished session.
func (r *Resolver) EndSession(sessionID string) {
	if sessionID == "" || r.cache == nil {
		return
	}
	r.cache.Delete(sessionID)
}
