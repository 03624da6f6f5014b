package model

import "strconv"

// ScopeKind distinguishes authenticated owners from ephemeral guests.
type ScopeKind string

const (
	ScopeKindUser  ScopeKind = "user"
	ScopeKindGuest ScopeKind = "guest"
)

// Scope is the ownership key under which messages are written and read.
// Authenticated callers get a user scope; anonymous callers get a guest
// scope minted per browser session so two guests never share history.
type Scope struct {
	Kind       ScopeKind
	UserID     int64  // set when Kind == ScopeKindUser
	GuestToken string // set when Kind == ScopeKindGuest
}

func UserScope(userID int64) Scope {
	return Scope{Kind: ScopeKindUser, UserID: userID}
}

func GuestScope(token string) Scope {
	return Scope{Kind: ScopeKindGuest, GuestToken: token}
}

func (s Scope) IsUser() bool {
	return s.Kind == ScopeKindUser
}

// Key returns the stable string form persisted on every message, e.g.
// "user:1234" or "guest:abcd". All store queries filter on this key.
func (s Scope) Key() string {
	switch s.Kind {
	case ScopeKindUser:
		return "user:" + strconv.FormatInt(s.UserID, 10)
	case ScopeKindGuest:
		return "guest:" + s.GuestToken
	default:
		return ""
	}
}

// Valid reports whether the scope carries an owner.
func (s Scope) Valid() bool {
	switch s.Kind {
	case ScopeKindUser:
		return s.UserID != 0
	case ScopeKindGuest:
		return s.GuestToken != ""
	default:
		return false
	}
}
