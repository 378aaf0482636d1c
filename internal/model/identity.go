package model

// Identity is the owner of every Revision and Run. It is either an
// authenticated user (verified bearer token) or an anonymous browser session.
type Identity struct {
	UserID    string `json:"user_id,omitempty"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// Authenticated reports whether this identity carries a verified user id.
func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

// Owns reports whether the given owner columns belong to this identity.
func (i Identity) Owns(userID, sessionID *string) bool {
	if i.Authenticated() {
		return userID != nil && *userID == i.UserID
	}
	return sessionID != nil && *sessionID == i.SessionID
}

// OwnerColumns returns the user_id/session_id pair to stamp on a new entity.
// Exactly one of the two is non-nil.
func (i Identity) OwnerColumns() (userID, sessionID *string) {
	if i.Authenticated() {
		u := i.UserID
		return &u, nil
	}
	s := i.SessionID
	return nil, &s
}
