package model

import "github.com/google/uuid"

// Identity is who sits in a slot. Token is issued to every client,
// UserID is set only once the token is bound to an account.
type Identity struct {
	Token  string
	UserID uuid.UUID
}

func (i Identity) Authenticated() bool {
	return i.UserID != uuid.Nil
}

func (i Identity) Same(other Identity) bool {
	return i.Token != "" && i.Token == other.Token
}
