package session

import (
	"context"
	"time"

	"github.com/fundwit/go-commons/types"
)

type Session struct {
	Token    string   `json:"token"`
	Identity Identity `json:"identity"`

	SigningTime time.Time       `json:"-"`
	Context     context.Context `json:"-"`
}

type Identity struct {
	ID    types.ID `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Role  string   `json:"role"`
}

func (s *Session) Clone() Session {
	return Session{Token: s.Token, Identity: s.Identity, SigningTime: s.SigningTime, Context: s.Context}
}
