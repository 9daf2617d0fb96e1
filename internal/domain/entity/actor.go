package entity

import (
	"context"

	"github.com/google/uuid"
)

// Actor is the already-authenticated caller of a workflow operation
type Actor struct {
	UserID uuid.UUID
	Role   string
}

func (a Actor) Is(roles ...string) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// IsBackOffice reports whether the actor works the intake desk or administers the system
func (a Actor) IsBackOffice() bool {
	return a.Is(RoleAgent, RoleAdmin)
}

// SystemActor is used for audit records of automatic workflow advances
var SystemActor = Actor{UserID: uuid.Nil, Role: "system"}

// RequestMeta describes the inbound request that triggered an operation
type RequestMeta struct {
	RequestID string `json:"request_id,omitempty"`
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

type requestMetaKey struct{}

func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

func RequestMetaFromContext(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta
}
