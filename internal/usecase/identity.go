package usecase

import (
	"context"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// Actor é quem executa a operação, extraído do token de sessão.
type Actor struct {
	UserID string      `json:"id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Role   entity.Role `json:"role"`
}

// Ref é a referência gravada em createdBy.
func (a *Actor) Ref() *string {
	if a == nil || a.UserID == "" {
		return nil
	}
	id := a.UserID
	return &id
}

func (a *Actor) DisplayName() string {
	if a == nil {
		return "system"
	}
	if a.Name != "" {
		return a.Name
	}
	return a.Email
}

func requireActor(a *Actor) error {
	if a == nil || a.UserID == "" {
		return &DomainError{Code: CodeUnauthorized, Message: "authentication required"}
	}
	return nil
}

func requireAdmin(a *Actor) error {
	if err := requireActor(a); err != nil {
		return err
	}
	if a.Role != entity.RoleAdmin {
		return &DomainError{Code: CodeForbidden, Message: "admin role required"}
	}
	return nil
}

type actorKey struct{}

func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFromContext(ctx context.Context) *Actor {
	a, _ := ctx.Value(actorKey{}).(*Actor)
	return a
}
