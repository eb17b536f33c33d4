package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// TxManager executa fn numa transação. Repositórios chamados com o ctx recebido
// participam da mesma transação; chamadas aninhadas reaproveitam a transação aberta.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type CounterRepositoryInterface interface {
	Next(ctx context.Context, sequence string) (int64, error)
}

type NoteRepositoryInterface interface {
	Append(ctx context.Context, kind entity.NoteEntity, entityID int64, note entity.Note) error
}

type LeadRepositoryInterface = entity.LeadRepositoryInterface
type SaleRepositoryInterface = entity.SaleRepositoryInterface
type UserRepositoryInterface = entity.UserRepositoryInterface

type EventPublisher interface {
	PublishSaleEvent(ctx context.Context, evt entity.SaleEvent) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

type TokenIssuer interface {
	Issue(u *entity.User) (string, error)
}

// LeadEventHandler reage a mudanças de lead dentro da transação de quem mudou.
type LeadEventHandler interface {
	HandleLeadFieldsChanged(ctx context.Context, actor *Actor, evt entity.LeadFieldsChanged) error
}

type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}
