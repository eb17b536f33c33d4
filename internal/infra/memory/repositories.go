package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type LeadRepository struct{ s *Store }

func NewLeadRepository(s *Store) *LeadRepository { return &LeadRepository{s: s} }

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	return r.s.write(ctx, func() error {
		email := strings.ToLower(lead.Email)
		if _, taken := r.s.leadEmails[email]; taken {
			return entity.ErrEmailAlreadyExists
		}
		r.s.leads[lead.ID] = lead.Clone()
		r.s.leadEmails[email] = lead.ID
		return nil
	})
}

func (r *LeadRepository) FindByID(ctx context.Context, id int64) (*entity.Lead, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return l.Clone(), nil
}

// FindByIDForUpdate é igual ao FindByID: o lock de transação já serializa o acesso.
func (r *LeadRepository) FindByIDForUpdate(ctx context.Context, id int64) (*entity.Lead, error) {
	return r.FindByID(ctx, id)
}

// Update grava os campos do lead. Notas só entram pelo NoteRepository.
func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	return r.s.write(ctx, func() error {
		stored, ok := r.s.leads[lead.ID]
		if !ok {
			return entity.ErrLeadNotFound
		}
		oldEmail, newEmail := strings.ToLower(stored.Email), strings.ToLower(lead.Email)
		if oldEmail != newEmail {
			if _, taken := r.s.leadEmails[newEmail]; taken {
				return entity.ErrEmailAlreadyExists
			}
			delete(r.s.leadEmails, oldEmail)
			r.s.leadEmails[newEmail] = lead.ID
		}
		next := lead.Clone()
		next.Notes = stored.Notes
		r.s.leads[lead.ID] = next
		return nil
	})
}

type SaleRepository struct{ s *Store }

func NewSaleRepository(s *Store) *SaleRepository { return &SaleRepository{s: s} }

func (r *SaleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	return r.s.write(ctx, func() error {
		if _, exists := r.s.salesByLead[sale.LeadID]; exists {
			return entity.ErrDuplicateSale
		}
		sale.Version = 1
		r.s.sales[sale.ID] = sale.Clone()
		r.s.salesByLead[sale.LeadID] = sale.ID
		return nil
	})
}

func (r *SaleRepository) FindByID(ctx context.Context, id int64) (*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sale, ok := r.s.sales[id]
	if !ok {
		return nil, entity.ErrSaleNotFound
	}
	return sale.Clone(), nil
}

func (r *SaleRepository) FindByIDForUpdate(ctx context.Context, id int64) (*entity.Sale, error) {
	return r.FindByID(ctx, id)
}

func (r *SaleRepository) FindByLeadID(ctx context.Context, leadID int64) (*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.salesByLead[leadID]
	if !ok {
		return nil, entity.ErrSaleNotFound
	}
	return r.s.sales[id].Clone(), nil
}

// Update exige a mesma versão lida e incrementa a versão gravada.
func (r *SaleRepository) Update(ctx context.Context, sale *entity.Sale) error {
	return r.s.write(ctx, func() error {
		stored, ok := r.s.sales[sale.ID]
		if !ok {
			return entity.ErrSaleNotFound
		}
		if stored.Version != sale.Version {
			return entity.ErrVersionConflict
		}
		next := sale.Clone()
		next.Notes = stored.Notes
		next.Version++
		r.s.sales[sale.ID] = next
		sale.Version = next.Version
		return nil
	})
}

func (r *SaleRepository) ListContractsEndingBetween(ctx context.Context, from, to time.Time) ([]*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*entity.Sale
	for _, sale := range r.s.sales {
		end := sale.ContractEndDate
		if end != nil && !end.Before(from) && end.Before(to) {
			out = append(out, sale.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *entity.Sale) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

type NoteRepository struct{ s *Store }

func NewNoteRepository(s *Store) *NoteRepository { return &NoteRepository{s: s} }

func (r *NoteRepository) Append(ctx context.Context, kind entity.NoteEntity, entityID int64, note entity.Note) error {
	return r.s.write(ctx, func() error {
		switch kind {
		case entity.NoteEntityLead:
			l, ok := r.s.leads[entityID]
			if !ok {
				return entity.ErrLeadNotFound
			}
			l.Notes = append(slices.Clip(l.Notes), note)
		case entity.NoteEntitySale:
			sale, ok := r.s.sales[entityID]
			if !ok {
				return entity.ErrSaleNotFound
			}
			sale.Notes = append(slices.Clip(sale.Notes), note)
		}
		return nil
	})
}

type CounterRepository struct{ s *Store }

func NewCounterRepository(s *Store) *CounterRepository { return &CounterRepository{s: s} }

func (r *CounterRepository) Next(ctx context.Context, sequence string) (int64, error) {
	var v int64
	err := r.s.write(ctx, func() error {
		r.s.counters[sequence]++
		v = r.s.counters[sequence]
		return nil
	})
	return v, err
}

type UserRepository struct{ s *Store }

func NewUserRepository(s *Store) *UserRepository { return &UserRepository{s: s} }

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	return r.s.write(ctx, func() error {
		email := strings.ToLower(u.Email)
		if _, taken := r.s.userEmails[email]; taken {
			return entity.ErrEmailAlreadyExists
		}
		c := *u
		r.s.users[u.ID] = &c
		r.s.userEmails[email] = u.ID
		return nil
	})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.userEmails[strings.ToLower(email)]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	c := *r.s.users[id]
	return &c, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r *UserRepository) List(ctx context.Context) ([]entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, *u)
	}
	slices.SortFunc(out, func(a, b entity.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Email, b.Email)
	})
	return out, nil
}
