package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func seedLead(t *testing.T, s *Store, id int64, email string) *entity.Lead {
	t.Helper()
	lead := entity.NewLead(id, "Maria", email, "", "Bakery", "1 Main St", nil, now)
	require.NoError(t, NewLeadRepository(s).Create(context.Background(), lead))
	return lead
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	leads := NewLeadRepository(s)
	counters := NewCounterRepository(s)

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		id, err := counters.Next(ctx, entity.SequenceLead)
		require.NoError(t, err)
		require.NoError(t, leads.Create(ctx, entity.NewLead(id, "Maria", "maria@example.com", "", "", "", nil, now)))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = leads.FindByID(ctx, 1)
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)

	id, err := counters.Next(ctx, entity.SequenceLead)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	// O email liberado no rollback pode ser usado de novo.
	seedLead(t, s, 2, "maria@example.com")
}

func TestWithinTxNested(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	counters := NewCounterRepository(s)

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		return s.WithinTx(ctx, func(ctx context.Context) error {
			_, err := counters.Next(ctx, entity.SequenceSale)
			return err
		})
	})
	require.NoError(t, err)

	next, err := counters.Next(ctx, entity.SequenceSale)
	require.NoError(t, err)
	assert.Equal(t, int64(2), next)
}

func TestLeadEmailIsUniqueCaseInsensitive(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedLead(t, s, 1, "maria@example.com")
	other := seedLead(t, s, 2, "joao@example.com")

	err := NewLeadRepository(s).Create(ctx, entity.NewLead(3, "X", "MARIA@example.com", "", "", "", nil, now))
	assert.ErrorIs(t, err, entity.ErrEmailAlreadyExists)

	other.Email = "Maria@Example.com"
	assert.ErrorIs(t, NewLeadRepository(s).Update(ctx, other), entity.ErrEmailAlreadyExists)
}

func TestSaleRepositoryVersioning(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	sales := NewSaleRepository(s)
	lead := seedLead(t, s, 1, "maria@example.com")

	sale := entity.NewDraftSale(1, lead, nil, now)
	require.NoError(t, sales.Create(ctx, sale))
	assert.Equal(t, 1, sale.Version)

	assert.ErrorIs(t, sales.Create(ctx, entity.NewDraftSale(2, lead, nil, now)), entity.ErrDuplicateSale)

	a, err := sales.FindByID(ctx, 1)
	require.NoError(t, err)
	b, err := sales.FindByID(ctx, 1)
	require.NoError(t, err)

	a.TotalAmount = 100
	require.NoError(t, sales.Update(ctx, a))
	assert.Equal(t, 2, a.Version)

	b.TotalAmount = 200
	assert.ErrorIs(t, sales.Update(ctx, b), entity.ErrVersionConflict)

	stored, err := sales.FindByLeadID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, stored.TotalAmount)

	missing := entity.NewDraftSale(9, lead, nil, now)
	assert.ErrorIs(t, sales.Update(ctx, missing), entity.ErrSaleNotFound)
}

func TestSaleUpdateKeepsNotes(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	sales := NewSaleRepository(s)
	notes := NewNoteRepository(s)
	lead := seedLead(t, s, 1, "maria@example.com")

	sale := entity.NewDraftSale(1, lead, nil, now)
	require.NoError(t, sales.Create(ctx, sale))

	stale, err := sales.FindByID(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, notes.Append(ctx, entity.NoteEntitySale, 1, entity.NewNote("primeira", nil, now)))

	stale.Status = entity.SaleStatusCompleted
	require.NoError(t, sales.Update(ctx, stale))

	stored, err := sales.FindByID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, stored.Notes, 1)
	assert.Equal(t, "primeira", stored.Notes[0].Text)

	assert.ErrorIs(t, notes.Append(ctx, entity.NoteEntityLead, 42, entity.NewNote("x", nil, now)), entity.ErrLeadNotFound)
}

func TestUserRepositoryListOrder(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	users := NewUserRepository(s)

	require.NoError(t, users.Create(ctx, entity.NewUser("B", "b@example.com", "h", entity.RoleSales, now.Add(time.Minute))))
	require.NoError(t, users.Create(ctx, entity.NewUser("A", "a@example.com", "h", entity.RoleAdmin, now)))
	assert.ErrorIs(t, users.Create(ctx, entity.NewUser("A", "A@example.com", "h", entity.RoleAdmin, now)), entity.ErrEmailAlreadyExists)

	list, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a@example.com", list[0].Email)
	assert.Equal(t, "b@example.com", list[1].Email)
}

func TestListContractsEndingBetween(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	sales := NewSaleRepository(s)

	day := time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC)
	ends := []*time.Time{nil, ptr(day.Add(-time.Second)), ptr(day), ptr(day.Add(23 * time.Hour)), ptr(day.Add(24 * time.Hour))}
	for i, end := range ends {
		id := int64(i + 1)
		lead := seedLead(t, s, id, fmt.Sprintf("lead%d@example.com", id))
		sale := entity.NewDraftSale(id, lead, nil, now)
		sale.ContractEndDate = end
		require.NoError(t, sales.Create(ctx, sale))
	}

	got, err := sales.ListContractsEndingBetween(ctx, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(4), got[1].ID)
}

func ptr[T any](v T) *T { return &v }
