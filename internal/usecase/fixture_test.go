package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/memory"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

// MockEventPublisher - Mock para a fila de eventos de venda
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishSaleEvent(ctx context.Context, evt entity.SaleEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func eventOfType(t entity.SaleEventType) any {
	return mock.MatchedBy(func(evt entity.SaleEvent) bool { return evt.Type == t })
}

var seller = &usecase.Actor{UserID: "user-1", Name: "Ana Sales", Email: "ana@example.com", Role: entity.RoleSales}

// fixture monta os use cases sobre o store em memória com relógio controlado.
type fixture struct {
	mu  sync.Mutex
	now time.Time

	store    *memory.Store
	leads    *memory.LeadRepository
	sales    *memory.SaleRepository
	notes    *memory.NoteRepository
	counters *memory.CounterRepository
	events   *MockEventPublisher

	createLead  *usecase.CreateLeadUseCase
	updateLead  *usecase.UpdateLeadUseCase
	disposition *usecase.SetDispositionUseCase
	updateSale  *usecase.UpdateSaleUseCase
	addNote     *usecase.AddNoteUseCase
	dates       *usecase.AddImportantDateUseCase
	query       *usecase.QueryUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	f.store = memory.NewStore()
	f.leads = memory.NewLeadRepository(f.store)
	f.sales = memory.NewSaleRepository(f.store)
	f.notes = memory.NewNoteRepository(f.store)
	f.counters = memory.NewCounterRepository(f.store)
	f.events = new(MockEventPublisher)
	f.events.On("PublishSaleEvent", mock.Anything, mock.Anything).Return(nil).Maybe()

	clock := usecase.Clock(f.clock)

	f.createLead = usecase.NewCreateLeadUseCase(f.store, f.leads, f.notes, f.counters)
	f.createLead.Clock = clock

	leadSync := usecase.NewSaleLeadSync(f.sales, f.notes)
	leadSync.Clock = clock
	f.updateLead = usecase.NewUpdateLeadUseCase(f.store, f.leads, f.notes, leadSync)
	f.updateLead.Clock = clock

	f.disposition = usecase.NewSetDispositionUseCase(f.store, f.leads, f.sales, f.notes, f.counters, f.events)
	f.disposition.Clock = clock

	f.updateSale = usecase.NewUpdateSaleUseCase(f.store, f.sales, f.notes, f.events)
	f.updateSale.Clock = clock

	f.addNote = usecase.NewAddNoteUseCase(f.store, f.leads, f.sales, f.notes)
	f.addNote.Clock = clock

	f.dates = usecase.NewAddImportantDateUseCase(f.store, f.leads, f.notes)
	f.dates.Clock = clock

	f.query = usecase.NewQueryUseCase(f.leads, f.sales)
	return f
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) setNow(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

func (f *fixture) today() string {
	return f.clock().Format("2006-01-02")
}

func (f *fixture) newLead(t *testing.T, email string) *entity.Lead {
	t.Helper()
	lead, err := f.createLead.Execute(context.Background(), seller, usecase.CreateLeadInput{
		Name:            "Maria Silva",
		Email:           email,
		Phone:           "555-0100",
		BusinessName:    "Maria Bakery",
		BusinessAddress: "1 Main St",
	})
	require.NoError(t, err)
	return lead
}

func (f *fixture) newSale(t *testing.T) *entity.Sale {
	t.Helper()
	lead := f.newLead(t, "maria@example.com")
	out, err := f.disposition.Execute(context.Background(), seller, lead.ID, usecase.SetDispositionInput{Disposition: entity.DispositionSale})
	require.NoError(t, err)
	require.True(t, out.SaleCreated)
	return out.Sale
}

func noteTexts(notes []entity.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Text)
	}
	return out
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
