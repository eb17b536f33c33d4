package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// Store guarda leads, vendas, usuários e contadores em memória. Usado com STORE=memory
// e nos testes. Transações são serializadas e desfeitas por snapshot em caso de erro.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	leads       map[int64]*entity.Lead
	leadEmails  map[string]int64
	sales       map[int64]*entity.Sale
	salesByLead map[int64]int64
	users       map[string]*entity.User
	userEmails  map[string]string
	counters    map[string]int64
}

func NewStore() *Store {
	return &Store{
		leads:       make(map[int64]*entity.Lead),
		leadEmails:  make(map[string]int64),
		sales:       make(map[int64]*entity.Sale),
		salesByLead: make(map[int64]int64),
		users:       make(map[string]*entity.User),
		userEmails:  make(map[string]string),
		counters:    make(map[string]int64),
	}
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// WithinTx segura o lock de transação até fn terminar. Chamadas aninhadas
// reaproveitam a transação aberta.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// write roda fn com o lock de escrita. Fora de transação, a escrita também
// espera transações em andamento para não ser apagada por um rollback.
func (s *Store) write(ctx context.Context, fn func() error) error {
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

type snapshot struct {
	leads       map[int64]*entity.Lead
	leadEmails  map[string]int64
	sales       map[int64]*entity.Sale
	salesByLead map[int64]int64
	users       map[string]*entity.User
	userEmails  map[string]string
	counters    map[string]int64
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		leads:       make(map[int64]*entity.Lead, len(s.leads)),
		leadEmails:  maps.Clone(s.leadEmails),
		sales:       make(map[int64]*entity.Sale, len(s.sales)),
		salesByLead: maps.Clone(s.salesByLead),
		users:       make(map[string]*entity.User, len(s.users)),
		userEmails:  maps.Clone(s.userEmails),
		counters:    maps.Clone(s.counters),
	}
	for id, l := range s.leads {
		snap.leads[id] = l.Clone()
	}
	for id, sale := range s.sales {
		snap.sales[id] = sale.Clone()
	}
	for id, u := range s.users {
		c := *u
		snap.users[id] = &c
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads = snap.leads
	s.leadEmails = snap.leadEmails
	s.sales = snap.sales
	s.salesByLead = snap.salesByLead
	s.users = snap.users
	s.userEmails = snap.userEmails
	s.counters = snap.counters
}
