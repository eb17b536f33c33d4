package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/auth"
	"github.com/xavierca1/ligue-crm/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/infra/memory"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type testServer struct {
	handler http.Handler
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewStore()
	leads := memory.NewLeadRepository(store)
	sales := memory.NewSaleRepository(store)
	notes := memory.NewNoteRepository(store)
	counters := memory.NewCounterRepository(store)

	tokens := auth.NewTokenService("segredo-de-teste", time.Hour)
	users := usecase.NewUserUseCase(memory.NewUserRepository(store), &auth.BcryptHasher{Cost: 4}, tokens)

	_, err := users.Bootstrap(context.Background(), usecase.CreateUserInput{
		Name: "Root", Email: "root@example.com", Password: "s3nha-forte",
	})
	require.NoError(t, err)

	query := usecase.NewQueryUseCase(leads, sales)
	noteUC := usecase.NewAddNoteUseCase(store, leads, sales, notes)

	router := handlers.NewRouter(handlers.RouterConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
		Tokens:         tokens,
		LoginLimiter:   middleware.NewRateLimiter(100),
		Health:         handlers.NewHealthHandler(store, "memory", nil),
		Auth:           handlers.NewAuthHandler(users, time.Hour, false),
		Users:          handlers.NewUserHandler(users),
		Leads: &handlers.LeadHandler{
			CreateUC:        usecase.NewCreateLeadUseCase(store, leads, notes, counters),
			UpdateUC:        usecase.NewUpdateLeadUseCase(store, leads, notes, usecase.NewSaleLeadSync(sales, notes)),
			DispositionUC:   usecase.NewSetDispositionUseCase(store, leads, sales, notes, counters, nil),
			NoteUC:          noteUC,
			ImportantDateUC: usecase.NewAddImportantDateUseCase(store, leads, notes),
			Query:           query,
		},
		Sales: &handlers.SaleHandler{
			UpdateUC: usecase.NewUpdateSaleUseCase(store, sales, notes, nil),
			NoteUC:   noteUC,
			Query:    query,
		},
	})

	s := &testServer{handler: router}
	rec := s.do(t, http.MethodPost, "/auth/login", `{"email":"root@example.com","password":"s3nha-forte"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login usecase.LoginOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	s.token = login.Token
	return s
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// TestLeadToSaleFlow - lead criado, vira venda e recebe o pagamento pela API
func TestLeadToSaleFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/leads", `{"name":"Maria Silva","email":"maria@example.com","businessName":"Bakery","businessAddress":"1 Main St"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	lead := decode[entity.Lead](t, rec)
	assert.Equal(t, int64(1), lead.ID)

	rec = s.do(t, http.MethodPut, "/leads/1/disposition", `{"disposition":"Sale"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	disp := decode[usecase.SetDispositionOutput](t, rec)
	require.True(t, disp.SaleCreated)
	assert.Equal(t, int64(1), disp.Sale.ID)

	rec = s.do(t, http.MethodPut, "/leads/1/disposition", `{"disposition":"Sale"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, usecase.CodeNoChange, decode[handlers.ErrorResponse](t, rec).Error)

	rec = s.do(t, http.MethodPatch, "/sales/1", `{"totalAmount":1200,"paymentType":"Recurring","paymentMethod":"Bank Transfer","contractTerm":12,"partialPayments":[{"amount":90,"paymentDate":"2026-03-10"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errBody := decode[handlers.ErrorResponse](t, rec)
	assert.Equal(t, usecase.CodeInvalidOperation, errBody.Error)
	assert.Contains(t, errBody.Message, "100.00")

	rec = s.do(t, http.MethodPatch, "/sales/1", `{"totalAmount":1200,"paymentType":"Recurring","paymentMethod":"Bank Transfer","contractTerm":12,"partialPayments":[{"amount":100,"paymentDate":"2026-03-10"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[usecase.UpdateSaleOutput](t, rec)
	assert.Equal(t, entity.SaleStatusPartPayment, out.Sale.Status)
	assert.Len(t, out.Sale.PartialPayments, 1)

	rec = s.do(t, http.MethodGet, "/leads/1/sale", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.PaymentMethodBankTransfer, decode[entity.Sale](t, rec).PaymentMethod)
}

func TestSaleUpdateErrors(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/leads", `{"name":"Maria","email":"maria@example.com"}`).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/leads/1/disposition", `{"disposition":"Sale"}`).Code)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"JSON inválido", "/sales/1", `{"contractTerm":`, http.StatusBadRequest, usecase.CodeInvalidInput},
		{"sem contractTerm", "/sales/1", `{"totalAmount":10}`, http.StatusBadRequest, usecase.CodeInvalidInput},
		{"cartão inválido", "/sales/1", `{"contractTerm":1,"card":"123"}`, http.StatusBadRequest, usecase.CodeInvalidInput},
		{"id não numérico", "/sales/abc", `{"contractTerm":1}`, http.StatusBadRequest, usecase.CodeInvalidInput},
		{"venda inexistente", "/sales/99", `{"contractTerm":1}`, http.StatusNotFound, usecase.CodeNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPatch, tc.path, tc.body)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decode[handlers.ErrorResponse](t, rec).Error)
		})
	}
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)

	anon := &testServer{handler: s.handler}
	rec := anon.do(t, http.MethodGet, "/leads/1", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = anon.do(t, http.MethodPost, "/auth/login", `{"email":"root@example.com","password":"errada"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/auth/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.RoleAdmin, decode[entity.User](t, rec).Role)

	rec = s.do(t, http.MethodPost, "/users", `{"name":"Bia","email":"bia@example.com","password":"12345678","role":"sales"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	// Vendedor não administra usuários.
	rec = anon.do(t, http.MethodPost, "/auth/login", `{"email":"bia@example.com","password":"12345678"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLeadRoutes(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/leads", `{"name":"Maria","email":"maria@example.com"}`).Code)

	rec := s.do(t, http.MethodPost, "/leads", `{"name":"Maria","email":"MARIA@example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPatch, "/leads/1", `{"phone":"555-0101"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "555-0101", decode[entity.Lead](t, rec).Phone)

	rec = s.do(t, http.MethodPost, "/leads/1/notes", `{"text":"ligar amanhã"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "ligar amanhã", decode[entity.Note](t, rec).Text)

	rec = s.do(t, http.MethodPost, "/leads/1/important-dates", `{"date":"2026-05-01"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"2026-05-01"}, decode[entity.Lead](t, rec).ImportantDates)

	rec = s.do(t, http.MethodGet, "/leads/1/sale", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("down") }

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	handlers.NewHealthHandler(memory.NewStore(), "memory", nil).Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[handlers.HealthResponse](t, rec)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Dependencies["memory"])
	assert.Equal(t, "not configured", body.Dependencies["rabbitmq"])

	rec = httptest.NewRecorder()
	handlers.NewHealthHandler(failingPinger{}, "postgres", nil).Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", decode[handlers.HealthResponse](t, rec).Status)
}
