package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/xavierca1/ligue-crm/internal/config"
	"github.com/xavierca1/ligue-crm/internal/infra/auth"
	"github.com/xavierca1/ligue-crm/internal/infra/database"
	"github.com/xavierca1/ligue-crm/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/infra/mail"
	"github.com/xavierca1/ligue-crm/internal/infra/memory"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
	"github.com/xavierca1/ligue-crm/internal/infra/worker"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

// stores reúne os repositórios de um backend (Postgres ou memória).
type stores struct {
	name     string
	tx       usecase.TxManager
	leads    usecase.LeadRepositoryInterface
	sales    usecase.SaleRepositoryInterface
	notes    usecase.NoteRepositoryInterface
	counters usecase.CounterRepositoryInterface
	users    usecase.UserRepositoryInterface
	pinger   handlers.Pinger
	close    func()
}

func openStores(cfg config.Config) (*stores, error) {
	switch cfg.Store {
	case config.StoreMemory:
		s := memory.NewStore()
		log.Printf("⚠️ STORE=memory: dados não serão persistidos")
		return &stores{
			name:     "memory",
			tx:       s,
			leads:    memory.NewLeadRepository(s),
			sales:    memory.NewSaleRepository(s),
			notes:    memory.NewNoteRepository(s),
			counters: memory.NewCounterRepository(s),
			users:    memory.NewUserRepository(s),
			pinger:   s,
			close:    func() {},
		}, nil

	case config.StorePostgres:
		db, err := database.NewDBConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("falha ao conectar no banco: %w", err)
		}
		tx := database.NewTxManager(db)
		notes := database.NewNoteRepository(db)
		return &stores{
			name:     "database",
			tx:       tx,
			leads:    &database.LeadRepository{DB: db, Notes: notes},
			sales:    &database.SaleRepository{DB: db, Notes: notes},
			notes:    notes,
			counters: database.NewCounterRepository(db),
			users:    database.NewUserRepository(db),
			pinger:   tx,
			close:    func() { db.Close() },
		}, nil
	}
	return nil, fmt.Errorf("STORE inválido: %q", cfg.Store)
}

type app struct {
	router    http.Handler
	consumer  *queue.Worker
	reminders *worker.ContractExpiryWorker
	close     func()
}

func newUserUseCase(cfg config.Config, st *stores) *usecase.UserUseCase {
	return usecase.NewUserUseCase(st.users, auth.NewBcryptHasher(), auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry))
}

// bootstrapAdmin cria o admin do ADMIN_EMAIL quando ele ainda não existe.
func bootstrapAdmin(cfg config.Config, users *usecase.UserUseCase) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	u, err := users.Bootstrap(context.Background(), usecase.CreateUserInput{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	})
	if usecase.ErrorCode(err) == usecase.CodeConflict {
		return nil
	}
	if err != nil {
		return err
	}
	log.Printf("✅ Admin %s criado", u.Email)
	return nil
}

func buildApp(cfg config.Config) (*app, error) {
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRatePerMinute)
	if err := loginLimiter.TrustProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	st, err := openStores(cfg)
	if err != nil {
		return nil, err
	}

	// 1. Fila (opcional)
	var (
		rabbit    *queue.RabbitMQ
		events    usecase.EventPublisher
		consumer  *queue.Worker
		reminders *worker.ContractExpiryWorker
	)
	if cfg.RabbitMQURL != "" {
		rabbit, err = queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			st.close()
			return nil, err
		}
		events = queue.NewProducer(rabbit.Ch)

		var notifier queue.Notifier
		if cfg.MailEnabled() {
			notifier = mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom, cfg.SalesNotifyEmail)
		}
		consumer = queue.NewWorker(rabbit.Ch, notifier)

		reminder := usecase.NewContractExpiryReminderUseCase(st.sales, events, cfg.ReminderDaysAhead)
		reminders = worker.NewContractExpiryWorker(reminder, cfg.ReminderSchedule)
	} else {
		log.Printf("⚠️ RABBITMQ_URL vazio: eventos de venda desativados")
	}

	// 2. UseCases
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	users := usecase.NewUserUseCase(st.users, auth.NewBcryptHasher(), tokens)
	if err := bootstrapAdmin(cfg, users); err != nil {
		log.Printf("⚠️ Admin inicial não criado: %v", err)
	}
	query := usecase.NewQueryUseCase(st.leads, st.sales)
	notes := usecase.NewAddNoteUseCase(st.tx, st.leads, st.sales, st.notes)

	// 3. Handlers
	health := handlers.NewHealthHandler(st.pinger, st.name, nil)
	if rabbit != nil {
		health.RabbitMQ = rabbit.Conn
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Tokens:         tokens,
		LoginLimiter:   loginLimiter,
		Health:         health,
		Auth:           handlers.NewAuthHandler(users, cfg.JWTExpiry, cfg.SecureCookie),
		Users:          handlers.NewUserHandler(users),
		Leads: &handlers.LeadHandler{
			CreateUC:        usecase.NewCreateLeadUseCase(st.tx, st.leads, st.notes, st.counters),
			UpdateUC:        usecase.NewUpdateLeadUseCase(st.tx, st.leads, st.notes, usecase.NewSaleLeadSync(st.sales, st.notes)),
			DispositionUC:   usecase.NewSetDispositionUseCase(st.tx, st.leads, st.sales, st.notes, st.counters, events),
			NoteUC:          notes,
			ImportantDateUC: usecase.NewAddImportantDateUseCase(st.tx, st.leads, st.notes),
			Query:           query,
		},
		Sales: &handlers.SaleHandler{
			UpdateUC: usecase.NewUpdateSaleUseCase(st.tx, st.sales, st.notes, events),
			NoteUC:   notes,
			Query:    query,
		},
	})

	return &app{
		router:    router,
		consumer:  consumer,
		reminders: reminders,
		close: func() {
			if rabbit != nil {
				rabbit.Close()
			}
			st.close()
		},
	}, nil
}
