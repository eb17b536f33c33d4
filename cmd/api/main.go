package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/ligue-crm/internal/config"
	"github.com/xavierca1/ligue-crm/internal/infra/database"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string

	rootCmd = &cobra.Command{
		Use:          "ligue-crm",
		Short:        "CRM de leads e vendas da Ligue",
		SilenceUsage: true,
		RunE:         runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Sobe a API HTTP e o worker da fila",
		RunE:  runServe,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Aplica o schema no Postgres",
		RunE:  runMigrate,
	}

	createAdminCmd = &cobra.Command{
		Use:   "create-admin",
		Short: "Cria um usuário admin",
		RunE:  runCreateAdmin,
	}
)

func init() {
	createAdminCmd.Flags().StringVar(&adminName, "name", "Admin", "nome do admin")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "email do admin")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "senha (ou ADMIN_PASSWORD)")
	_ = createAdminCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("🔥 Server CRM rodando na porta %s (store=%s)", cfg.Port, cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Printf("🛑 Encerrando servidor...")
		return srv.Shutdown(shutdownCtx)
	})

	if a.consumer != nil {
		g.Go(func() error {
			return a.consumer.Start(gctx, queue.QueueName)
		})
	}
	if a.reminders != nil {
		g.Go(func() error {
			return a.reminders.Start(gctx)
		})
	}

	return g.Wait()
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(cmd.Context(), db); err != nil {
		return err
	}
	log.Printf("✅ Schema aplicado")
	return nil
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.Store != config.StorePostgres {
		return errors.New("create-admin requires STORE=postgres")
	}
	if adminPassword == "" {
		adminPassword = cfg.AdminPassword
	}

	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.close()

	u, err := newUserUseCase(cfg, st).Bootstrap(cmd.Context(), usecase.CreateUserInput{
		Name:     adminName,
		Email:    adminEmail,
		Password: adminPassword,
	})
	if err != nil {
		return fmt.Errorf("falha ao criar admin: %w", err)
	}
	log.Printf("✅ Admin %s (%s) criado", u.Email, u.ID)
	return nil
}
