package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lebanesebrotherhood/brotherhood/internal/auth"
	"github.com/lebanesebrotherhood/brotherhood/internal/config"
	"github.com/lebanesebrotherhood/brotherhood/internal/gateway"
	internalhttp "github.com/lebanesebrotherhood/brotherhood/internal/http"
	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
	"github.com/lebanesebrotherhood/brotherhood/internal/repo"
	"github.com/lebanesebrotherhood/brotherhood/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("dev api stopped with error")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	demo := flag.Bool("demo", false, "seed demo members and roles")
	flag.Parse()

	cfg, err := config.LoadServer()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	ctx := context.Background()

	store := repo.New()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	authService := service.NewAuthService(store, jwtManager)

	admin, err := authService.Register(ctx, gateway.NewUser{
		Name:          "Administrator",
		Email:         cfg.SeedAdminEmail,
		Password:      cfg.SeedAdminPassword,
		IsGlobalAdmin: true,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Info().Int64("user_id", admin.ID).Str("email", admin.Email).Msg("admin seeded")

	if *demo {
		if err := seedDemo(ctx, store, authService); err != nil {
			return fmt.Errorf("seed demo: %w", err)
		}
	}

	handler, err := internalhttp.NewRouter(cfg, store, authService)
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("dev api listening on :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type demoMember struct {
	name    string
	email   string
	section membership.SectionID
	role    membership.RoleID
}

// seedDemo fills every section with a few members, backdated to the start of the year.
func seedDemo(ctx context.Context, store *repo.Store, authService *service.AuthService) error {
	members := []demoMember{
		{"Rami Haddad", "rami@brotherhood.local", membership.Chabiba, 2},
		{"Joe Khoury", "joe@brotherhood.local", membership.Chabiba, 7},
		{"Maya Saad", "maya@brotherhood.local", membership.Chabiba, membership.NormalMember},
		{"Elie Nassar", "elie@brotherhood.local", membership.Tala2e3, 9},
		{"Nour Aoun", "nour@brotherhood.local", membership.Tala2e3, membership.NormalMember},
		{"Karim Feghali", "karim@brotherhood.local", membership.Forsan, 11},
	}

	now := time.Now()
	start := membership.NewDate(now.Year(), time.January, 1)
	ledger := store.Ledger()
	for _, m := range members {
		acc, err := authService.Register(ctx, gateway.NewUser{Name: m.name, Email: m.email, Password: "brotherhood"})
		if err != nil {
			return fmt.Errorf("%s: %w", m.email, err)
		}
		if _, err := ledger.AddToSection(acc.ID, m.section, start); err != nil {
			return err
		}
		if m.role.IsSentinel() {
			continue
		}
		if _, err := ledger.AssignRole(acc.ID, m.section, m.role, start); err != nil {
			return err
		}
	}
	log.Info().Int("members", len(members)).Msg("demo data seeded")
	return nil
}
