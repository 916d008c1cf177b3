package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lebanesebrotherhood/brotherhood/internal/config"
	"github.com/lebanesebrotherhood/brotherhood/internal/gateway"
	"github.com/lebanesebrotherhood/brotherhood/internal/session"
)

type app struct {
	cfg     *config.Config
	manager *session.Manager
	logger  zerolog.Logger
}

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"login":          runLogin,
	"logout":         runLogout,
	"whoami":         runWhoami,
	"sections":       runSections,
	"members":        runMembers,
	"assign":         runAssign,
	"remove-role":    runRemoveRole,
	"add-to-section": runAddToSection,
	"leave-section":  runLeaveSection,
	"users":          runUsers,
	"add-user":       runAddUser,
	"delete-user":    runDeleteUser,
	"events":         runEvents,
	"add-event":      runAddEvent,
	"shops":          runShops,
	"add-shop":       runAddShop,
	"drive":          runDrive,
	"meetings":       runMeetings,
	"set-meeting":    runSetMeeting,
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, closeFn, err := newApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("setup")
	}
	defer closeFn()

	if err := cmd(ctx, a, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		closeFn()
		os.Exit(1)
	}
}

func newApp(cfg *config.Config) (*app, func(), error) {
	logger := log.Logger

	client, err := gateway.New(gateway.Config{
		BaseURL:           cfg.APIURL,
		Timeout:           cfg.HTTPTimeout,
		RequestsPerSecond: cfg.APIRateLimit.RequestsPerSecond,
		Burst:             cfg.APIRateLimit.Burst,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	var store session.Store
	closeFn := func() {}
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis parse: %w", err)
		}
		rdb := redis.NewClient(opts)
		closeFn = func() { _ = rdb.Close() }
		store = session.NewRedisStore(rdb, cfg.Profile)
	default:
		store = session.NewFileStore(cfg.SessionFile)
	}

	return &app{
		cfg:     cfg,
		manager: session.NewManager(client, store, logger),
		logger:  logger,
	}, closeFn, nil
}

// session returns the signed-in session and the gateway bound to it.
func (a *app) session(ctx context.Context) (*session.Session, *gateway.Client, error) {
	s, err := a.manager.Current(ctx)
	if err != nil {
		return nil, nil, err
	}
	return s, a.manager.Client(s), nil
}

func describe(err error) string {
	switch {
	case errors.Is(err, session.ErrNoSession):
		return "not signed in; run `brotherhood login`"
	case errors.Is(err, session.ErrExpired):
		return "session expired; run `brotherhood login` again"
	}
	var gerr *gateway.Error
	if errors.As(err, &gerr) {
		lines := append([]string{gerr.UserMessage()}, gerr.FieldErrors()...)
		return strings.Join(lines, "\n  ")
	}
	return err.Error()
}

func usage() {
	fmt.Fprintln(os.Stderr, "brotherhood console")
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  brotherhood login --email you@example.org [--password ...]")
	fmt.Fprintln(os.Stderr, "  brotherhood logout | whoami | sections")
	fmt.Fprintln(os.Stderr, "  brotherhood members --section chabiba [--date 2024-06-01] [--search name]")
	fmt.Fprintln(os.Stderr, "  brotherhood assign --section chabiba --user 12 --role \"Amin Ser\"")
	fmt.Fprintln(os.Stderr, "  brotherhood remove-role --section chabiba --user 12")
	fmt.Fprintln(os.Stderr, "  brotherhood add-to-section --section forsan --user 12")
	fmt.Fprintln(os.Stderr, "  brotherhood leave-section --section forsan --user 12")
	fmt.Fprintln(os.Stderr, "  brotherhood users [--section tala2e3] | add-user ... | delete-user --id 12")
	fmt.Fprintln(os.Stderr, "  brotherhood events | add-event --title ... --type ... [--sections chabiba,shared]")
	fmt.Fprintln(os.Stderr, "  brotherhood shops | add-shop --name ...")
	fmt.Fprintln(os.Stderr, "  brotherhood drive list|reveal|add|delete ...")
	fmt.Fprintln(os.Stderr, "  brotherhood meetings | set-meeting --section forsan --link https://...")
}
