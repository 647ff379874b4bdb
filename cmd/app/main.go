package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hazyrose/inkwell/internal/auth"
	"github.com/hazyrose/inkwell/internal/common"
	"github.com/hazyrose/inkwell/internal/mail"
	"github.com/hazyrose/inkwell/internal/store"
	"github.com/hazyrose/inkwell/internal/suggest"
)

type application struct {
	config      *Config
	logger      *slog.Logger
	store       store.Store
	cache       *common.Cache
	authService *auth.Service
	suggester   suggester
	mailService *mail.MailService
	broker      *common.MessageBroker
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Select the storage backend. The memory backend serves development and
	// demos; postgres is the production choice.
	var st store.Store
	switch cfg.StoreBackend {
	case "postgres":
		db, err := common.NewDB(cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, 10, 5, 15*time.Minute)
		if err != nil {
			logger.Error("failed to connect to the database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer common.CloseDB(db)
		st = store.NewSQLStore(db)
	default:
		st = store.NewMemStore()
	}

	cache := common.NewCache(5*time.Minute, 10*time.Minute)

	app := &application{
		config: cfg,
		logger: logger,
		store:  st,
		cache:  cache,
	}

	// The broker and mail worker are optional; without them registrations
	// still succeed, they just go unannounced.
	if cfg.RabbitMQ.Host != "" {
		URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
		broker, err := common.NewMessageBroker(URI)
		if err != nil {
			logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer broker.Close()

		if err := common.SetupUserExchange(broker); err != nil {
			logger.Error("failed to setup the user exchange", slog.String("error", err.Error()))
			os.Exit(1)
		}

		app.broker = broker
		app.mailService = mail.NewMailService(broker, cfg.Mail.Host, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.Sender, cfg.Mail.Port, logger)
		go app.mailService.SendWelcomeEmail()
	}

	var producer common.MessageProducer
	if app.broker != nil {
		producer = app.broker
	}
	app.authService = auth.NewService(st, cache, producer, logger)
	if cfg.SessionTTL > 0 {
		app.authService.SetSessionTTL(cfg.SessionTTL)
	}

	if cfg.OpenAIAPIKey != "" {
		app.suggester = suggest.NewClient(cfg.OpenAIAPIKey)
	}

	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
