package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/yushengtzou/yushengtzou.github.io/internal/authservice"
	"github.com/yushengtzou/yushengtzou.github.io/internal/blogservice"
	"github.com/yushengtzou/yushengtzou.github.io/internal/common"
	"github.com/yushengtzou/yushengtzou.github.io/internal/mailservice"
	"github.com/yushengtzou/yushengtzou.github.io/internal/uploadservice"
)

type application struct {
	config        *Config
	logger        *slog.Logger
	cache         *common.Cache
	store         blogservice.Store
	postService   *blogservice.PostService
	uploader      *uploadservice.Uploader
	authenticator *authservice.Authenticator
	mailService   *mailservice.MailService
	broker        *common.MessageBroker
}

func main() {
	configPath := flag.String("config", ".env", "path to the .env configuration file")
	hashPassword := flag.String("hash-password", "", "print the bcrypt hash of the given admin password and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := authservice.HashPassword(*hashPassword)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	// Initialize the logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Load the configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app, err := newApplication(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize the application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer app.close()

	// Start the HTTP server
	err = app.serve()
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newApplication(cfg *Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		cache:  common.NewCache(5*time.Minute, 10*time.Minute),
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	app.store = store

	// A nil *MessageBroker must not end up inside the interface.
	var producer common.MessageProducer
	if cfg.brokerEnabled() {
		broker, err := common.NewMessageBroker(common.BrokerURI(cfg.MQUser, cfg.MQPassword, cfg.MQHost, cfg.MQPort))
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to connect to the message broker: %w", err)
		}
		app.broker = broker

		// Setup the exchange, queue, and binding key
		if err := common.SetupPostExchange(broker); err != nil {
			app.close()
			return nil, fmt.Errorf("failed to setup the post exchange: %w", err)
		}
		producer = broker
	}

	if cfg.mailEnabled() {
		app.mailService = mailservice.NewMailService(app.broker, cfg.MailHost, cfg.MailUser, cfg.MailPassword, cfg.MailSender, cfg.MailPort, cfg.NotifyRecipients, cfg.SiteBaseURL, logger)
		if err := app.mailService.NotifyNewPosts(); err != nil {
			app.close()
			return nil, err
		}
	}

	authenticator, err := authservice.NewAuthenticator(cfg.AdminUsername, cfg.AdminPasswordHash, cfg.AdminTokenTTL, app.cache)
	if err != nil {
		app.close()
		return nil, err
	}
	if !authenticator.Enabled() {
		logger.Warn("ADMIN_PASSWORD_HASH is not set, post management is open to everyone")
	}
	app.authenticator = authenticator

	app.uploader = uploadservice.NewUploader(cfg.UploadDir, uploadservice.DefaultMaxFileSize, logger)
	app.postService = blogservice.NewPostService(store, app.cache, producer, logger, cfg.Author)

	return app, nil
}

// openStore returns the post store selected by STORE_DRIVER.
func openStore(cfg *Config, logger *slog.Logger) (blogservice.Store, error) {
	if cfg.StoreDriver != "postgres" {
		return blogservice.NewFileStore(cfg.DataFile, logger), nil
	}

	db, err := common.NewDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, 10, 5, 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	m, err := common.Migrate("file://migrations", common.PostgresURI(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName))
	if err != nil {
		common.CloseDB(db)
		return nil, fmt.Errorf("failed to migrate the database: %w", err)
	}
	m.Close()

	// An existing JSON data file is imported on the first start against an empty table.
	seed, err := blogservice.ReadPostsFile(cfg.DataFile)
	if err != nil {
		logger.Info("no blog posts file to import, seeding default posts", slog.String("path", cfg.DataFile))
		seed = blogservice.SeedPosts()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := blogservice.NewPGStore(ctx, db, seed, logger)
	if err != nil {
		common.CloseDB(db)
		return nil, err
	}

	return store, nil
}

func (app *application) close() {
	if app.mailService != nil {
		app.mailService.Close()
	}

	if app.broker != nil {
		if err := app.broker.Close(); err != nil {
			app.logger.Error("failed to close the message broker", slog.String("error", err.Error()))
		}
	}

	if app.store != nil {
		if err := app.store.Close(); err != nil {
			app.logger.Error("failed to close the post store", slog.String("error", err.Error()))
		}
	}
}
