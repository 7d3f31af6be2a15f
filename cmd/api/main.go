package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/mobile-garage/internal/auth"
	"github.com/ukydev/mobile-garage/internal/config"
	"github.com/ukydev/mobile-garage/internal/db"
	"github.com/ukydev/mobile-garage/internal/handlers"
	"github.com/ukydev/mobile-garage/internal/logging"
	"github.com/ukydev/mobile-garage/internal/notify"
	"github.com/ukydev/mobile-garage/internal/server"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Fatal("server exited")
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("mongo disconnect failed")
		}
	}()
	log.WithField("database", cfg.MongoDB).Info("connected to MongoDB")

	store := db.NewStore(client, cfg.MongoDB)
	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = store.EnsureIndexes(indexCtx)
	cancel()
	if err != nil {
		return err
	}

	revoker, err := newRevoker(ctx, cfg)
	if err != nil {
		return err
	}
	authService := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry, revoker)

	var mailer notify.Mailer = notify.LogMailer{}
	if cfg.SMTPEnabled() {
		mailer = notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	} else {
		log.Warn("SMTP_HOST not set, e-mail is logged instead of sent")
	}

	var publisher notify.Publisher
	if cfg.MQTTBroker != "" {
		mqttPublisher, err := notify.NewMQTTPublisher(cfg.MQTTBroker, cfg.MQTTClientID)
		if err != nil {
			return err
		}
		defer mqttPublisher.Close()
		publisher = mqttPublisher
		log.WithField("broker", cfg.MQTTBroker).Info("publishing service request events over MQTT")
	}

	dispatcher := notify.NewDispatcher(mailer, publisher, cfg.MQTTTopicPrefix)

	router := server.NewRouter(server.Dependencies{
		AuthService:     authService,
		Stores:          handlers.StoresFrom(store),
		Notifier:        dispatcher,
		Mailer:          dispatcher,
		ContactMailbox:  cfg.ContactMailbox,
		Health:          store,
		CORSOrigins:     cfg.CORSOrigins,
		TrustedProxies:  cfg.TrustedProxies,
		PublicRateLimit: cfg.PublicRateLimit,
	})

	srv := server.New(":"+cfg.Port, router)
	if err := srv.Run(ctx); err != nil {
		return err
	}

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelDrain()
	if err := dispatcher.Wait(drainCtx); err != nil {
		log.WithError(err).Warn("notifications still in flight at shutdown")
	}
	return nil
}

// newRevoker selects the revocation store. The in-memory list is swept in
// the background until ctx is done.
func newRevoker(ctx context.Context, cfg *config.Config) (auth.Revoker, error) {
	switch cfg.RevocationStore {
	case config.RevocationDynamoDB:
		client, err := db.ConnectDynamoDB(ctx, cfg.AWSRegion, cfg.DynamoEndpoint)
		if err != nil {
			return nil, err
		}
		list := auth.NewDynamoRevocationList(client, cfg.RevocationTable)
		if err := list.EnsureTable(ctx); err != nil {
			return nil, err
		}
		log.WithField("table", cfg.RevocationTable).Info("using DynamoDB revocation list")
		return list, nil
	case config.RevocationMemory:
	default:
		log.WithField("store", cfg.RevocationStore).Warn("unknown REVOCATION_STORE, using memory")
	}
	list := auth.NewMemoryRevocationList()
	go list.Run(ctx, time.Minute)
	return list, nil
}
