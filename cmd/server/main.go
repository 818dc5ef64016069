package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chefaraga123/footium-player-chat-backend/internal/config"
	"github.com/chefaraga123/footium-player-chat-backend/internal/footium"
	"github.com/chefaraga123/footium-player-chat-backend/internal/narrative"
	"github.com/chefaraga123/footium-player-chat-backend/internal/server"
	"github.com/chefaraga123/footium-player-chat-backend/internal/session"
	"github.com/chefaraga123/footium-player-chat-backend/internal/sink"
	"github.com/chefaraga123/footium-player-chat-backend/internal/stream"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	port := flag.Int("port", 0, "Override server port")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if cfg.OpenAI.APIKey == "" {
		log.Warn("OPENAI_API_KEY not set, narrative generation will fail")
	}

	store := session.NewStore(cfg.Session.TTL, cfg.Session.SweepInterval, log)
	resolver := footium.NewClient(cfg.Footium.GraphQLURL, cfg.Footium.Timeout, log)
	generator := narrative.NewOpenAIClient(cfg.OpenAI.BaseURL, cfg.OpenAI.Model, cfg.OpenAI.APIKey, cfg.OpenAI.Timeout, log)

	var publisher sink.Publisher = sink.Discard{}
	if cfg.KafkaEnabled() {
		kp, err := sink.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.WithError(err).Fatal("failed to create kafka publisher")
		}
		publisher = kp
		log.WithField("brokers", cfg.Kafka.Brokers).Info("kafka event sink enabled")
	}

	dialer := stream.NewDialer(cfg.Upstream.URL, cfg.Upstream.DialTimeout, log)
	limits := stream.Limits{
		MaxMessages: cfg.Upstream.MaxMessages,
		MaxDuration: cfg.Upstream.MaxDuration,
	}
	pipeline := &stream.Pipeline{
		Snapshot: stream.NewSnapshotConnector(dialer.SubscribePartialState, resolver, publisher, limits, log),
		Delta:    stream.NewDeltaConnector(dialer.SubscribeFrameDeltas, generator, limits, log),
		Log:      log,
	}

	srv := server.New(store, resolver, generator, pipeline, log)
	mux := http.NewServeMux()
	srv.SetupRoutes(mux)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{Addr: addr, Handler: mux}

	go func() {
		log.WithField("addr", addr).Info("server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	store.Close()
	publisher.Close()
}
