// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/quixsi/muster/internal/campaign"
	"github.com/quixsi/muster/internal/config"
	"github.com/quixsi/muster/internal/db"
	"github.com/quixsi/muster/internal/db/jsondb"
	"github.com/quixsi/muster/internal/db/kvdb"
	"github.com/quixsi/muster/internal/notify"
	"github.com/quixsi/muster/internal/registry"
	"github.com/quixsi/muster/internal/segment"
	"github.com/quixsi/muster/internal/server"
	"github.com/quixsi/muster/internal/server/api"
	"github.com/quixsi/muster/internal/ticket"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("unable to load configuration", "error", err)
		os.Exit(1)
	}

	var (
		serviceName = flag.String("service-name", cfg.ServiceName, "otel service name")
		addr        = flag.String("addr", cfg.Addr, "default server address")
		dbStr       = flag.String("db", cfg.DB, "database connection string")
		otlpAddr    = flag.String("otlp-grpc", cfg.OTLPAddr, "default otlp/gRPC address, by default disabled. Example value: localhost:4317")
		logLevelArg = flag.String("log-level", cfg.LogLevel, "log level")
		baseURL     = flag.String("base-url", cfg.BaseURL, "public base url used in outbound links")
	)
	flag.Parse()

	var logLevel slog.Level
	err = logLevel.UnmarshalText([]byte(*logLevelArg))
	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(jsonHandler)
	if err != nil {
		logger.Error("unable to parse log level", "level-input", *logLevelArg, "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger)
	logger.Info("start and listen", "address", *addr)
	logger.Info("otlp/gRPC", "address", *otlpAddr, "service", *serviceName)

	if *otlpAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		grpcOptions := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithBlock()}
		conn, err := grpc.DialContext(ctx, *otlpAddr, grpcOptions...)
		if err != nil {
			logger.Error("failed to create gRPC connection to collector", "error", err)
			os.Exit(1)
		}
		defer conn.Close()

		otelExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
		if err != nil {
			logger.Error("failed to create trace exporter", "error", err)
			os.Exit(1)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(otelExporter))
		otel.SetTracerProvider(tp)
	}

	var (
		memberStore   db.MemberStore
		ticketStore   db.TicketStore
		campaignStore db.CampaignStore
		eventStore    db.EventStore
	)

	u, err := url.Parse(*dbStr)
	if err != nil {
		logger.Error("unable to parse db connection string", "error", err)
		os.Exit(1)
	}

	switch u.Scheme {
	case "kvdb":
		path := u.Host + u.Path
		bdb, err := bolt.Open(path, 0600, nil)
		if err != nil {
			logger.Error("could not open database", "path", path, "error", err)
			os.Exit(1)
		}
		defer bdb.Close()

		memberStore, err = kvdb.NewMemberStore(bdb)
		if err != nil {
			logger.Error("could not initialize member bucket", "error", err)
			os.Exit(1)
		}
		ticketStore, err = kvdb.NewTicketStore(bdb)
		if err != nil {
			logger.Error("could not initialize ticket bucket", "error", err)
			os.Exit(1)
		}
		campaignStore, err = kvdb.NewCampaignStore(bdb)
		if err != nil {
			logger.Error("could not initialize campaign bucket", "error", err)
			os.Exit(1)
		}
		eventStore, err = kvdb.NewEventStore(bdb)
		if err != nil {
			logger.Error("could not initialize event bucket", "error", err)
			os.Exit(1)
		}
	case "jsondb":
		dir := u.Host + u.Path
		memberStore, err = jsondb.NewMemberStore(dir + "/members.json")
		if err != nil {
			logger.Error("could not initialize member store", "error", err)
			os.Exit(1)
		}
		ticketStore, err = jsondb.NewTicketStore(dir + "/tickets.json")
		if err != nil {
			logger.Error("could not initialize ticket store", "error", err)
			os.Exit(1)
		}
		campaignStore, err = jsondb.NewCampaignStore(dir + "/campaigns.json")
		if err != nil {
			logger.Error("could not initialize campaign store", "error", err)
			os.Exit(1)
		}
		eventStore, err = jsondb.NewEventStore(dir + "/events.json")
		if err != nil {
			logger.Error("could not initialize event store", "error", err)
			os.Exit(1)
		}
	default:
		logger.Error("unknown storage backend", "type", u.Scheme)
		os.Exit(1)
	}

	reg := registry.NewService(memberStore)
	ledger := ticket.NewLedger(reg, ticketStore)
	filter := segment.NewFilter(memberStore)
	notifier := notify.LogNotifier{Logger: logger.WithGroup("notify")}
	dispatcher := campaign.NewDispatcher(campaignStore, notifier, campaign.Config{
		Workers:       cfg.CampaignWorkers,
		Timeout:       cfg.NotifyTimeout,
		MaxAttempts:   cfg.NotifyMaxAttempts,
		RetryBackoff:  cfg.NotifyRetryBackoff,
		RetryMaxDelay: cfg.NotifyRetryMax,
		BaseURL:       *baseURL,
	})
	renderer := ticket.URLRenderer{BaseURL: *baseURL}

	handler := api.NewHandler(
		reg,
		ledger,
		filter,
		dispatcher,
		renderer,
		notifier,
		memberStore,
		ticketStore,
		campaignStore,
		eventStore,
	)

	srv := &http.Server{
		Addr: *addr,
		Handler: server.NewServer(
			*serviceName,
			cfg.AdminUser,
			cfg.AdminPass,
			memberStore,
			handler,
		),
	}

	if err := srv.ListenAndServe(); err != nil {
		logger.Error("error during listen and serve", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown")
}
