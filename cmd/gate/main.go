// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/url"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/quixsi/muster/internal/db"
	"github.com/quixsi/muster/internal/db/jsondb"
	"github.com/quixsi/muster/internal/db/kvdb"
	"github.com/quixsi/muster/internal/gate"
	"github.com/quixsi/muster/internal/registry"
	"github.com/quixsi/muster/internal/ticket"
)

func main() {
	var (
		addr        = flag.String("addr", "0.0.0.0:8081", "default server address")
		dbStr       = flag.String("db", "kvdb://testdata/muster.db", "database connection string")
		station     = flag.String("station", "door-1", "door station identifier used in check-in records")
		otlpAddr    = flag.String("otlp-grpc", "", "default otlp/gRPC address, by default disabled. Example value: localhost:4317")
		logLevelArg = flag.String("log-level", "INFO", "log level")
	)
	flag.Parse()

	var logLevel slog.Level
	err := logLevel.UnmarshalText([]byte(*logLevelArg))
	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(jsonHandler)
	if err != nil {
		logger.Error("unable to parse log level", "level-input", *logLevelArg, "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger)
	logger.Info("start and listen", "address", *addr, "station", *station)

	setupOTLP(*otlpAddr, logger)

	var (
		memberStore db.MemberStore
		ticketStore db.TicketStore
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
	default:
		logger.Error("unknown storage backend", "type", u.Scheme)
		os.Exit(1)
	}

	reg := registry.NewService(memberStore)
	ledger := ticket.NewLedger(reg, ticketStore)

	g := gate.NewGate(logger, *addr, *station, ledger, ticketStore, memberStore)
	g.ServeHTTP()
}

func setupOTLP(otlpAddr string, logger *slog.Logger) {
	if otlpAddr == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	grpcOptions := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithBlock()}
	conn, err := grpc.DialContext(ctx, otlpAddr, grpcOptions...)
	if err != nil {
		logger.Error("failed to create gRPC connection to collector", "error", err)
		os.Exit(1)
	}

	otelExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		logger.Error("failed to create trace exporter", "error", err)
		os.Exit(1)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(otelExporter))
	otel.SetTracerProvider(tp)
}
