// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package gate is the venue-door surface: it renders ticket pages from
// opaque references and runs the kiosk check-in flow. It is deliberately
// separate from the admin API so door stations never carry admin
// credentials.
package gate

import (
	"log/slog"
	"net/http"
	"os"

	sloghttp "github.com/samber/slog-http"

	"github.com/quixsi/muster/internal/db"
	"github.com/quixsi/muster/internal/ticket"
)

type Gate struct {
	logger  *slog.Logger
	address string
	station string

	ledger  *ticket.Ledger
	tickets db.TicketStore
	members db.MemberStore

	templates *templateHandler
}

func NewGate(
	logger *slog.Logger,
	address string,
	station string,
	ledger *ticket.Ledger,
	tickets db.TicketStore,
	members db.MemberStore,
) *Gate {
	return &Gate{
		logger:    logger,
		address:   address,
		station:   station,
		ledger:    ledger,
		tickets:   tickets,
		members:   members,
		templates: newTemplateHandler(),
	}
}

func (g *Gate) ServeHTTP() {
	mux := http.NewServeMux()

	loggerMW := sloghttp.NewWithConfig(
		g.logger, sloghttp.Config{
			DefaultLevel:     slog.LevelInfo,
			ClientErrorLevel: slog.LevelWarn,
			ServerErrorLevel: slog.LevelError,
			WithUserAgent:    true,
		},
	)

	mux.Handle("GET /", http.HandlerFunc(g.home))
	mux.Handle("GET /tickets/{reference}", http.HandlerFunc(g.ticket))
	mux.Handle("POST /checkin", http.HandlerFunc(g.checkin))

	srv := &http.Server{
		Addr:    g.address,
		Handler: loggerMW(mux),
	}

	g.logger.Info("listening on", "address", g.address)
	if err := srv.ListenAndServe(); err != nil {
		g.logger.Error("failed to run server", "error", err)
		os.Exit(1)
	}
}
