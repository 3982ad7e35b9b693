// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	bolt "go.etcd.io/bbolt"

	"github.com/quixsi/muster/internal/db"
	"github.com/quixsi/muster/internal/db/jsondb"
	"github.com/quixsi/muster/internal/db/kvdb"
)

func main() {
	var (
		inputPath  = flag.String("input-path", "testdata", "jsondb storage folder to read")
		outputPath = flag.String("output-path", "output.db", "bbolt database file to write")
	)
	flag.Parse()

	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{})
	logger := slog.New(jsonHandler)

	jdb := newJsonDB(logger, *inputPath)
	kdb := newKVDB(logger, *outputPath)
	logger.Info("start converting")
	into(kdb, jdb)
	logger.Info("finished converting")
}

type database interface {
	db.MemberStore
	db.TicketStore
	db.CampaignStore
	db.EventStore
	Close() error
}

type dbWrapper struct {
	db.MemberStore
	db.TicketStore
	db.CampaignStore
	db.EventStore

	closeFN func() error
}

func (d *dbWrapper) Close() error {
	return d.closeFN()
}

func into(dst, src database) {
	defer src.Close()
	defer dst.Close()
	ctx := context.Background()

	members, err := src.ListMembers(ctx)
	if err != nil {
		panic(err)
	}
	for _, m := range members {
		if _, err := dst.CreateMember(ctx, m); err != nil {
			panic(err)
		}
	}

	tickets, err := src.ListTickets(ctx)
	if err != nil {
		panic(err)
	}
	for _, t := range tickets {
		if err := dst.CreateTicket(ctx, t); err != nil {
			panic(err)
		}
	}

	campaigns, err := src.ListCampaigns(ctx)
	if err != nil {
		panic(err)
	}
	for _, c := range campaigns {
		if _, err := dst.CreateCampaign(ctx, c); err != nil {
			panic(err)
		}
		jobs, err := src.ListJobs(ctx, c.ID)
		if err != nil {
			panic(err)
		}
		for _, j := range jobs {
			if err := dst.PutJob(ctx, j); err != nil {
				panic(err)
			}
		}
	}

	events, err := src.ListEvents(ctx)
	if err != nil {
		panic(err)
	}
	for _, e := range events {
		if _, err := dst.CreateEvent(ctx, e); err != nil {
			panic(err)
		}
	}
}

func newKVDB(logger *slog.Logger, path string) database {
	bdb, err := bolt.Open(path, 0600, nil)
	if err != nil {
		logger.Error("could not open database", "path", path, "error", err)
		os.Exit(1)
	}

	memberStore, err := kvdb.NewMemberStore(bdb)
	if err != nil {
		logger.Error("could not initialize member bucket", "error", err)
		os.Exit(1)
	}
	ticketStore, err := kvdb.NewTicketStore(bdb)
	if err != nil {
		logger.Error("could not initialize ticket bucket", "error", err)
		os.Exit(1)
	}
	campaignStore, err := kvdb.NewCampaignStore(bdb)
	if err != nil {
		logger.Error("could not initialize campaign bucket", "error", err)
		os.Exit(1)
	}
	eventStore, err := kvdb.NewEventStore(bdb)
	if err != nil {
		logger.Error("could not initialize event bucket", "error", err)
		os.Exit(1)
	}

	return &dbWrapper{
		MemberStore:   memberStore,
		TicketStore:   ticketStore,
		CampaignStore: campaignStore,
		EventStore:    eventStore,
		closeFN:       bdb.Close,
	}
}

func newJsonDB(logger *slog.Logger, path string) database {
	logger.Info("jsondb storage folder", "path", path)
	memberStore, err := jsondb.NewMemberStore(path + "/members.json")
	if err != nil {
		logger.Error("could not initialize member store", "path", path, "error", err)
		os.Exit(1)
	}
	ticketStore, err := jsondb.NewTicketStore(path + "/tickets.json")
	if err != nil {
		logger.Error("could not initialize ticket store", "path", path, "error", err)
		os.Exit(1)
	}
	campaignStore, err := jsondb.NewCampaignStore(path + "/campaigns.json")
	if err != nil {
		logger.Error("could not initialize campaign store", "path", path, "error", err)
		os.Exit(1)
	}
	eventStore, err := jsondb.NewEventStore(path + "/events.json")
	if err != nil {
		logger.Error("could not initialize event store", "path", path, "error", err)
		os.Exit(1)
	}

	return &dbWrapper{
		MemberStore:   memberStore,
		TicketStore:   ticketStore,
		CampaignStore: campaignStore,
		EventStore:    eventStore,
		closeFN:       func() error { return nil },
	}
}
