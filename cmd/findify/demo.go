package main

import (
	"context"
	"log/slog"

	"github.com/SurinderTech/findify-finder/server/service/item"
	"github.com/SurinderTech/findify-finder/server/service/matching"
	"github.com/SurinderTech/findify-finder/store"
)

const demoLoserEmail = "ava.demo@example.com"

// seedDemoData walks one report through the whole pipeline so a demo
// instance starts with data to look at: two users, a found report, a
// lost report that matches it, and the match confirmed with its reward
// credited. Seeding is best-effort and runs once; a later start finds
// the demo user and leaves the data alone.
func seedDemoData(ctx context.Context, s *store.Store, items *item.Service, lifecycle *matching.LifecycleManager) {
	email := demoLoserEmail
	existing, err := s.GetUser(ctx, &store.FindUser{Email: &email})
	if err != nil {
		slog.Warn("demo seed skipped", "error", err)
		return
	}
	if existing != nil {
		return
	}

	loser, err := s.CreateUser(ctx, &store.User{Email: demoLoserEmail, FullName: "Ava Demo"})
	if err != nil {
		slog.Warn("demo seed failed to create user", "error", err)
		return
	}
	finder, err := s.CreateUser(ctx, &store.User{Email: "noah.demo@example.com", FullName: "Noah Demo"})
	if err != nil {
		slog.Warn("demo seed failed to create user", "error", err)
		return
	}

	if _, err := items.Submit(ctx, &item.SubmitRequest{
		OwnerID:     finder.ID,
		Title:       "Black Leather Wallet",
		Description: "Found near the fountain, contains a library card.",
		Category:    "accessories",
		Status:      store.ItemStatusFound,
		Location:    "Central Park",
	}); err != nil {
		slog.Warn("demo seed failed to submit found report", "error", err)
		return
	}

	lost, err := items.Submit(ctx, &item.SubmitRequest{
		OwnerID:     loser.ID,
		Title:       "Black Wallet",
		Description: "Lost during a morning run.",
		Category:    "accessories",
		Status:      store.ItemStatusLost,
		Location:    "Central Park Coffee Shop",
	})
	if err != nil {
		slog.Warn("demo seed failed to submit lost report", "error", err)
		return
	}

	match, err := s.GetMatch(ctx, &store.FindMatch{ItemID: &lost.ID})
	if err != nil || match == nil {
		slog.Warn("demo seed produced no match", "error", err)
		return
	}
	if _, err := lifecycle.Confirm(ctx, match.ID); err != nil {
		slog.Warn("demo seed failed to confirm match", "error", err)
		return
	}

	slog.Info("demo data seeded", "match_id", match.ID)
}
