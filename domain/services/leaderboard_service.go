package services

import (
	"context"
	"time"

	"treats/domain/entities"
	"treats/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// leaderboardSize caps every leaderboard at ten rows
const leaderboardSize = 10

type leaderboardService struct {
	uowFactory interfaces.UnitOfWorkFactory
	profiles   interfaces.ProfileDirectory
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(uowFactory interfaces.UnitOfWorkFactory, profiles interfaces.ProfileDirectory) interfaces.LeaderboardService {
	return &leaderboardService{
		uowFactory: uowFactory,
		profiles:   profiles,
	}
}

// GetLeaderboard ranks accounts by treats received. The all_time period reads
// the cached total_received counter; windowed periods recompute from the
// ledger because the counter is never decayed. Ties break on ascending
// account id so the order is deterministic.
func (s *leaderboardService) GetLeaderboard(ctx context.Context, period entities.LeaderboardPeriod) ([]*entities.LeaderboardEntry, error) {
	window, windowed := period.Window()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, entities.NewUnexpected("failed to begin transaction", err)
	}
	defer uow.Rollback()

	var ranked []*entities.LeaderboardEntry

	if windowed {
		since := time.Now().UTC().Add(-window)
		totals, err := uow.LedgerRepository().TopReceiversSince(ctx, since, leaderboardSize)
		if err != nil {
			return nil, entities.NewUnexpected("failed to aggregate leaderboard window", err)
		}
		for _, t := range totals {
			ranked = append(ranked, &entities.LeaderboardEntry{
				AccountID:     t.AccountID,
				TotalReceived: t.TotalReceived,
			})
		}
	} else {
		accounts, err := uow.AccountRepository().ListTopByTotalReceived(ctx, leaderboardSize)
		if err != nil {
			return nil, entities.NewUnexpected("failed to list top accounts", err)
		}
		for _, a := range accounts {
			ranked = append(ranked, &entities.LeaderboardEntry{
				AccountID:     a.ID,
				TotalReceived: a.TotalReceived,
			})
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, entities.NewUnexpected("failed to commit leaderboard read", err)
	}

	s.joinProfiles(ctx, ranked)
	return ranked, nil
}

// joinProfiles fills display metadata from the identity service. A directory
// failure degrades to raw account ids rather than failing the leaderboard.
func (s *leaderboardService) joinProfiles(ctx context.Context, entries []*entities.LeaderboardEntry) {
	if len(entries) == 0 {
		return
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.AccountID)
	}

	profiles, err := s.profiles.GetProfiles(ctx, ids)
	if err != nil {
		log.WithError(err).Warn("Failed to resolve profiles for leaderboard")
		profiles = map[string]entities.Profile{}
	}

	for _, e := range entries {
		if p, ok := profiles[e.AccountID]; ok {
			e.DisplayName = p.DisplayName
			e.AvatarURL = p.AvatarURL
		} else {
			e.DisplayName = e.AccountID
		}
	}
}
