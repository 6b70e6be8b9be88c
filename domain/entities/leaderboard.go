package entities

import (
	"fmt"
	"time"
)

// LeaderboardPeriod selects the aggregation window for the leaderboard
type LeaderboardPeriod string

const (
	PeriodAllTime LeaderboardPeriod = "all_time"
	PeriodWeekly  LeaderboardPeriod = "weekly"
	PeriodMonthly LeaderboardPeriod = "monthly"
)

// ParseLeaderboardPeriod validates a caller-supplied period string
func ParseLeaderboardPeriod(s string) (LeaderboardPeriod, error) {
	switch LeaderboardPeriod(s) {
	case PeriodAllTime, PeriodWeekly, PeriodMonthly:
		return LeaderboardPeriod(s), nil
	}
	return "", fmt.Errorf("unknown leaderboard period %q", s)
}

// Window returns the lookback duration for windowed periods.
// The second return is false for all_time, which reads the cached counters
// instead of scanning the ledger.
func (p LeaderboardPeriod) Window() (time.Duration, bool) {
	switch p {
	case PeriodWeekly:
		return 7 * 24 * time.Hour, true
	case PeriodMonthly:
		return 30 * 24 * time.Hour, true
	}
	return 0, false
}

// LeaderboardEntry is one ranked row, with display metadata joined from the
// identity service
type LeaderboardEntry struct {
	AccountID     string `json:"account_id"`
	DisplayName   string `json:"display_name"`
	AvatarURL     string `json:"avatar_url"`
	TotalReceived int64  `json:"total_received"`
}

// ReceiverTotal is a windowed aggregation row: treats received by one account
// over the queried interval
type ReceiverTotal struct {
	AccountID     string
	TotalReceived int64
}

// Profile is the display metadata the identity service holds for an account
type Profile struct {
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}
