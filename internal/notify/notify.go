// Package notify delivers best-effort match notifications. Dispatch failures
// are reported to the caller (which records them on the match row) but never
// abort match creation.
package notify

import "context"

// MatchNotification describes one side of a new match.
type MatchNotification struct {
	RecipientTelegramID int64
	MatchedName         string
	MatchedUsername     string
}

// MatchNotifier sends a "you have a new match" message to one user.
type MatchNotifier interface {
	NotifyMatch(ctx context.Context, n MatchNotification) error
}
