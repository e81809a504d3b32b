// Package messages implements the message store: creation, participant-aware
// reads, listings, and the recipient-only read transition.
package messages

import (
	"context"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create persists a new message with a fresh id, sent_at set to now and
// read_at unset.
func (s *Service) Create(ctx context.Context, fromUsername, toUsername, body string) (*Message, error) {
	msg := &Message{
		ID:           uuid.New().String(),
		FromUsername: fromUsername,
		ToUsername:   toUsername,
		Body:         body,
	}

	return s.repo.Create(ctx, msg)
}

// Get fetches a message with both participant profiles. Access is not
// enforced here: the transport layer verifies the resolved identity against
// the participants of the record it receives, so the check runs on
// authoritative data without a second fetch.
func (s *Service) Get(ctx context.Context, id string) (*Detail, error) {
	return s.repo.Get(ctx, id)
}

// MarkRead performs the unread->read transition. The caller must already
// have verified that the resolved identity is the recipient; MarkRead does
// not re-derive it.
func (s *Service) MarkRead(ctx context.Context, id string) (*ReadReceipt, error) {
	return s.repo.MarkRead(ctx, id)
}

// From lists messages sent by username, oldest first.
func (s *Service) From(ctx context.Context, username string) ([]Sent, error) {
	return s.repo.From(ctx, username)
}

// To lists messages received by username, oldest first.
func (s *Service) To(ctx context.Context, username string) ([]Received, error) {
	return s.repo.To(ctx, username)
}
