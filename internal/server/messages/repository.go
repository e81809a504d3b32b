package messages

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, msg *Message) (*Message, error)
	Get(ctx context.Context, id string) (*Detail, error)
	MarkRead(ctx context.Context, id string) (*ReadReceipt, error)
	From(ctx context.Context, username string) ([]Sent, error)
	To(ctx context.Context, username string) ([]Received, error)
}
