package db

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/messagely/internal/server/messages"
	"github.com/dmitrijs2005/messagely/internal/server/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	Messages() messages.Repository
}
