package server

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/lesson-factory/internal/db"
)

// DBClient is the subset of database operations the user service needs.
// Tests provide mock implementations; production wiring passes *db.DB.
type DBClient interface {
	CreateUser(ctx context.Context, name, email string) (uuid.UUID, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}
