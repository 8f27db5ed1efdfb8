package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/event-ticketing/internal/model"
)

// UserRepo reads the local projection of the identity service's users
// table.  This service never creates or mutates users; it only needs a
// display name to embed in ticket payloads.
type UserRepo struct {
    db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// GetByID loads a single user.  It returns ErrUserNotFound when no user
// with the given ID exists.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
    const q = `SELECT id, full_name, email, created_at FROM users WHERE id = ?`
    var u model.User
    err := r.db.QueryRowContext(ctx, q, id).Scan(&u.ID, &u.FullName, &u.Email, &u.CreatedAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrUserNotFound
        }
        return nil, err
    }
    return &u, nil
}
