package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"orderdesk/internal/domain"
)

type OwnerRepo struct{ db *sqlx.DB }

func NewOwnerRepo(db *sqlx.DB) *OwnerRepo { return &OwnerRepo{db: db} }

func (r *OwnerRepo) ByEmail(ctx context.Context, email string) (*domain.Owner, error) {
	var o domain.Owner
	err := r.db.GetContext(ctx, &o, `
	  SELECT id, email, name, password_hash, created_at
	  FROM owners WHERE LOWER(email) = LOWER(?)
	`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OwnerRepo) BindSession(ctx context.Context, token, ownerID string) error {
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO sessions(token, owner_id) VALUES (?, ?)
	`, token, ownerID)
	return err
}

func (r *OwnerRepo) UnbindSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// SessionOwner resolves a session token to its owner, updating last_seen.
// Returns nil for unknown tokens.
func (r *OwnerRepo) SessionOwner(ctx context.Context, token string) (*domain.Owner, error) {
	var o domain.Owner
	err := r.db.GetContext(ctx, &o, `
	  SELECT ow.id, ow.email, ow.name, ow.password_hash, ow.created_at
	  FROM sessions s JOIN owners ow ON ow.id = s.owner_id
	  WHERE s.token = ?
	`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	_, _ = r.db.ExecContext(ctx, `UPDATE sessions SET last_seen = CURRENT_TIMESTAMP WHERE token = ?`, token)
	return &o, nil
}
