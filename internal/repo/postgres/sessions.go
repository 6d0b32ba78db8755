package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// SessionsRepo wraps the refresh-token rows with the transactional flows the
// auth handler needs: store, rotate (row-locked), revoke.
type SessionsRepo struct {
	tokens *RefreshTokensRepo
}

func NewSessionsRepo(pool *pgxpool.Pool) *SessionsRepo {
	return &SessionsRepo{tokens: NewRefreshTokensRepo(pool)}
}

func (s *SessionsRepo) Store(ctx context.Context, row RefreshTokenRow) error {
	tx, err := s.tokens.BeginTx(ctx)

	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	err = s.tokens.Create(ctx, tx, row)

	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Rotate revokes the presented token and inserts its replacement in one
// transaction. The row lock prevents two concurrent refreshes from both
// succeeding with the same token.
func (s *SessionsRepo) Rotate(ctx context.Context, jti, presentedHash string, newRow RefreshTokenRow) error {
	tx, err := s.tokens.BeginTx(ctx)

	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	row, err := s.tokens.GetForUpdate(ctx, tx, jti)

	if err != nil {
		if errors.Is(err, ErrRefreshTokenNotFound) {
			return ErrInvalidRefreshToken
		}
		return err
	}

	if row.RevokedAt != nil {
		return ErrInvalidRefreshToken
	}

	if time.Now().UTC().After(row.ExpiresAt) {
		return ErrInvalidRefreshToken
	}

	// verify hash matches the presented token (prevents token substitution)

	if row.TokenHash != presentedHash {
		return ErrInvalidRefreshToken
	}

	err = s.tokens.Revoke(ctx, tx, row.ID, &newRow.ID)

	if err != nil {
		return err
	}

	newRow.UserID = row.UserID

	err = s.tokens.Create(ctx, tx, newRow)

	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// RevokeByID is idempotent; revoking an unknown or already-revoked token is
// not an error.
func (s *SessionsRepo) RevokeByID(ctx context.Context, jti string) error {
	tx, err := s.tokens.BeginTx(ctx)

	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	_ = s.tokens.Revoke(ctx, tx, jti, nil)

	return tx.Commit(ctx)
}
