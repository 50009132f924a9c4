package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redisplay/simple-gallery/internal/models"
)

var ErrTokenNotFound = errors.New("token not found")

// TokenRepository owns viewer tokens and their traversal state. The shuffle
// order is stored as a JSON id list; those ids are a cached snapshot of the
// collection and may point at pictures deleted since the last regeneration.
type TokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, token string) (models.AccessToken, error) {
	now := time.Now()
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO tokens (token, seq_cursor, shuffle_order, shuffle_cursor, created_at) VALUES (?, 0, NULL, 0, ?)",
		token, now.Unix()); err != nil {
		return models.AccessToken{}, err
	}
	return models.AccessToken{Token: token, CreatedAt: now.UTC()}, nil
}

func (r *TokenRepository) Get(ctx context.Context, token string) (models.AccessToken, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT token, seq_cursor, shuffle_order, shuffle_cursor, created_at FROM tokens WHERE token = ?", token)
	return scanToken(row)
}

// List returns all tokens ordered by creation time, for the admin overview.
func (r *TokenRepository) List(ctx context.Context) ([]models.AccessToken, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT token, seq_cursor, shuffle_order, shuffle_cursor, created_at FROM tokens ORDER BY created_at, token")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []models.AccessToken
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (r *TokenRepository) Delete(ctx context.Context, token string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tokens WHERE token = ?", token)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// SaveSequentialCursor persists the raw sequential counter. It is stored
// un-reduced; the delivery engine reduces it against the live collection
// size on every read.
func (r *TokenRepository) SaveSequentialCursor(ctx context.Context, token string, cursor int64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE tokens SET seq_cursor = ? WHERE token = ?", cursor, token)
	if err != nil {
		return err
	}
	return requireToken(res)
}

// SaveShuffleState persists a permutation and cursor in one statement.
func (r *TokenRepository) SaveShuffleState(ctx context.Context, token string, order []int64, cursor int) error {
	encoded, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode shuffle order: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE tokens SET shuffle_order = ?, shuffle_cursor = ? WHERE token = ?",
		string(encoded), cursor, token)
	if err != nil {
		return err
	}
	return requireToken(res)
}

func scanToken(row interface{ Scan(...any) error }) (models.AccessToken, error) {
	var (
		t         models.AccessToken
		order     sql.NullString
		createdAt int64
	)
	if err := row.Scan(&t.Token, &t.SeqCursor, &order, &t.ShuffleCursor, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AccessToken{}, ErrTokenNotFound
		}
		return models.AccessToken{}, err
	}
	if order.Valid && order.String != "" {
		if err := json.Unmarshal([]byte(order.String), &t.ShuffleOrder); err != nil {
			return models.AccessToken{}, fmt.Errorf("decode shuffle order: %w", err)
		}
	}
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	return t, nil
}

func requireToken(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTokenNotFound
	}
	return nil
}
