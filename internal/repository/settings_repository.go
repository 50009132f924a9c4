package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
)

const (
	settingMaxResolution = "max_resolution"
	settingPasswordHash  = "password_hash"

	// DefaultMaxResolution bounds the longest edge of re-encoded uploads
	// when the gallery has no explicit setting.
	DefaultMaxResolution = 1920
)

// SettingsRepository is a flat key/value store per gallery. Only two keys
// matter: the output resolution bound and the admin password hash.
type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *SettingsRepository) set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	return err
}

// MaxResolution returns the configured output bound, falling back to the
// default when absent or unparseable.
func (r *SettingsRepository) MaxResolution(ctx context.Context) (int, error) {
	raw, ok, err := r.get(ctx, settingMaxResolution)
	if err != nil {
		return 0, err
	}
	if !ok {
		return DefaultMaxResolution, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return DefaultMaxResolution, nil
	}
	return n, nil
}

func (r *SettingsRepository) SetMaxResolution(ctx context.Context, pixels int) error {
	return r.set(ctx, settingMaxResolution, strconv.Itoa(pixels))
}

// PasswordHash returns the stored admin password hash, or ok=false when the
// gallery has never been provisioned with one.
func (r *SettingsRepository) PasswordHash(ctx context.Context) ([]byte, bool, error) {
	raw, ok, err := r.get(ctx, settingPasswordHash)
	return []byte(raw), ok, err
}

func (r *SettingsRepository) SetPasswordHash(ctx context.Context, hash []byte) error {
	return r.set(ctx, settingPasswordHash, string(hash))
}
