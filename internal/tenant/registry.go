// Package tenant maps gallery keys to their per-gallery stores and services.
package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"

	"github.com/redisplay/simple-gallery/internal/config"
	"github.com/redisplay/simple-gallery/internal/database"
	"github.com/redisplay/simple-gallery/internal/repository"
	"github.com/redisplay/simple-gallery/internal/security"
	"github.com/redisplay/simple-gallery/internal/service"
	"github.com/redisplay/simple-gallery/internal/storage"
)

var ErrInvalidKey = errors.New("invalid gallery key")

// Gallery bundles everything one tenant owns. Galleries share nothing with
// each other; there is no cross-tenant coordination anywhere.
type Gallery struct {
	Key      string
	DB       *sql.DB
	Pictures *repository.PictureRepository
	Tokens   *repository.TokenRepository
	Settings *repository.SettingsRepository
	Blobs    storage.BlobStore
	Delivery *service.DeliveryService
	Ingest   *service.IngestService
}

// Registry constructs galleries lazily on first use and caches them for the
// process lifetime.
type Registry struct {
	cfg   *config.AppConfig
	log   zerolog.Logger
	minio *minio.Client // nil unless the s3 storage driver is configured

	mu        sync.Mutex
	galleries map[string]*Gallery
}

func NewRegistry(cfg *config.AppConfig, log zerolog.Logger, minioClient *minio.Client) *Registry {
	return &Registry{
		cfg:       cfg,
		log:       log,
		minio:     minioClient,
		galleries: make(map[string]*Gallery),
	}
}

// ValidKey reports whether key is safe to use as a directory name. Validation
// belongs here at the boundary; the stores below assume a vetted key.
func ValidKey(key string) bool {
	if len(key) == 0 || len(key) > 64 {
		return false
	}
	for i, r := range key {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case (r == '-' || r == '_') && i > 0:
		default:
			return false
		}
	}
	return true
}

func (r *Registry) Get(ctx context.Context, key string) (*Gallery, error) {
	if !ValidKey(key) {
		return nil, ErrInvalidKey
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.galleries[key]; ok {
		return g, nil
	}

	g, err := r.open(ctx, key)
	if err != nil {
		return nil, err
	}
	r.galleries[key] = g
	r.log.Info().Str("gallery", key).Msg("gallery opened")
	return g, nil
}

func (r *Registry) open(ctx context.Context, key string) (*Gallery, error) {
	dir := filepath.Join(r.cfg.DataDir, key)
	db, err := database.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open gallery %s: %w", key, err)
	}

	var blobs storage.BlobStore
	if r.cfg.Storage.Driver == "s3" && r.minio != nil {
		blobs = storage.NewObjectStore(r.minio, r.cfg.Storage.Bucket, key)
	} else {
		blobs, err = storage.NewFSStore(filepath.Join(dir, "pictures"))
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	pictures := repository.NewPictureRepository(db)
	tokens := repository.NewTokenRepository(db)
	settings := repository.NewSettingsRepository(db)
	logger := r.log.With().Str("gallery", key).Logger()

	g := &Gallery{
		Key:      key,
		DB:       db,
		Pictures: pictures,
		Tokens:   tokens,
		Settings: settings,
		Blobs:    blobs,
		Delivery: service.NewDeliveryService(pictures, tokens, logger),
		Ingest:   service.NewIngestService(pictures, settings, blobs, logger),
	}

	if err := r.bootstrapPassword(ctx, g); err != nil {
		db.Close()
		return nil, err
	}
	return g, nil
}

// bootstrapPassword seeds the gallery's admin password from config on first
// open, so a fresh gallery is reachable without hand-editing its database.
func (r *Registry) bootstrapPassword(ctx context.Context, g *Gallery) error {
	if r.cfg.Security.BootstrapPassword == "" {
		return nil
	}
	_, ok, err := g.Settings.PasswordHash(ctx)
	if err != nil || ok {
		return err
	}
	hash, err := security.HashPassword(r.cfg.Security.BootstrapPassword)
	if err != nil {
		return err
	}
	return g.Settings.SetPasswordHash(ctx, hash)
}

// Keys lists the galleries opened so far in this process.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.galleries))
	for key := range r.galleries {
		keys = append(keys, key)
	}
	return keys
}

// DiscoverKeys lists every gallery present on disk, opened or not.
func (r *Registry) DiscoverKeys() ([]string, error) {
	entries, err := os.ReadDir(r.cfg.DataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() && ValidKey(e.Name()) {
			keys = append(keys, e.Name())
		}
	}
	return keys, nil
}

func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, g := range r.galleries {
		if err := g.DB.Close(); err != nil {
			r.log.Error().Err(err).Str("gallery", key).Msg("close gallery db")
		}
	}
	r.galleries = make(map[string]*Gallery)
}
