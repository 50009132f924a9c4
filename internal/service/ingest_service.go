package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/redisplay/simple-gallery/internal/ids"
	"github.com/redisplay/simple-gallery/internal/media"
	"github.com/redisplay/simple-gallery/internal/media/sniffer"
	"github.com/redisplay/simple-gallery/internal/models"
	"github.com/redisplay/simple-gallery/internal/repository"
	"github.com/redisplay/simple-gallery/internal/storage"
)

var ErrUnsupportedMedia = errors.New("unsupported media type")

type IngestInput struct {
	Reader      io.Reader
	Description string
	TakenOn     *string
	Location    *string
	Tags        []string
}

// IngestService turns an upload into a stored blob plus a picture record:
// sniff the format, pull EXIF, downscale to the gallery's resolution bound,
// store the bytes under an opaque generated name, insert the metadata row.
type IngestService struct {
	pictures *repository.PictureRepository
	settings *repository.SettingsRepository
	blobs    storage.BlobStore
	log      zerolog.Logger
}

func NewIngestService(pictures *repository.PictureRepository, settings *repository.SettingsRepository, blobs storage.BlobStore, log zerolog.Logger) *IngestService {
	return &IngestService{
		pictures: pictures,
		settings: settings,
		blobs:    blobs,
		log:      log,
	}
}

func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (models.Picture, error) {
	data, err := io.ReadAll(input.Reader)
	if err != nil {
		return models.Picture{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return models.Picture{}, ErrUnsupportedMedia
	}

	kind, err := sniffer.DetectHead(data)
	if err != nil {
		return models.Picture{}, ErrUnsupportedMedia
	}

	// EXIF is read before the downscale re-encode strips it. Explicit
	// fields from the admin win over whatever the camera wrote.
	exifDate, exifLoc := media.ExtractCapture(data, kind.Type)
	takenOn, location := input.TakenOn, input.Location
	if takenOn == nil {
		takenOn = exifDate
	}
	if location == nil {
		location = exifLoc
	}

	maxEdge, err := s.settings.MaxResolution(ctx)
	if err != nil {
		return models.Picture{}, fmt.Errorf("read max resolution: %w", err)
	}
	data, err = media.Downscale(data, kind.Type, maxEdge)
	if err != nil {
		return models.Picture{}, fmt.Errorf("downscale: %w", err)
	}

	name := ids.NewPictureName(kind.Ext)
	if err := s.blobs.Put(ctx, name, bytes.NewReader(data), int64(len(data)), kind.MIME); err != nil {
		return models.Picture{}, fmt.Errorf("store blob: %w", err)
	}

	id, err := s.pictures.Insert(ctx, name, takenOn, location)
	if err != nil {
		if delErr := s.blobs.Delete(ctx, name); delErr != nil {
			s.log.Warn().Err(delErr).Str("blob", name).Msg("orphan blob after failed insert")
		}
		return models.Picture{}, err
	}

	if input.Description != "" {
		if err := s.pictures.UpdateDescription(ctx, id, input.Description); err != nil {
			return models.Picture{}, err
		}
	}
	if len(input.Tags) > 0 {
		if err := s.pictures.SetTags(ctx, id, input.Tags); err != nil {
			return models.Picture{}, err
		}
	}

	return s.pictures.GetByID(ctx, id)
}
