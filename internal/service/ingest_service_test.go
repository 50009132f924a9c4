package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/redisplay/simple-gallery/internal/database"
	"github.com/redisplay/simple-gallery/internal/repository"
	"github.com/redisplay/simple-gallery/internal/storage"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func newIngestFixture(t *testing.T) (*IngestService, *repository.PictureRepository, *repository.SettingsRepository, storage.BlobStore) {
	t.Helper()
	db, err := database.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	blobs, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("new blob store: %v", err)
	}

	pictures := repository.NewPictureRepository(db)
	settings := repository.NewSettingsRepository(db)
	return NewIngestService(pictures, settings, blobs, zerolog.Nop()), pictures, settings, blobs
}

func TestIngestStoresBlobAndMetadata(t *testing.T) {
	svc, pictures, _, blobs := newIngestFixture(t)
	ctx := context.Background()

	day := "2024-06-01"
	p, err := svc.Ingest(ctx, IngestInput{
		Reader:      bytes.NewReader(pngBytes(t, 8, 8)),
		Description: "tiny square",
		TakenOn:     &day,
		Tags:        []string{"Test Shots"},
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if !strings.HasSuffix(p.Filename, ".png") {
		t.Fatalf("filename = %q, want .png suffix", p.Filename)
	}
	if p.Description != "tiny square" || p.TakenOn == nil || *p.TakenOn != day {
		t.Fatalf("metadata = %+v", p)
	}

	names, err := pictures.TagsOf(ctx, p.ID)
	if err != nil {
		t.Fatalf("tags of: %v", err)
	}
	if len(names) != 1 || names[0] != "test-shots" {
		t.Fatalf("tags = %v, want [test-shots]", names)
	}

	rc, err := blobs.Get(ctx, p.Filename)
	if err != nil {
		t.Fatalf("blob missing: %v", err)
	}
	rc.Close()
}

func TestIngestDownscalesOversizedPictures(t *testing.T) {
	svc, _, settings, blobs := newIngestFixture(t)
	ctx := context.Background()

	if err := settings.SetMaxResolution(ctx, 10); err != nil {
		t.Fatalf("set max resolution: %v", err)
	}

	p, err := svc.Ingest(ctx, IngestInput{Reader: bytes.NewReader(pngBytes(t, 40, 20))})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	rc, err := blobs.Get(ctx, p.Filename)
	if err != nil {
		t.Fatalf("blob: %v", err)
	}
	defer rc.Close()
	cfg, _, err := image.DecodeConfig(rc)
	if err != nil {
		t.Fatalf("decode stored blob: %v", err)
	}
	if cfg.Width > 10 || cfg.Height > 10 {
		t.Fatalf("stored size %dx%d exceeds bound 10", cfg.Width, cfg.Height)
	}
}

func TestIngestRejectsNonPictures(t *testing.T) {
	svc, _, _, _ := newIngestFixture(t)
	ctx := context.Background()

	for _, payload := range [][]byte{nil, []byte("not an image at all")} {
		if _, err := svc.Ingest(ctx, IngestInput{Reader: bytes.NewReader(payload)}); !errors.Is(err, ErrUnsupportedMedia) {
			t.Fatalf("payload %q: got %v, want ErrUnsupportedMedia", payload, err)
		}
	}
}
