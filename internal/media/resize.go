// Package media prepares uploaded picture bytes for storage.
package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/redisplay/simple-gallery/internal/media/sniffer"
)

const jpegQuality = 85

// Downscale bounds the picture's longest edge to maxEdge, re-encoding in the
// original format. Pictures already within bounds pass through untouched, as
// do GIFs: re-encoding a GIF would flatten its animation to a single frame.
func Downscale(data []byte, kind sniffer.MediaType, maxEdge int) ([]byte, error) {
	if kind == sniffer.TypeGIF || maxEdge <= 0 {
		return data, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Width <= maxEdge && cfg.Height <= maxEdge {
		return data, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	resized := imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)

	var buf bytes.Buffer
	switch kind {
	case sniffer.TypeJPEG:
		err = jpeg.Encode(&buf, resized, &jpeg.Options{Quality: jpegQuality})
	case sniffer.TypePNG:
		err = png.Encode(&buf, resized)
	default:
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}
