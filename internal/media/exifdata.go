package media

import (
	"bytes"
	"fmt"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/redisplay/simple-gallery/internal/media/sniffer"
)

// ExtractCapture pulls the capture date (YYYY-MM-DD) and GPS position
// ("lat,lon") out of a JPEG's EXIF block. Either value may be absent; a
// missing or unreadable EXIF block is not an error, just nothing to report.
func ExtractCapture(data []byte, kind sniffer.MediaType) (takenOn, location *string) {
	if kind != sniffer.TypeJPEG {
		return nil, nil
	}

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil
	}

	if t, err := x.DateTime(); err == nil {
		day := t.Format("2006-01-02")
		takenOn = &day
	}
	if lat, lon, err := x.LatLong(); err == nil {
		pos := fmt.Sprintf("%.6f,%.6f", lat, lon)
		location = &pos
	}
	return takenOn, location
}
