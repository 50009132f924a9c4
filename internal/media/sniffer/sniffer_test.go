package sniffer

import (
	"errors"
	"testing"
)

func TestDetectHead(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want MediaType
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 0x00}, TypeJPEG},
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00}, TypePNG},
		{"gif87", []byte("GIF87a...."), TypeGIF},
		{"gif89", []byte("GIF89a...."), TypeGIF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectHead(tt.head)
			if err != nil {
				t.Fatalf("DetectHead: %v", err)
			}
			if got.Type != tt.want {
				t.Errorf("type = %s, want %s", got.Type, tt.want)
			}
			if got.MIME == "" || got.Ext == "" {
				t.Errorf("incomplete result: %+v", got)
			}
		})
	}
}

func TestDetectHeadRejectsUnknown(t *testing.T) {
	for _, head := range [][]byte{
		nil,
		{},
		[]byte("plain text"),
		[]byte("<svg xmlns="),
		{0x00, 0x01, 0x02, 0x03},
	} {
		if _, err := DetectHead(head); !errors.Is(err, ErrUnknownType) {
			t.Errorf("DetectHead(%q) err = %v, want ErrUnknownType", head, err)
		}
	}
}
