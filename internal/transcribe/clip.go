package transcribe

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// MaxClipBytes is the hard ceiling for one audio clip (25 MiB).
const MaxClipBytes = 25 << 20

var (
	ErrEmptyClip         = errors.New("audio clip is empty")
	ErrPayloadTooLarge   = fmt.Errorf("audio clip exceeds %d MiB limit", MaxClipBytes>>20)
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// formats accepted by the speech backend
var supportedFormats = map[string]bool{
	"mp3":  true,
	"mp4":  true,
	"mpeg": true,
	"mpga": true,
	"m4a":  true,
	"wav":  true,
	"webm": true,
}

// Clip is one recorded audio payload handed in for transcription.
type Clip struct {
	Filename string
	Data     []byte
}

// Extension returns the lowercase filename extension without the dot.
func (c Clip) Extension() string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(c.Filename), "."))
}

// ValidateClip rejects oversized or unrecognized clips before any
// external call is attempted.
func ValidateClip(clip Clip) error {
	if len(clip.Data) == 0 {
		return ErrEmptyClip
	}
	if len(clip.Data) > MaxClipBytes {
		return ErrPayloadTooLarge
	}
	if !supportedFormats[clip.Extension()] {
		return ErrUnsupportedFormat
	}
	return nil
}

// SupportedFormatsList returns the accepted extensions for error messages.
func SupportedFormatsList() []string {
	return []string{"mp3", "mp4", "mpeg", "mpga", "m4a", "wav", "webm"}
}
