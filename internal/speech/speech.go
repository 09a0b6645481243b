// ABOUTME: Client interface for speech-to-text and text-to-speech services
// ABOUTME: Used by the voice pipeline to transcribe user audio and voice agent replies

package speech

import (
	"context"
	"io"
)

// Client converts between audio and text. Transcribe reads the full audio
// stream and returns its transcript; Synthesize returns the spoken form of
// text as encoded audio bytes (MP3 with the HTTP implementation).
type Client interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
