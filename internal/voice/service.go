// ABOUTME: Voice orchestrator running the transcribe, chat, synthesize pipeline
// ABOUTME: Spools streamed audio to a temp file and guarantees cleanup on every exit path

package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/parleyhq/parley/internal/metrics"
	"github.com/parleyhq/parley/internal/speech"
)

// ErrUpstream marks a failure of the external speech service, on either
// the transcription or the synthesis leg.
var ErrUpstream = errors.New("speech request failed")

// Chat defines what the voice pipeline needs from the chat orchestrator.
type Chat interface {
	GenerateResponse(ctx context.Context, sessionID int64, userText string) (string, error)
}

// Service turns a spoken user turn into a spoken agent reply.
type Service struct {
	speech  speech.Client
	chat    Chat
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a voice service. metrics may be nil.
func New(speechClient speech.Client, chat Chat, logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		speech:  speechClient,
		chat:    chat,
		logger:  logger.With("component", "voice"),
		metrics: m,
	}
}

// ProcessVoiceMessage runs a full voice turn: spool the audio, transcribe
// it, run the text turn through the chat orchestrator, and synthesize the
// reply as MP3 bytes.
//
// Failure points map onto the text turn's guarantees: a transcription
// failure happens before the chat turn, so nothing is persisted; a chat
// failure persists whatever the chat orchestrator had committed; a
// synthesis failure leaves both persisted messages in place and loses only
// the audio rendering. The spooled temp file is removed on every path.
func (s *Service) ProcessVoiceMessage(ctx context.Context, sessionID int64, audio io.Reader) ([]byte, error) {
	requestID := uuid.New().String()

	// 1. Spool the incoming audio to a durable temp file. The upload may be
	// a one-shot network stream; transcription needs a stable byte source.
	path, err := s.spool(audio, requestID)
	if err != nil {
		s.metrics.RecordVoiceTurn("spool_error")
		return nil, fmt.Errorf("spooling audio: %w", err)
	}
	defer s.cleanup(path)

	// 2. Transcribe the spooled audio.
	file, err := os.Open(path)
	if err != nil {
		s.metrics.RecordVoiceTurn("spool_error")
		return nil, fmt.Errorf("reopening spooled audio: %w", err)
	}

	start := time.Now()
	transcript, err := s.speech.Transcribe(ctx, file, filepath.Base(path))
	file.Close()
	s.metrics.RecordSpeechRequest("transcribe", time.Since(start))
	if err != nil {
		s.metrics.RecordVoiceTurn("stt_error")
		return nil, fmt.Errorf("transcribing audio: %w: %v", ErrUpstream, err)
	}

	s.logger.Debug("audio transcribed",
		"request_id", requestID,
		"session_id", sessionID,
		"chars", len(transcript))

	// 3. Run the text turn. Errors pass through untouched so the caller
	// can still see store.ErrNotFound.
	reply, err := s.chat.GenerateResponse(ctx, sessionID, transcript)
	if err != nil {
		s.metrics.RecordVoiceTurn("chat_error")
		return nil, err
	}

	// 4. Synthesize the reply.
	start = time.Now()
	audioBytes, err := s.speech.Synthesize(ctx, reply)
	s.metrics.RecordSpeechRequest("synthesize", time.Since(start))
	if err != nil {
		s.metrics.RecordVoiceTurn("tts_error")
		return nil, fmt.Errorf("synthesizing reply: %w: %v", ErrUpstream, err)
	}

	s.logger.Debug("voice turn complete",
		"request_id", requestID,
		"session_id", sessionID,
		"audio_bytes", len(audioBytes))

	s.metrics.RecordVoiceTurn("ok")
	return audioBytes, nil
}

// spool copies the audio stream to a new temp file and returns its path.
// On error the partial file is already removed; on success the caller owns
// removal.
func (s *Service) spool(audio io.Reader, requestID string) (string, error) {
	file, err := os.CreateTemp("", "parley-voice-"+requestID+"-*.wav")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := io.Copy(file, audio); err != nil {
		file.Close()
		s.cleanup(file.Name())
		return "", fmt.Errorf("writing audio: %w", err)
	}

	if err := file.Close(); err != nil {
		s.cleanup(file.Name())
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	return file.Name(), nil
}

// cleanup removes the spooled file. A failed removal is logged and
// swallowed; it must never fail the turn.
func (s *Service) cleanup(path string) {
	if err := os.Remove(path); err != nil {
		s.logger.Warn("could not remove temp audio file", "path", path, "error", err)
	}
}
