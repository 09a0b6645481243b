// Package voice orchestrates spoken turns: speech-to-text, a normal chat
// turn, then text-to-speech.
//
// The pipeline spools incoming audio to a temp file before transcription
// and removes it on every exit path. Failures keep the text turn's
// guarantees: nothing is persisted if transcription fails, and a synthesis
// failure loses only the audio rendering, never the persisted messages.
package voice
