package tui

import (
	"fmt"
	"os"
	"os/exec"
)

// playerCandidates are tried in order; the first binary found on PATH wins.
// Each entry's args are appended before the audio file path.
var playerCandidates = []struct {
	name string
	args []string
}{
	{"afplay", nil},
	{"mpv", []string{"--no-terminal", "--really-quiet"}},
	{"ffplay", []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}},
	{"play", []string{"-q"}},
}

// playBytes writes the synthesized audio to a temp file and plays it with
// the first available system player. It blocks until playback finishes.
func playBytes(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("no audio data")
	}
	f, err := os.CreateTemp("", "karuta-*.mp3")
	if err != nil {
		return fmt.Errorf("failed to create temp audio file: %w", err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil {
			logErrf("failed to remove temp audio file: %v\n", err)
		}
	}()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write temp audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close temp audio file: %w", err)
	}

	for _, candidate := range playerCandidates {
		bin, err := exec.LookPath(candidate.name)
		if err != nil {
			continue
		}
		args := append(append([]string{}, candidate.args...), path)
		cmd := exec.Command(bin, args...)
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s failed: %w", candidate.name, err)
		}
		return nil
	}
	return fmt.Errorf("no audio player found (tried afplay, mpv, ffplay, play)")
}
