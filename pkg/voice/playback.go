package voice

import (
	"os/exec"
	"runtime"

	"github.com/pagevoice/pagevoice/pkg/logger"
)

// PlayFile plays an audio file through a local player, best effort.
// Playback failures are advisory only and never affect the pipeline.
func PlayFile(path string) {
	player, args := playerCommand(path)
	if player == "" {
		logger.DebugC("voice", "No local audio player found, skipping playback")
		return
	}

	logger.InfoCF("voice", "Playing audio", map[string]any{"path": path, "player": player})
	if err := exec.Command(player, args...).Run(); err != nil {
		logger.WarnCF("voice", "Playback failed", map[string]any{"error": err.Error()})
	}
}

func playerCommand(path string) (string, []string) {
	var candidates [][]string
	if runtime.GOOS == "darwin" {
		candidates = [][]string{{"afplay", path}}
	} else {
		candidates = [][]string{
			{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", path},
			{"aplay", path},
			{"mpg123", "-q", path},
		}
	}

	for _, c := range candidates {
		if _, err := exec.LookPath(c[0]); err == nil {
			return c[0], c[1:]
		}
	}
	return "", nil
}
