package media

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Launcher opens article pages and media URLs with an external program.
type Launcher struct {
	players       map[Type]string
	defaultOpener string
	registry      *PlayerRegistry
	detector      *TypeDetector

	// start runs the command detached; replaced in tests.
	start func(cmd *exec.Cmd) error
}

func NewLauncher() *Launcher {
	registry, err := NewPlayerRegistry()
	if err != nil {
		registry = &PlayerRegistry{
			players:     make(map[string]PlayerDefinition),
			preferences: make(map[string]Preferences),
		}
	}

	detector, err := NewTypeDetector()
	if err != nil {
		detector = &TypeDetector{config: &TypesConfig{}}
	}

	l := &Launcher{
		players:       make(map[Type]string),
		defaultOpener: detector.GetDefaultOpener(),
		registry:      registry,
		detector:      detector,
		start:         startDetached,
	}

	for _, t := range []Type{TypeVideo, TypeAudio, TypeImage, TypePDF} {
		if player := registry.FindAvailablePlayer(registry.Candidates(t)); player != "" {
			l.players[t] = player
		}
	}

	return l
}

// Detector exposes the launcher's type detector.
func (l *Launcher) Detector() *TypeDetector {
	return l.detector
}

// Open launches the handler for url. Unknown types and pages go to the
// platform opener.
func (l *Launcher) Open(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return fmt.Errorf("nothing to open")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("refusing to open non-http url %q", url)
	}

	mediaType := l.detector.DetectType(url)

	playerName := l.players[mediaType]
	if playerName == "" {
		playerName = l.defaultOpener
	}
	if playerName == "" {
		return fmt.Errorf("no application found to open URL")
	}

	var cmd *exec.Cmd
	if _, known := l.registry.players[playerName]; known {
		c, err := l.registry.GetCommand(playerName, mediaType, url)
		if err != nil {
			playerName = l.defaultOpener
			c = openerCommand(playerName, url)
		}
		cmd = c
	} else {
		cmd = openerCommand(playerName, url)
	}

	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", playerName, err)
	}

	return nil
}

// openerCommand builds the invocation for a plain opener. "start" is a cmd.exe
// builtin, not an executable.
func openerCommand(opener, url string) *exec.Cmd {
	if opener == "start" && runtime.GOOS == "windows" {
		return exec.Command("cmd", "/c", "start", "", url)
	}
	return exec.Command(opener, url)
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
