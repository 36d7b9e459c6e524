package media

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

//go:embed players.toml
var playersTOML []byte

// PlayerDefinition defines how a media player should be invoked
type PlayerDefinition struct {
	Description string                 `toml:"description"`
	Platforms   []string               `toml:"platforms"`
	Video       *PlayerMediaTypeConfig `toml:"video,omitempty"`
	Audio       *PlayerMediaTypeConfig `toml:"audio,omitempty"`
	Image       *PlayerMediaTypeConfig `toml:"image,omitempty"`
	PDF         *PlayerMediaTypeConfig `toml:"pdf,omitempty"`
}

// PlayerMediaTypeConfig holds the args for one media type
type PlayerMediaTypeConfig struct {
	Args        []string `toml:"args,omitempty"`
	ArgsDarwin  []string `toml:"args_darwin,omitempty"`
	ArgsLinux   []string `toml:"args_linux,omitempty"`
	ArgsWindows []string `toml:"args_windows,omitempty"`
}

// Preferences lists candidate players per media type, in order.
type Preferences struct {
	Video []string `toml:"video"`
	Audio []string `toml:"audio"`
	Image []string `toml:"image"`
	PDF   []string `toml:"pdf"`
}

type PlayersConfig struct {
	Preferences map[string]Preferences      `toml:"preferences"`
	Players     map[string]PlayerDefinition `toml:"players"`
}

type PlayerRegistry struct {
	players     map[string]PlayerDefinition
	preferences map[string]Preferences
}

// NewPlayerRegistry creates a registry from the embedded TOML, merged with
// ~/.config/bulletin/players.toml when present.
func NewPlayerRegistry() (*PlayerRegistry, error) {
	var config PlayersConfig
	if err := toml.Unmarshal(playersTOML, &config); err != nil {
		return nil, fmt.Errorf("parsing players.toml: %w", err)
	}

	registry := &PlayerRegistry{
		players:     config.Players,
		preferences: config.Preferences,
	}
	if registry.players == nil {
		registry.players = make(map[string]PlayerDefinition)
	}
	if registry.preferences == nil {
		registry.preferences = make(map[string]Preferences)
	}

	if home, err := os.UserHomeDir(); err == nil {
		registry.loadUserConfig(filepath.Join(home, ".config", "bulletin", "players.toml"))
	}

	return registry, nil
}

// loadUserConfig merges player definitions from path over the built-in ones.
// A missing or unreadable file is ignored.
func (r *PlayerRegistry) loadUserConfig(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var userConfig PlayersConfig
	if err := toml.Unmarshal(data, &userConfig); err != nil {
		return
	}
	for name, def := range userConfig.Players {
		r.players[name] = def
	}
	for platform, prefs := range userConfig.Preferences {
		r.preferences[platform] = prefs
	}
}

// Candidates returns the preferred players for mediaType on this platform.
func (r *PlayerRegistry) Candidates(mediaType Type) []string {
	prefs, ok := r.preferences[runtime.GOOS]
	if !ok {
		return nil
	}
	switch mediaType {
	case TypeVideo:
		return prefs.Video
	case TypeAudio:
		return prefs.Audio
	case TypeImage:
		return prefs.Image
	case TypePDF:
		return prefs.PDF
	default:
		return nil
	}
}

// GetCommand builds the command for a specific player and media type
func (r *PlayerRegistry) GetCommand(playerName string, mediaType Type, url string) (*exec.Cmd, error) {
	player, exists := r.players[playerName]
	if !exists {
		return exec.Command(playerName, url), nil
	}

	supportsPlatform := false
	for _, p := range player.Platforms {
		if p == runtime.GOOS {
			supportsPlatform = true
			break
		}
	}
	if !supportsPlatform {
		return nil, fmt.Errorf("%s not supported on %s", playerName, runtime.GOOS)
	}

	var config *PlayerMediaTypeConfig
	switch mediaType {
	case TypeVideo:
		config = player.Video
	case TypeAudio:
		config = player.Audio
	case TypeImage:
		config = player.Image
	case TypePDF:
		config = player.PDF
	}

	if config == nil {
		return nil, fmt.Errorf("%s doesn't support %s", playerName, mediaType)
	}

	args := append([]string{}, r.getArgs(config)...)
	args = append(args, url)

	return exec.Command(playerName, args...), nil
}

// getArgs returns the appropriate args for the current platform
func (r *PlayerRegistry) getArgs(config *PlayerMediaTypeConfig) []string {
	if config == nil {
		return nil
	}

	switch runtime.GOOS {
	case "darwin":
		if len(config.ArgsDarwin) > 0 {
			return config.ArgsDarwin
		}
	case "linux":
		if len(config.ArgsLinux) > 0 {
			return config.ArgsLinux
		}
	case "windows":
		if len(config.ArgsWindows) > 0 {
			return config.ArgsWindows
		}
	}

	return config.Args
}

// IsPlayerAvailable checks if a player is installed
func (r *PlayerRegistry) IsPlayerAvailable(playerName string) bool {
	_, err := exec.LookPath(playerName)
	return err == nil
}

// FindAvailablePlayer finds the first available player from a list
func (r *PlayerRegistry) FindAvailablePlayer(players []string) string {
	return findCommand(players...)
}
