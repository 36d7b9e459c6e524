package media

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func testRegistry() *PlayerRegistry {
	return &PlayerRegistry{
		players: map[string]PlayerDefinition{
			"mpv": {
				Description: "Test player",
				Platforms:   []string{"darwin", "linux", "windows"},
				Video: &PlayerMediaTypeConfig{
					Args: []string{"--no-terminal"},
				},
				Audio: &PlayerMediaTypeConfig{
					Args: []string{"--no-video"},
				},
			},
			"vlc": {
				Description: "VLC player",
				Platforms:   []string{"darwin", "linux"},
				Video: &PlayerMediaTypeConfig{
					Args:       []string{"--intf", "dummy"},
					ArgsDarwin: []string{"--intf", "macosx"},
				},
			},
		},
		preferences: map[string]Preferences{
			runtime.GOOS: {
				Video: []string{"mpv", "vlc"},
				Image: []string{"feh"},
			},
		},
	}
}

func TestPlayerRegistry_GetCommand(t *testing.T) {
	registry := testRegistry()

	tests := []struct {
		name        string
		playerName  string
		mediaType   Type
		url         string
		wantErr     bool
		checkArgs   bool
		expectedLen int
	}{
		{
			name:        "mpv with video",
			playerName:  "mpv",
			mediaType:   TypeVideo,
			url:         "https://cdn.bulletin.test/video.mp4",
			checkArgs:   true,
			expectedLen: 2, // --no-terminal, URL
		},
		{
			name:        "mpv with audio",
			playerName:  "mpv",
			mediaType:   TypeAudio,
			url:         "https://cdn.bulletin.test/audio.mp3",
			checkArgs:   true,
			expectedLen: 2, // --no-video, URL
		},
		{
			name:       "mpv with unsupported media type",
			playerName: "mpv",
			mediaType:  TypeImage,
			url:        "https://cdn.bulletin.test/image.jpg",
			wantErr:    true,
		},
		{
			name:        "unknown player",
			playerName:  "unknownplayer",
			mediaType:   TypeVideo,
			url:         "https://cdn.bulletin.test/video.mp4",
			checkArgs:   true,
			expectedLen: 1, // Just URL
		},
		{
			name:        "vlc with platform-specific args",
			playerName:  "vlc",
			mediaType:   TypeVideo,
			url:         "https://cdn.bulletin.test/video.mp4",
			wantErr:     runtime.GOOS == "windows",
			checkArgs:   runtime.GOOS != "windows",
			expectedLen: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := registry.GetCommand(tt.playerName, tt.mediaType, tt.url)

			if tt.wantErr {
				if err == nil {
					t.Errorf("GetCommand() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("GetCommand() unexpected error: %v", err)
			}

			if tt.checkArgs {
				if len(cmd.Args) != tt.expectedLen+1 {
					t.Errorf("GetCommand() args length = %d, want %d", len(cmd.Args)-1, tt.expectedLen)
				}
				if cmd.Args[len(cmd.Args)-1] != tt.url {
					t.Errorf("GetCommand() last arg = %s, want %s", cmd.Args[len(cmd.Args)-1], tt.url)
				}
			}
		})
	}
}

func TestPlayerRegistry_GetCommandDoesNotAliasArgs(t *testing.T) {
	registry := testRegistry()

	first, err := registry.GetCommand("mpv", TypeVideo, "https://cdn.bulletin.test/a.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := registry.GetCommand("mpv", TypeVideo, "https://cdn.bulletin.test/b.mp4"); err != nil {
		t.Fatal(err)
	}

	if got := first.Args[len(first.Args)-1]; got != "https://cdn.bulletin.test/a.mp4" {
		t.Errorf("first command URL was overwritten: %s", got)
	}
	if n := len(registry.players["mpv"].Video.Args); n != 1 {
		t.Errorf("configured args mutated, len = %d", n)
	}
}

func TestPlayerRegistry_getArgs(t *testing.T) {
	registry := &PlayerRegistry{}

	if got := registry.getArgs(nil); got != nil {
		t.Errorf("getArgs(nil) = %v, want nil", got)
	}

	generic := &PlayerMediaTypeConfig{Args: []string{"--arg1", "--arg2"}}
	if got := registry.getArgs(generic); len(got) != 2 || got[0] != "--arg1" {
		t.Errorf("getArgs(generic) = %v", got)
	}

	specific := &PlayerMediaTypeConfig{
		Args:       []string{"--default"},
		ArgsDarwin: []string{"--darwin"},
		ArgsLinux:  []string{"--linux"},
	}
	want := "--default"
	switch runtime.GOOS {
	case "darwin":
		want = "--darwin"
	case "linux":
		want = "--linux"
	}
	if got := registry.getArgs(specific); len(got) != 1 || got[0] != want {
		t.Errorf("getArgs(specific) = %v, want [%s]", got, want)
	}
}

func TestPlayerRegistry_Candidates(t *testing.T) {
	registry := testRegistry()

	if got := registry.Candidates(TypeVideo); len(got) != 2 || got[0] != "mpv" {
		t.Errorf("Candidates(video) = %v", got)
	}
	if got := registry.Candidates(TypeImage); len(got) != 1 || got[0] != "feh" {
		t.Errorf("Candidates(image) = %v", got)
	}
	if got := registry.Candidates(TypeUnknown); got != nil {
		t.Errorf("Candidates(unknown) = %v, want nil", got)
	}
}

func TestPlayerRegistry_FindAvailablePlayer(t *testing.T) {
	registry := &PlayerRegistry{}

	tests := []struct {
		name     string
		players  []string
		expected string
	}{
		{"finds first available", []string{"nonexistent1", "sh", "nonexistent2"}, "sh"},
		{"none available", []string{"nonexistent1", "nonexistent2"}, ""},
		{"empty list", []string{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if runtime.GOOS == "windows" && tt.expected == "sh" {
				t.Skip("sh is not on PATH on windows")
			}
			result := registry.FindAvailablePlayer(tt.players)
			if result != tt.expected {
				t.Errorf("FindAvailablePlayer(%v) = %s, want %s", tt.players, result, tt.expected)
			}
		})
	}
}

func TestPlayerRegistry_LoadUserConfig(t *testing.T) {
	registry := testRegistry()

	path := filepath.Join(t.TempDir(), "players.toml")
	content := `
[players.celluloid]
description = "Celluloid"
platforms = ["linux"]

[players.celluloid.video]
args = ["--new-window"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	registry.loadUserConfig(path)

	def, ok := registry.players["celluloid"]
	if !ok {
		t.Fatal("user player definition not merged")
	}
	if def.Video == nil || len(def.Video.Args) != 1 {
		t.Errorf("unexpected celluloid video config: %+v", def.Video)
	}
	if _, ok := registry.players["mpv"]; !ok {
		t.Error("built-in players should be kept")
	}

	// Missing file is ignored
	registry.loadUserConfig(filepath.Join(t.TempDir(), "missing.toml"))
}

func TestNewPlayerRegistry(t *testing.T) {
	registry, err := NewPlayerRegistry()
	if err != nil {
		t.Fatalf("NewPlayerRegistry() error = %v", err)
	}

	if len(registry.players) == 0 {
		t.Error("NewPlayerRegistry() loaded no players from embedded config")
	}
	if _, exists := registry.players["mpv"]; !exists {
		t.Error("mpv should be defined in the embedded config")
	}
	for _, goos := range []string{"darwin", "linux", "windows"} {
		if _, ok := registry.preferences[goos]; !ok {
			t.Errorf("missing preferences for %s", goos)
		}
	}
}
