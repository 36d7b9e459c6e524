package media

import (
	_ "embed"
	"fmt"
	"net/url"
	"path"
	"runtime"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

//go:embed media_types.toml
var mediaTypesTOML []byte

type Type int

const (
	TypeVideo Type = iota
	TypeImage
	TypeAudio
	TypePDF
	TypeUnknown
)

func (t Type) String() string {
	switch t {
	case TypeVideo:
		return "video"
	case TypeImage:
		return "image"
	case TypeAudio:
		return "audio"
	case TypePDF:
		return "pdf"
	default:
		return "unknown"
	}
}

type TypeConfig struct {
	Extensions  []string `toml:"extensions"`
	URLPatterns []string `toml:"url_patterns"`
}

type TypesConfig struct {
	Video     TypeConfig                `toml:"video"`
	Audio     TypeConfig                `toml:"audio"`
	Image     TypeConfig                `toml:"image"`
	PDF       TypeConfig                `toml:"pdf"`
	Platforms map[string]PlatformConfig `toml:"platforms"`
}

type PlatformConfig struct {
	DefaultOpener string `toml:"default_opener"`
}

type TypeDetector struct {
	config *TypesConfig
}

func NewTypeDetector() (*TypeDetector, error) {
	var config TypesConfig
	if err := toml.Unmarshal(mediaTypesTOML, &config); err != nil {
		return nil, fmt.Errorf("parsing media_types.toml: %w", err)
	}

	return &TypeDetector{config: &config}, nil
}

var (
	defaultOnce     sync.Once
	defaultDetector *TypeDetector
)

// DefaultDetector returns a shared detector built from the embedded table.
func DefaultDetector() *TypeDetector {
	defaultOnce.Do(func() {
		d, err := NewTypeDetector()
		if err != nil {
			d = &TypeDetector{config: &TypesConfig{}}
		}
		defaultDetector = d
	})
	return defaultDetector
}

// IsVideoURL reports whether the default detector classifies raw as video.
func IsVideoURL(raw string) bool {
	return DefaultDetector().DetectType(raw) == TypeVideo
}

func (d *TypeDetector) DetectType(raw string) Type {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if lower == "" {
		return TypeUnknown
	}
	isURL := strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")

	if ext := extension(lower); ext != "" {
		switch {
		case hasExtension(d.config.Video.Extensions, ext):
			return TypeVideo
		case hasExtension(d.config.Audio.Extensions, ext):
			return TypeAudio
		case hasExtension(d.config.Image.Extensions, ext):
			return TypeImage
		case hasExtension(d.config.PDF.Extensions, ext):
			return TypePDF
		}
	}

	if isURL {
		switch {
		case matchesPattern(lower, d.config.Video.URLPatterns):
			return TypeVideo
		case matchesPattern(lower, d.config.Audio.URLPatterns):
			return TypeAudio
		case matchesPattern(lower, d.config.Image.URLPatterns):
			return TypeImage
		case matchesPattern(lower, d.config.PDF.URLPatterns):
			return TypePDF
		}
	}

	return TypeUnknown
}

func (d *TypeDetector) GetDefaultOpener() string {
	if platformConfig, ok := d.config.Platforms[runtime.GOOS]; ok && platformConfig.DefaultOpener != "" {
		return platformConfig.DefaultOpener
	}
	if fallback, ok := d.config.Platforms["fallback"]; ok && fallback.DefaultOpener != "" {
		return fallback.DefaultOpener
	}
	return "open"
}

// extension returns the file extension of the URL path without the dot,
// ignoring query strings and fragments.
func extension(lower string) string {
	p := lower
	if u, err := url.Parse(lower); err == nil && u.Path != "" {
		p = u.Path
	} else {
		if i := strings.IndexAny(p, "?#"); i != -1 {
			p = p[:i]
		}
	}
	return strings.TrimPrefix(path.Ext(p), ".")
}

func hasExtension(extensions []string, ext string) bool {
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func matchesPattern(s string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern != "" && strings.Contains(s, pattern) {
			return true
		}
	}
	return false
}
