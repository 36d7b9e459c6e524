package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const maxPathLength = 4096

// FilePathValidator checks local file locations given on the command line or
// in the config file.
type FilePathValidator struct {
	// AllowedBaseDirs restricts paths to these trees. Empty allows any path.
	AllowedBaseDirs    []string
	AllowHomeExpansion bool
	AllowRelativePaths bool
	MaxPathLength      int
}

// NewFilePathValidator confines paths to the app's own directories and the
// temp dir.
func NewFilePathValidator() *FilePathValidator {
	homeDir, _ := os.UserHomeDir()
	return &FilePathValidator{
		AllowedBaseDirs: []string{
			filepath.Join(homeDir, ".bulletin"),
			filepath.Join(homeDir, ".config", "bulletin"),
			os.TempDir(),
		},
		AllowHomeExpansion: true,
		MaxPathLength:      maxPathLength,
	}
}

func NewPermissiveFilePathValidator() *FilePathValidator {
	return &FilePathValidator{
		AllowHomeExpansion: true,
		AllowRelativePaths: true,
		MaxPathLength:      maxPathLength,
	}
}

// ValidateAndSanitize returns the cleaned path or the first problem found.
func (v *FilePathValidator) ValidateAndSanitize(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if len(path) > v.MaxPathLength {
		return "", fmt.Errorf("path too long (max %d characters)", v.MaxPathLength)
	}
	if err := checkCharacters(path); err != nil {
		return "", err
	}

	normalized, err := v.normalize(path)
	if err != nil {
		return "", fmt.Errorf("path normalization failed: %w", err)
	}
	if err := v.checkBaseDirs(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

func checkCharacters(path string) error {
	for _, r := range path {
		if r == 0 {
			return fmt.Errorf("path contains null bytes")
		}
		if r < 32 && r != '\t' {
			return fmt.Errorf("path contains control characters")
		}
	}
	for _, seq := range []string{"../", "..\\", "//", "\\\\"} {
		if strings.Contains(path, seq) {
			return fmt.Errorf("path contains dangerous sequence: %s", seq)
		}
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return fmt.Errorf("directory traversal not allowed")
		}
	}
	return nil
}

func (v *FilePathValidator) normalize(path string) (string, error) {
	switch {
	case v.AllowHomeExpansion && strings.HasPrefix(path, "~/"):
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	case strings.HasPrefix(path, "~"):
		return "", fmt.Errorf("tilde expansion not allowed or invalid tilde usage")
	}

	if !filepath.IsAbs(path) {
		if !v.AllowRelativePaths {
			return "", fmt.Errorf("relative paths are not allowed: %s", path)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("cannot make path absolute: %w", err)
		}
		path = abs
	}
	return filepath.Clean(path), nil
}

func (v *FilePathValidator) checkBaseDirs(path string) error {
	if len(v.AllowedBaseDirs) == 0 {
		return nil
	}
	for _, base := range v.AllowedBaseDirs {
		absBase, err := filepath.Abs(base)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(absBase, path)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil
		}
	}
	return fmt.Errorf("path not within allowed directories: %v", v.AllowedBaseDirs)
}

// ValidateDirectory validates path as a directory, creating it when asked.
func (v *FilePathValidator) ValidateDirectory(path string, createIfNotExist bool) (string, error) {
	validated, err := v.ValidateAndSanitize(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(validated)
	switch {
	case os.IsNotExist(err):
		if createIfNotExist {
			if err := os.MkdirAll(validated, 0o755); err != nil {
				return "", fmt.Errorf("failed to create directory: %w", err)
			}
		}
	case err != nil:
		return "", fmt.Errorf("checking directory: %w", err)
	case !info.IsDir():
		return "", fmt.Errorf("path exists but is not a directory: %s", validated)
	}
	return validated, nil
}

// ValidateFile validates path as a file location. The file need not exist.
func (v *FilePathValidator) ValidateFile(path string) (string, error) {
	validated, err := v.ValidateAndSanitize(path)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(validated); err == nil && info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", validated)
	}
	return validated, nil
}
