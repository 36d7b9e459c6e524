package media

import (
	"runtime"
	"testing"
)

func TestDetectType(t *testing.T) {
	detector, err := NewTypeDetector()
	if err != nil {
		t.Fatalf("NewTypeDetector() error = %v", err)
	}

	tests := []struct {
		name     string
		url      string
		expected Type
	}{
		{name: "MP4 video", url: "https://cdn.bulletin.test/clip.mp4", expected: TypeVideo},
		{name: "WebM video", url: "https://cdn.bulletin.test/clip.webm", expected: TypeVideo},
		{name: "OGG video", url: "https://cdn.bulletin.test/clip.ogg", expected: TypeVideo},
		{name: "MP4 with query", url: "https://cdn.bulletin.test/clip.mp4?w=640&h=360", expected: TypeVideo},
		{name: "MP4 with fragment", url: "https://cdn.bulletin.test/clip.mp4#t=10", expected: TypeVideo},
		{name: "YouTube URL", url: "https://www.youtube.com/watch?v=abc123", expected: TypeVideo},
		{name: "YouTube short URL", url: "https://youtu.be/abc123", expected: TypeVideo},
		{name: "VnExpress video", url: "https://video.vnexpress.net/tin-tuc/clip-4700000.html", expected: TypeVideo},

		{name: "JPEG image", url: "https://cdn.bulletin.test/photo.jpg", expected: TypeImage},
		{name: "PNG image", url: "https://cdn.bulletin.test/image.png", expected: TypeImage},
		{name: "WebP image", url: "https://cdn.bulletin.test/photo.webp", expected: TypeImage},
		{name: "Placeholder image", url: "https://placehold.co/1200x600/E2E8F0/A0AEC0?text=Hello&font=roboto", expected: TypeImage},

		{name: "MP3 audio", url: "https://cdn.bulletin.test/song.mp3", expected: TypeAudio},
		{name: "FLAC audio", url: "https://cdn.bulletin.test/music.flac", expected: TypeAudio},

		{name: "PDF document", url: "https://cdn.bulletin.test/report.pdf", expected: TypePDF},
		{name: "PDF with query", url: "https://cdn.bulletin.test/doc.pdf?version=2", expected: TypePDF},

		{name: "HTML page", url: "https://vnexpress.net/page.html", expected: TypeUnknown},
		{name: "No extension", url: "https://vnexpress.net/resource", expected: TypeUnknown},
		{name: "Empty", url: "", expected: TypeUnknown},

		{name: "Uppercase MP4", url: "https://cdn.bulletin.test/VIDEO.MP4", expected: TypeVideo},
		{name: "Mixed case JPEG", url: "https://cdn.bulletin.test/Photo.JpEg", expected: TypeImage},
		{name: "Bare file name", url: "clip.webm", expected: TypeVideo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detector.DetectType(tt.url); got != tt.expected {
				t.Errorf("DetectType(%s) = %v, want %v", tt.url, got, tt.expected)
			}
		})
	}
}

func TestIsVideoURL(t *testing.T) {
	if !IsVideoURL("https://cdn.bulletin.test/clip.mp4") {
		t.Error("mp4 should be video")
	}
	if IsVideoURL("https://cdn.bulletin.test/photo.jpg") {
		t.Error("jpg should not be video")
	}
	if DefaultDetector() != DefaultDetector() {
		t.Error("DefaultDetector should be shared")
	}
}

func TestTypeString(t *testing.T) {
	if TypeVideo.String() != "video" || TypeUnknown.String() != "unknown" {
		t.Errorf("unexpected Type strings: %s %s", TypeVideo, TypeUnknown)
	}
}

func TestGetDefaultOpener(t *testing.T) {
	detector, err := NewTypeDetector()
	if err != nil {
		t.Fatal(err)
	}

	expectedOpeners := map[string]string{
		"darwin":  "open",
		"linux":   "xdg-open",
		"windows": "start",
	}

	opener := detector.GetDefaultOpener()
	if opener == "" {
		t.Error("GetDefaultOpener() returned empty string")
	}
	if expected, ok := expectedOpeners[runtime.GOOS]; ok && opener != expected {
		t.Errorf("GetDefaultOpener() on %s = %s, want %s", runtime.GOOS, opener, expected)
	}

	empty := &TypeDetector{config: &TypesConfig{}}
	if got := empty.GetDefaultOpener(); got != "open" {
		t.Errorf("empty detector opener = %s, want 'open'", got)
	}
}
