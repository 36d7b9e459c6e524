package media

import (
	"errors"
	"os/exec"
	"runtime"
	"testing"
)

type recorder struct {
	cmds []*exec.Cmd
	err  error
}

func (r *recorder) start(cmd *exec.Cmd) error {
	r.cmds = append(r.cmds, cmd)
	return r.err
}

func testLauncher(rec *recorder) *Launcher {
	detector, _ := NewTypeDetector()
	return &Launcher{
		players: map[Type]string{
			TypeVideo: "mpv",
		},
		defaultOpener: "xdg-open",
		registry:      testRegistry(),
		detector:      detector,
		start:         rec.start,
	}
}

func TestFindCommand(t *testing.T) {
	if got := findCommand(); got != "" {
		t.Errorf("findCommand() = %q, want empty", got)
	}
	if got := findCommand("nonexistent1", "nonexistent2"); got != "" {
		t.Errorf("findCommand(nonexistent) = %q, want empty", got)
	}
	if runtime.GOOS != "windows" {
		if got := findCommand("nonexistent", "sh"); got != "sh" {
			t.Errorf("findCommand(.., sh) = %q, want sh", got)
		}
	}
}

func TestLauncher_OpenVideoUsesPlayer(t *testing.T) {
	rec := &recorder{}
	l := testLauncher(rec)

	url := "https://cdn.bulletin.test/clip.mp4"
	if err := l.Open(url); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if len(rec.cmds) != 1 {
		t.Fatalf("expected 1 command, got %d", len(rec.cmds))
	}
	args := rec.cmds[0].Args
	if args[0] != "mpv" {
		t.Errorf("expected mpv, got %s", args[0])
	}
	if args[1] != "--no-terminal" {
		t.Errorf("expected registry args, got %v", args)
	}
	if args[len(args)-1] != url {
		t.Errorf("expected URL last, got %v", args)
	}
}

func TestLauncher_OpenPageUsesDefaultOpener(t *testing.T) {
	rec := &recorder{}
	l := testLauncher(rec)

	url := "https://vnexpress.net/gia-vang-hom-nay-4700000.html"
	if err := l.Open(url); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if len(rec.cmds) != 1 {
		t.Fatalf("expected 1 command, got %d", len(rec.cmds))
	}
	if got := rec.cmds[0].Args; len(got) != 2 || got[0] != "xdg-open" || got[1] != url {
		t.Errorf("unexpected command: %v", got)
	}
}

func TestLauncher_OpenFallsBackWhenPlayerLacksType(t *testing.T) {
	rec := &recorder{}
	l := testLauncher(rec)
	l.players[TypeImage] = "mpv" // mpv has no image section

	if err := l.Open("https://cdn.bulletin.test/photo.jpg"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := rec.cmds[0].Args[0]; got != "xdg-open" {
		t.Errorf("expected fallback to default opener, got %s", got)
	}
}

func TestLauncher_OpenRejectsInvalidInput(t *testing.T) {
	rec := &recorder{}
	l := testLauncher(rec)

	for _, url := range []string{"", "   ", "file:///etc/passwd", "javascript:alert(1)"} {
		if err := l.Open(url); err == nil {
			t.Errorf("Open(%q) expected error", url)
		}
	}
	if len(rec.cmds) != 0 {
		t.Errorf("no command should start, got %d", len(rec.cmds))
	}
}

func TestLauncher_OpenReportsStartFailure(t *testing.T) {
	rec := &recorder{err: errors.New("exec: not found")}
	l := testLauncher(rec)

	if err := l.Open("https://cdn.bulletin.test/clip.mp4"); err == nil {
		t.Error("expected start failure to surface")
	}
}

func TestLauncher_NoOpener(t *testing.T) {
	rec := &recorder{}
	l := testLauncher(rec)
	l.defaultOpener = ""

	if err := l.Open("https://vnexpress.net/page"); err == nil {
		t.Error("expected error when no opener is configured")
	}
}

func TestNewLauncher(t *testing.T) {
	l := NewLauncher()
	if l == nil {
		t.Fatal("NewLauncher() returned nil")
	}
	if l.defaultOpener == "" {
		t.Error("NewLauncher() should always have a default opener")
	}
	if l.Detector() == nil {
		t.Error("NewLauncher() should expose a detector")
	}
}
