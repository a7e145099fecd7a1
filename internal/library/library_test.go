package library_test

import (
	"os"
	"regexp"
	"strings"
	"testing"

	"picvoice/internal/library"
	"picvoice/internal/testsupport"
)

func newLibrary(t *testing.T) *library.Library {
	t.Helper()
	return library.New(t.TempDir())
}

func TestEnsureDirectoriesCreatesTree(t *testing.T) {
	lib := newLibrary(t)
	if err := lib.EnsureDirectories("testuser@gmail.com"); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{
		lib.UploadsDir("testuser@gmail.com"),
		lib.OutputsDir("testuser@gmail.com"),
		lib.TempDir("testuser@gmail.com"),
	} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
	// Second call is a no-op.
	if err := lib.EnsureDirectories("testuser@gmail.com"); err != nil {
		t.Fatalf("repeated EnsureDirectories failed: %v", err)
	}
}

func TestStoredNameShape(t *testing.T) {
	name := library.StoredName("My Photo.JPG")
	pattern := regexp.MustCompile(`^My-Photo_\d+_[0-9a-f]{8}\.jpg$`)
	if !pattern.MatchString(name) {
		t.Fatalf("unexpected stored name %q", name)
	}
	if name == library.StoredName("My Photo.JPG") {
		t.Fatal("expected distinct names for repeated saves")
	}
}

func TestSaveUploadMovesStagedFile(t *testing.T) {
	lib := newLibrary(t)
	src := testsupport.WriteFile(t, t.TempDir(), "incoming.png", "png-bytes")

	stored, path, err := lib.SaveUpload("testuser@gmail.com", src, "vacation shot.png")
	if err != nil {
		t.Fatalf("SaveUpload failed: %v", err)
	}
	if !strings.HasPrefix(stored, "vacation-shot_") || !strings.HasSuffix(stored, ".png") {
		t.Fatalf("unexpected stored name %q", stored)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "png-bytes" {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if testsupport.FileExists(t, src) {
		t.Fatal("expected staged source to be consumed")
	}
}

func TestStageTempAndCleanup(t *testing.T) {
	lib := newLibrary(t)
	path, err := lib.StageTemp("testuser@gmail.com", "recording.webm", []byte("audio"))
	if err != nil {
		t.Fatalf("StageTemp failed: %v", err)
	}
	if !testsupport.FileExists(t, path) {
		t.Fatalf("expected staged file at %s", path)
	}

	if err := lib.CleanupTemp("testuser@gmail.com"); err != nil {
		t.Fatalf("CleanupTemp failed: %v", err)
	}
	if testsupport.FileExists(t, path) {
		t.Fatal("expected temp file removed")
	}

	// A user with no temp directory is already clean.
	if err := lib.CleanupTemp("nobody@example.com"); err != nil {
		t.Fatalf("CleanupTemp on missing dir failed: %v", err)
	}
}

func TestListImagesFiltersExtensions(t *testing.T) {
	lib := newLibrary(t)
	email := "testuser@gmail.com"
	if err := lib.EnsureDirectories(email); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, name := range []string{"b.jpg", "a.webp", "notes.txt", "c.PNG"} {
		testsupport.WriteFile(t, lib.UploadsDir(email), name, "x")
	}

	images, err := lib.ListImages(email)
	if err != nil {
		t.Fatalf("ListImages failed: %v", err)
	}
	want := []string{"a.webp", "b.jpg", "c.PNG"}
	if len(images) != len(want) {
		t.Fatalf("expected %v, got %v", want, images)
	}
	for i := range want {
		if images[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, images)
		}
	}
}

func TestListAudioOutputs(t *testing.T) {
	lib := newLibrary(t)
	email := "testuser@gmail.com"
	if err := lib.EnsureDirectories(email); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	testsupport.WriteFile(t, lib.OutputsDir(email), "ann.mp3", "x")
	testsupport.WriteFile(t, lib.OutputsDir(email), "ann.jpg", "x")

	outputs, err := lib.ListAudioOutputs(email)
	if err != nil {
		t.Fatalf("ListAudioOutputs failed: %v", err)
	}
	if len(outputs) != 1 || outputs[0] != "ann.mp3" {
		t.Fatalf("unexpected outputs %v", outputs)
	}
}

func TestRemoveUploadMissingIsClean(t *testing.T) {
	lib := newLibrary(t)
	if err := lib.RemoveUpload("testuser@gmail.com", "absent.jpg"); err != nil {
		t.Fatalf("RemoveUpload on missing file failed: %v", err)
	}
	if err := lib.RemoveOutput("testuser@gmail.com", "absent.mp3"); err != nil {
		t.Fatalf("RemoveOutput on missing file failed: %v", err)
	}
}

func TestIsImageName(t *testing.T) {
	cases := map[string]bool{
		"a.jpg":  true,
		"a.JPEG": true,
		"a.webp": true,
		"a.mp3":  false,
		"a":      false,
	}
	for name, want := range cases {
		if got := library.IsImageName(name); got != want {
			t.Fatalf("IsImageName(%q) = %v, want %v", name, got, want)
		}
	}
}
