package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"picvoice/internal/fileutil"
	"picvoice/internal/textutil"
)

const (
	dirUploads = "uploads"
	dirOutputs = "outputs"
	dirTemp    = "temp"
)

// imageExtensions lists the upload types served back to browsers.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// Library resolves per-account media paths under a single users root.
type Library struct {
	root string
}

func New(root string) *Library {
	return &Library{root: root}
}

// Root returns the users root directory.
func (l *Library) Root() string {
	return l.root
}

// UserDir returns the account directory for email.
func (l *Library) UserDir(email string) string {
	return filepath.Join(l.root, textutil.SanitizeSegment(email, "default"))
}

// UploadsDir returns the directory holding original uploaded images.
func (l *Library) UploadsDir(email string) string {
	return filepath.Join(l.UserDir(email), dirUploads)
}

// OutputsDir returns the directory holding encoded annotation audio.
func (l *Library) OutputsDir(email string) string {
	return filepath.Join(l.UserDir(email), dirOutputs)
}

// TempDir returns the staging directory for in-flight requests.
func (l *Library) TempDir(email string) string {
	return filepath.Join(l.UserDir(email), dirTemp)
}

// EnsureDirectories creates the account tree. Safe to call repeatedly.
func (l *Library) EnsureDirectories(email string) error {
	for _, dir := range []string{l.UploadsDir(email), l.OutputsDir(email), l.TempDir(email)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create media directory %s: %w", dir, err)
		}
	}
	return nil
}

// SaveUpload moves a staged file into the uploads directory under a
// collision-free stored name derived from originalName. It returns the
// stored name and its absolute path.
func (l *Library) SaveUpload(email, srcPath, originalName string) (string, string, error) {
	if err := l.EnsureDirectories(email); err != nil {
		return "", "", err
	}
	stored := StoredName(originalName)
	dst := filepath.Join(l.UploadsDir(email), stored)
	if err := moveFile(srcPath, dst); err != nil {
		return "", "", fmt.Errorf("store upload %s: %w", originalName, err)
	}
	return stored, dst, nil
}

// TempPath returns a path inside the account temp directory for name.
func (l *Library) TempPath(email, name string) string {
	return filepath.Join(l.TempDir(email), filepath.Base(name))
}

// StageTemp writes data to a fresh file in the temp directory and
// returns its path. The name keeps the caller's extension so encoder
// invocations see the right suffix.
func (l *Library) StageTemp(email, name string, data []byte) (string, error) {
	if err := l.EnsureDirectories(email); err != nil {
		return "", err
	}
	path := l.TempPath(email, StoredName(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("stage temp file %s: %w", name, err)
	}
	return path, nil
}

// CleanupTemp removes every file in the account temp directory. A
// missing directory counts as already clean.
func (l *Library) CleanupTemp(email string) error {
	if err := fileutil.RemoveDirFiles(l.TempDir(email)); err != nil {
		return fmt.Errorf("clean temp directory: %w", err)
	}
	return nil
}

// UploadPath returns the absolute path of a stored upload.
func (l *Library) UploadPath(email, storedName string) string {
	return filepath.Join(l.UploadsDir(email), filepath.Base(storedName))
}

// OutputPath returns the absolute path of an encoded output.
func (l *Library) OutputPath(email, name string) string {
	return filepath.Join(l.OutputsDir(email), filepath.Base(name))
}

// ListImages returns the stored names of uploads with a known image
// extension, sorted by name.
func (l *Library) ListImages(email string) ([]string, error) {
	return listByExtension(l.UploadsDir(email), func(ext string) bool {
		return imageExtensions[ext]
	})
}

// ListAudioOutputs returns the names of encoded mp3 files, sorted by
// name.
func (l *Library) ListAudioOutputs(email string) ([]string, error) {
	return listByExtension(l.OutputsDir(email), func(ext string) bool {
		return ext == ".mp3"
	})
}

// RemoveUpload deletes a stored upload. Missing files are not errors.
func (l *Library) RemoveUpload(email, storedName string) error {
	return fileutil.RemoveIfExists(l.UploadPath(email, storedName))
}

// RemoveOutput deletes an encoded output. Missing files are not errors.
func (l *Library) RemoveOutput(email, name string) error {
	return fileutil.RemoveIfExists(l.OutputPath(email, name))
}

// IsImageName reports whether name carries a recognized image
// extension.
func IsImageName(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// StoredName builds a unique on-disk name from an original filename:
// the sanitized base, the upload time in unix milliseconds, and a short
// random token, keeping the original extension.
func StoredName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	base = textutil.SanitizeSegment(base, "file")
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%d_%s%s", base, time.Now().UnixMilli(), token, ext)
}

func listByExtension(dir string, match func(ext string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read media directory %s: %w", dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if match(strings.ToLower(filepath.Ext(entry.Name()))) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// moveFile renames when possible and falls back to copy-and-remove for
// cross-device staging directories.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := fileutil.CopyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}
