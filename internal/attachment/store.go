package attachment

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// PDFMediaType is the only media type accepted for receipts.
const PDFMediaType = "application/pdf"

var ErrUnsupportedMediaType = errors.New("only PDF files are allowed")

// Store keeps cost receipts on durable storage. Filenames returned by
// StoreReceipt are opaque stable tokens; the Cost row records them verbatim.
type Store interface {
	StoreReceipt(projectID, taskID int, content io.Reader, mediaType string) (string, error)
	Delete(filename string) error
	Dir() string
}

// DiskStore writes receipts into a single flat directory.
type DiskStore struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

func NewDiskStore(dir string, logger *slog.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create attachment dir: %w", err)
	}
	return &DiskStore{
		dir:    dir,
		now:    time.Now,
		logger: logger,
	}, nil
}

func (s *DiskStore) Dir() string {
	return s.dir
}

// StoreReceipt writes content to cost_{projectID}_{taskID}_{unix}.pdf and
// returns the filename. Two uploads for the same project/task within the same
// second overwrite each other; callers accept that limitation.
func (s *DiskStore) StoreReceipt(projectID, taskID int, content io.Reader, mediaType string) (string, error) {
	if mediaType != PDFMediaType {
		return "", ErrUnsupportedMediaType
	}

	name := fmt.Sprintf("cost_%d_%d_%d.pdf", projectID, taskID, s.now().UTC().Unix())
	dest := filepath.Join(s.dir, name)

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create attachment file: %w", err)
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(dest)
		return "", fmt.Errorf("failed to write attachment file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("failed to write attachment file: %w", err)
	}

	s.logger.Info("stored receipt attachment", "filename", name)
	return name, nil
}

// Delete removes the named receipt. A file that is already gone is not an
// error: a recorded filename may outlive its file (manual cleanup, prior
// partial failure) and callers must be able to delete blindly.
func (s *DiskStore) Delete(filename string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(filename)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete attachment file: %w", err)
	}
	return nil
}
