// Package attachments manages receipt files kept in the app-private receipts
// directory: copying them in, sniffing their type and removing them again.
package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"taxledger/internal/models"
	"taxledger/internal/uuid"
)

// ErrOutsideDir is returned for paths that do not live in the receipts
// directory.
var ErrOutsideDir = errors.New("path is outside the receipts directory")

var (
	imageExt        = regexp.MustCompile(`\.(jpg|jpeg|png|gif|webp|heic)$`)
	unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

// Manager owns the receipts directory.
type Manager struct {
	dir string
	log *zap.SugaredLogger
	now func() time.Time
}

// NewManager creates the receipts directory if needed.
func NewManager(dir string, log *zap.SugaredLogger) (*Manager, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve receipts directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create receipts directory: %w", err)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Manager{dir: abs, log: log, now: time.Now}, nil
}

// Dir returns the absolute receipts directory.
func (m *Manager) Dir() string { return m.dir }

// SaveFile copies the file at src into the receipts directory.
func (m *Manager) SaveFile(ctx context.Context, src, name, mimeType string) (models.Attachment, error) {
	f, err := os.Open(src)
	if err != nil {
		return models.Attachment{}, fmt.Errorf("open source file: %w", err)
	}
	defer f.Close()

	if name == "" {
		name = filepath.Base(src)
	}
	return m.Save(ctx, f, name, mimeType)
}

// Save copies r into the receipts directory under a timestamp-prefixed name
// and describes the stored copy. When mimeType is empty it is sniffed from
// the content.
func (m *Manager) Save(ctx context.Context, r io.Reader, name, mimeType string) (models.Attachment, error) {
	if err := ctx.Err(); err != nil {
		return models.Attachment{}, err
	}

	display := displayName(name)
	f, err := m.createUnique(display)
	if err != nil {
		return models.Attachment{}, err
	}
	dest := f.Name()

	size, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dest)
		m.log.Errorw("failed to save receipt file", "name", display, "error", err)
		return models.Attachment{}, fmt.Errorf("copy receipt: %w", err)
	}

	if mimeType == "" {
		if mt, err := mimetype.DetectFile(dest); err == nil {
			mimeType = mt.String()
		}
	}
	// parameters such as "; charset=utf-8" are not useful on a receipt
	mimeType, _, _ = strings.Cut(mimeType, ";")

	att := models.Attachment{
		ID:       uuid.New(),
		URI:      dest,
		Name:     display,
		Type:     FileType(display, mimeType),
		Size:     &size,
		MimeType: mimeType,
	}
	m.log.Infow("receipt saved", "id", att.ID, "uri", att.URI, "size", size, "type", att.Type)
	return att, nil
}

// createUnique opens a new file named <unix millis>_<name>, adding a counter
// when that name is already taken.
func (m *Manager) createUnique(name string) (*os.File, error) {
	prefix := fmt.Sprintf("%d_", m.now().UnixMilli())
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i < 100; i++ {
		candidate := prefix + name
		if i > 0 {
			candidate = fmt.Sprintf("%s%s-%d%s", prefix, stem, i, ext)
		}
		f, err := os.OpenFile(filepath.Join(m.dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create receipt file: %w", err)
		}
	}
	return nil, fmt.Errorf("create receipt file: too many files named %q", name)
}

// Owns reports whether uri points at a file directly inside the receipts
// directory.
func (m *Manager) Owns(uri string) bool {
	_, err := m.resolve(uri)
	return err == nil
}

func (m *Manager) resolve(uri string) (string, error) {
	path := strings.TrimPrefix(uri, "file://")
	if path == "" {
		return "", ErrOutsideDir
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.dir, path)
	}
	path = filepath.Clean(path)
	if filepath.Dir(path) != m.dir {
		return "", ErrOutsideDir
	}
	return path, nil
}

// Path resolves a stored file name or uri to its absolute path.
func (m *Manager) Path(uri string) (string, error) {
	return m.resolve(uri)
}

// Open opens a stored receipt for reading.
func (m *Manager) Open(uri string) (*os.File, error) {
	path, err := m.resolve(uri)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// FileSize returns the size of a stored receipt, or false if it cannot be
// read.
func (m *Manager) FileSize(uri string) (int64, bool) {
	path, err := m.resolve(uri)
	if err != nil {
		return 0, false
	}
	info, err := os.Stat(path)
	if err != nil {
		m.log.Warnw("failed to stat receipt", "uri", uri, "error", err)
		return 0, false
	}
	return info.Size(), true
}

// Delete removes a stored receipt. A file that is already gone is not an
// error; every other failure is logged and swallowed so the caller's own
// delete can proceed.
func (m *Manager) Delete(ctx context.Context, uri string) {
	path, err := m.resolve(uri)
	if err != nil {
		m.log.Warnw("refusing to delete receipt", "uri", uri, "error", err)
		return
	}
	if err := ctx.Err(); err != nil {
		m.log.Warnw("receipt delete skipped", "uri", uri, "error", err)
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		m.log.Errorw("error deleting receipt file", "uri", uri, "error", err)
		return
	}
	m.log.Debugw("receipt deleted", "uri", uri)
}

// DeleteAll removes every file referenced by attachments.
func (m *Manager) DeleteAll(ctx context.Context, attachments []models.Attachment) {
	for _, a := range attachments {
		m.Delete(ctx, a.URI)
	}
}

// FileType classifies a file by extension, falling back to its MIME type.
func FileType(uri, mimeType string) models.AttachmentType {
	lowerURI := strings.ToLower(uri)
	lowerMime := strings.ToLower(mimeType)

	if imageExt.MatchString(lowerURI) || strings.HasPrefix(lowerMime, "image/") {
		return models.AttachmentTypeImage
	}
	if strings.HasSuffix(lowerURI, ".pdf") || lowerMime == "application/pdf" {
		return models.AttachmentTypePDF
	}
	return models.AttachmentTypeDocument
}

// FormatFileSize renders a byte count as B, KB or MB with one decimal.
// Zero renders as an empty string.
func FormatFileSize(bytes int64) string {
	switch {
	case bytes <= 0:
		return ""
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
}

// SanitizeName replaces every run of characters outside [A-Za-z0-9._-] with
// an underscore.
func SanitizeName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}

func displayName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "receipt"
	}
	return SanitizeName(base)
}
