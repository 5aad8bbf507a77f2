package attachments

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"taxledger/internal/models"
)

// Export copies every attachment that still exists on disk into a freshly
// created dir. It returns the number of files copied; with nothing to copy the
// directory is not created.
func (m *Manager) Export(ctx context.Context, attachments []models.Attachment, dir string) (int, error) {
	if len(attachments) == 0 {
		return 0, nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return 0, fmt.Errorf("clean export directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create export directory: %w", err)
	}

	copied := 0
	for _, a := range attachments {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		src, err := m.Open(a.URI)
		if err != nil {
			m.log.Warnw("skipping missing receipt during export", "uri", a.URI, "error", err)
			continue
		}
		err = copyTo(src, filepath.Join(dir, displayName(a.Name)))
		src.Close()
		if err != nil {
			return copied, fmt.Errorf("export %s: %w", a.Name, err)
		}
		copied++
	}
	return copied, nil
}

func copyTo(src io.Reader, dest string) error {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// WriteZip streams every existing attachment into a zip archive on w. Entry
// names are the stored file names, so they are unique.
func (m *Manager) WriteZip(ctx context.Context, w io.Writer, attachments []models.Attachment) (int, error) {
	zw := zip.NewWriter(w)
	written := 0
	for _, a := range attachments {
		if err := ctx.Err(); err != nil {
			zw.Close()
			return written, err
		}
		src, err := m.Open(a.URI)
		if err != nil {
			m.log.Warnw("skipping missing receipt in archive", "uri", a.URI, "error", err)
			continue
		}
		entry, err := zw.Create(filepath.Base(src.Name()))
		if err == nil {
			_, err = io.Copy(entry, src)
		}
		src.Close()
		if err != nil {
			zw.Close()
			return written, fmt.Errorf("archive %s: %w", a.Name, err)
		}
		written++
	}
	if err := zw.Close(); err != nil {
		return written, fmt.Errorf("finish archive: %w", err)
	}
	return written, nil
}
