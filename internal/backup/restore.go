package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// maxExtractSize caps per-file extraction to block decompression bombs.
const maxExtractSize = 10 << 30 // 10 GiB

// Restore extracts a backup archive into targetDir. Existing files abort
// the restore unless force is set, and archives without a database file
// are rejected.
func Restore(_ context.Context, archivePath, targetDir string, force bool) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("decompressing archive: %w", err)
	}
	defer gr.Close()

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("creating target directory: %w", err)
	}

	tr := tar.NewReader(gr)
	foundDB := false

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading archive entry: %w", err)
		}

		dest, err := entryDest(hdr.Name, targetDir)
		if err != nil {
			return err
		}

		if strings.HasSuffix(hdr.Name, ".db") {
			foundDB = true
		}

		if !force {
			if _, err := os.Stat(dest); err == nil {
				return fmt.Errorf("file already exists (use --force to overwrite): %s", dest)
			}
		}

		if err := extractEntry(tr, dest, hdr); err != nil {
			return fmt.Errorf("extracting %s: %w", hdr.Name, err)
		}
	}

	if !foundDB {
		return fmt.Errorf("invalid backup: archive does not contain a .db file")
	}
	return nil
}

// entryDest resolves an archive entry to a path inside targetDir,
// rejecting absolute names and traversal sequences.
func entryDest(name, targetDir string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("path traversal detected: absolute path %q", name)
	}

	cleaned := filepath.Clean(name)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected: %q", name)
	}

	absTarget, err := filepath.Abs(targetDir)
	if err != nil {
		return "", fmt.Errorf("resolving target directory: %w", err)
	}
	dest := filepath.Join(absTarget, cleaned)
	if dest != absTarget && !strings.HasPrefix(dest, absTarget+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected: %q resolves outside target", name)
	}
	return dest, nil
}

// extractEntry writes one tar entry to disk. Entry types other than
// files and directories (symlinks, devices) are skipped.
func extractEntry(tr *tar.Reader, dest string, hdr *tar.Header) error {
	mode := os.FileMode(hdr.Mode & 0o777) //nolint:gosec // mode masked to permission bits

	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(dest, mode)
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
		if err != nil {
			return err
		}
		defer out.Close()

		_, err = io.Copy(out, io.LimitReader(tr, maxExtractSize))
		return err
	default:
		return nil
	}
}
