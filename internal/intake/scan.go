package intake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"media-gallery/internal/filesystem"
	"media-gallery/internal/logging"
	"media-gallery/internal/normalizer"
)

var log = logging.For("intake")

// ScanDir returns an input for every visible regular file below root.
// Hidden files and directories (leading dot) are skipped. Files whose type
// cannot be determined are still returned with the sniffed type so the
// normalizer can drop them.
func ScanDir(ctx context.Context, root string, retry filesystem.RetryConfig) ([]normalizer.Input, error) {
	info, err := filesystem.StatWithRetry(root, retry)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	base := filepath.Base(filepath.Clean(root))
	var inputs []normalizer.Input

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if p == root {
				return walkErr
			}
			log.Warn("skipping %s: %v", p, walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if p != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		in, err := fileInput(root, base, p, retry)
		if err != nil {
			log.Warn("skipping %s: %v", p, err)
			return nil
		}
		inputs = append(inputs, in)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	log.Info("scanned %s: %d files", root, len(inputs))
	return inputs, nil
}

func fileInput(root, base, p string, retry filesystem.RetryConfig) (normalizer.Input, error) {
	info, err := filesystem.StatWithRetry(p, retry)
	if err != nil {
		return normalizer.Input{}, err
	}

	rel, err := filepath.Rel(root, p)
	if err != nil {
		return normalizer.Input{}, err
	}

	contentType := TypeByExtension(p)
	if contentType == "" {
		contentType, err = sniffFile(p, retry)
		if err != nil {
			return normalizer.Input{}, err
		}
	}

	return normalizer.Input{
		ContentType:  contentType,
		Name:         info.Name(),
		LastModified: info.ModTime().UnixMilli(),
		Size:         info.Size(),
		RelativePath: filepath.ToSlash(filepath.Join(base, rel)),
		Open: func() (io.ReadCloser, error) {
			return filesystem.OpenWithRetry(p, retry)
		},
	}, nil
}

func sniffFile(p string, retry filesystem.RetryConfig) (string, error) {
	f, err := filesystem.OpenWithRetry(p, retry)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read header: %w", err)
	}
	return Sniff(head[:n]), nil
}
