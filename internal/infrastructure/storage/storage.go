package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"plotsure-backend/internal/pkg/apperr"

	"github.com/google/uuid"
)

// Category decides which MIME types and size ceiling apply to an upload.
type Category string

const (
	CategoryDocument Category = "documents"
	CategoryImage    Category = "images"
	CategoryVideo    Category = "videos"
)

type rule struct {
	maxBytes int64
	types    map[string]string // MIME type -> extension
}

var rules = map[Category]rule{
	CategoryDocument: {
		maxBytes: 10 << 20,
		types: map[string]string{
			"application/pdf":    ".pdf",
			"application/msword": ".doc",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
			"image/jpeg": ".jpg",
			"image/png":  ".png",
		},
	},
	CategoryImage: {
		maxBytes: 5 << 20,
		types: map[string]string{
			"image/jpeg": ".jpg",
			"image/png":  ".png",
			"image/gif":  ".gif",
			"image/webp": ".webp",
		},
	},
	CategoryVideo: {
		maxBytes: 50 << 20,
		types: map[string]string{
			"video/mp4":       ".mp4",
			"video/mpeg":      ".mpeg",
			"video/quicktime": ".mov",
			"video/webm":      ".webm",
		},
	},
}

// StoredFile describes a persisted upload.
type StoredFile struct {
	Path     string
	Name     string
	Size     int64
	MimeType string
}

// Store saves and removes uploaded files.
type Store interface {
	Save(category Category, file *multipart.FileHeader) (*StoredFile, error)
	Remove(path string) error
}

// DiskStore writes uploads under Root/<category>/ with uuid-suffixed names.
type DiskStore struct {
	Root string
}

func NewDiskStore(root string) *DiskStore {
	return &DiskStore{Root: root}
}

func (d *DiskStore) Save(category Category, file *multipart.FileHeader) (*StoredFile, error) {
	r, ok := rules[category]
	if !ok {
		return nil, apperr.Validation("Unknown upload category")
	}
	if file.Size > r.maxBytes {
		return nil, apperr.Validation(fmt.Sprintf("File exceeds the %dMB limit", r.maxBytes>>20))
	}
	mimeType := file.Header.Get("Content-Type")
	ext, ok := r.types[mimeType]
	if !ok {
		return nil, apperr.Validation("File type " + mimeType + " is not allowed")
	}

	dir := filepath.Join(d.Root, string(category))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.Internal(err)
	}

	base := strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename))
	base = sanitize(base)
	name := fmt.Sprintf("%s-%s%s", base, uuid.NewString()[:8], ext)
	dst := filepath.Join(dir, name)

	src, err := file.Open()
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer out.Close()

	written, err := io.Copy(out, src)
	if err != nil {
		os.Remove(dst)
		return nil, apperr.Internal(err)
	}

	return &StoredFile{
		Path:     dst,
		Name:     file.Filename,
		Size:     written,
		MimeType: mimeType,
	}, nil
}

// Remove deletes a stored file, refusing paths outside the root.
func (d *DiskStore) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	root, err := filepath.Abs(d.Root)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return fmt.Errorf("path %q is outside the upload root", path)
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		s = "file"
	}
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}
