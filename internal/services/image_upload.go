package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofrs/uuid"
)

// Vector formats can carry scripts and are served from the site's origin,
// so only raster images are accepted.
var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp"}

var (
	ErrNotAnImage    = errors.New("upload a valid image: the file is either not an image or corrupted")
	ErrImageTooLarge = errors.New("image is too large")
)

// PostImageDir is the media subdirectory post images are written to.
const PostImageDir = "posts"

// ImageStorage writes uploaded images below a media root on local disk.
type ImageStorage struct {
	root    string
	maxSize int64
}

func NewImageStorage(root string, maxSize int64) *ImageStorage {
	return &ImageStorage{root: root, maxSize: maxSize}
}

// SaveImage validates the upload and stores it under posts/<uuid><ext>.
// The returned name is relative to the media root, slash separated.
func (s *ImageStorage) SaveImage(header *multipart.FileHeader) (string, error) {
	if s.maxSize > 0 && header.Size > s.maxSize {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrImageTooLarge, header.Size, s.maxSize)
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("detect image type: %w", err)
	}
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return "", ErrNotAnImage
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	// Extension follows the detected type, the client file name is not trusted.
	ext := mtype.Extension()
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(header.Filename))
	}
	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("generate image name: %w", err)
	}
	name := path.Join(PostImageDir, id.String()+ext)

	dir := filepath.Join(s.root, PostImageDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	dst, err := os.Create(filepath.Join(s.root, filepath.FromSlash(name)))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close image: %w", err)
	}
	return name, nil
}

// DeleteImage removes a previously saved image. A missing file is not an error.
func (s *ImageStorage) DeleteImage(name string) error {
	if name == "" {
		return nil
	}
	clean := path.Clean("/" + name)[1:]
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete image %s: %w", name, err)
	}
	return nil
}
