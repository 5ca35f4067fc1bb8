package upload

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// MaxImageBytes is the upload size cap (5 MiB).
const MaxImageBytes = 5 << 20

const (
	thumbMaxWidth  = 800
	thumbMaxHeight = 600
)

var ErrUnsupportedType = errors.New("unsupported image type")

var extByMIME = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// Store writes uploaded images to local disk and exposes them by URL path.
type Store struct {
	baseDir string
	baseURL string
}

func NewStore(baseDir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	return &Store{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (s *Store) Dir() string {
	return s.baseDir
}

type SavedImage struct {
	Filename     string `json:"filename"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
	ContentType  string `json:"contentType"`
	Size         int    `json:"size"`
}

// SaveImage sniffs the content type, persists the original bytes and a
// thumbnail fitted inside 800x600. The declared filename is only used for
// logging by callers; stored names are generated.
func (s *Store) SaveImage(data []byte) (SavedImage, error) {
	contentType := http.DetectContentType(data)
	ext, ok := extByMIME[contentType]
	if !ok {
		return SavedImage{}, ErrUnsupportedType
	}

	name := uuid.NewString()
	originalName := name + ext
	if err := os.WriteFile(filepath.Join(s.baseDir, originalName), data, 0o644); err != nil {
		return SavedImage{}, err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return SavedImage{}, ErrUnsupportedType
	}
	thumb := imaging.Fit(img, thumbMaxWidth, thumbMaxHeight, imaging.Lanczos)
	thumbName := name + "_thumb.jpg"
	if err := imaging.Save(thumb, filepath.Join(s.baseDir, thumbName)); err != nil {
		return SavedImage{}, err
	}

	return SavedImage{
		Filename:     originalName,
		URL:          path.Join(s.baseURL, originalName),
		ThumbnailURL: path.Join(s.baseURL, thumbName),
		ContentType:  contentType,
		Size:         len(data),
	}, nil
}
