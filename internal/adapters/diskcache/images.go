package diskcache

import (
	"os"
	"path/filepath"
	"strconv"
)

const imageExt = ".jpg"

// ImageStore keeps one artwork file per anime id under the images dir.
// Existence of the file is the idempotence marker for downloads.
type ImageStore struct {
	dir string
}

func NewImageStore(dir string) *ImageStore {
	return &ImageStore{dir: filepath.Join(dir, "images")}
}

func (s *ImageStore) Path(id int) string {
	return filepath.Join(s.dir, strconv.Itoa(id)+imageExt)
}

func (s *ImageStore) Has(id int) bool {
	info, err := os.Stat(s.Path(id))
	return err == nil && !info.IsDir()
}

// Write lands the image via temp+rename so a partial download never
// masquerades as a cached one.
func (s *ImageStore) Write(id int, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return writeAtomic(s.Path(id), data)
}
