package memory

import (
	"log/slog"
	"os"

	"github.com/pkg/errors"
)

// LoadImage reads a ROM dump from disk. The file must be exactly size bytes,
// anything else is refused before it can be mapped.
func LoadImage(path string, size int) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading image %s", path)
	}
	if len(data) != size {
		return nil, errors.Errorf("image %s is %d bytes, expected %d", path, len(data), size)
	}

	slog.Debug("Loaded image", "path", path, "size", len(data))
	return data, nil
}
