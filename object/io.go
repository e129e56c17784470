package object

import (
	"bytes"
	"os"

	"github.com/edsrzf/mmap-go"
)

// SaveToFile writes f to path, creating or truncating it.
func SaveToFile(f *File, path string) error {
	file, err := os.Create(path)
	if err != nil {
		if os.IsPermission(err) {
			return wrapf(KindPermissionDenied, err, "creating %s", path)
		}
		return wrapf(KindIoError, err, "creating %s", path)
	}
	defer file.Close()
	if _, err := f.WriteTo(file); err != nil {
		return err
	}
	return nil
}

// LoadFromFile reads an Orion object file from path. The file is
// memory-mapped read-only rather than copied into a fresh buffer, the
// same zero-copy pattern a PE reader uses to avoid paying for a full-file
// read before the magic bytes are even checked (the "Operations
// exposed": load-from-file).
func LoadFromFile(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, wrapf(KindFileNotFound, err, "opening %s", path)
		}
		if os.IsPermission(err) {
			return nil, wrapf(KindPermissionDenied, err, "opening %s", path)
		}
		return nil, wrapf(KindIoError, err, "opening %s", path)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, wrapf(KindIoError, err, "statting %s", path)
	}
	if info.Size() < HeaderSize {
		return nil, errf(KindBufferTooSmall, "%s is smaller than the object header", path)
	}

	m, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		// Some filesystems (tmpfs edge cases, zero-length special files)
		// reject mmap; fall back to an in-memory copy rather than failing
		// a load that a plain read would have satisfied.
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil, wrapf(KindIoError, rerr, "reading %s", path)
		}
		return ReadFrom(bytes.NewReader(data), int64(len(data)))
	}
	defer m.Unmap()

	return ReadFrom(bytes.NewReader(m), int64(len(m)))
}
