package persist

import (
	"github.com/peterbourgon/diskv/v3"
)

// DiskStore implements KV over a diskv directory.
type DiskStore struct {
	d *diskv.Diskv
}

// NewDiskStore opens (or creates) a diskv store rooted at basePath.
func NewDiskStore(basePath string) *DiskStore {
	return &DiskStore{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			Transform:    flatTransform,
			CacheSizeMax: 1024 * 1024, // 1MB
		}),
	}
}

func flatTransform(string) []string { return []string{} }

func (s *DiskStore) Get(key string) ([]byte, error) {
	return s.d.Read(key)
}

func (s *DiskStore) Set(key string, value []byte) error {
	return s.d.Write(key, value)
}

func (s *DiskStore) Remove(key string) error {
	return s.d.Erase(key)
}
