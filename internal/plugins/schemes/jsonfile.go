package schemes

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// fileCatalog serves the bundled scheme catalog from a JSON file on disk.
// It backs the repository when the database is unreachable or empty, so a
// fresh deployment still answers catalog queries.
type fileCatalog struct {
	path string

	once    sync.Once
	schemes []Scheme
	loadErr error
}

func newFileCatalog(path string) *fileCatalog {
	return &fileCatalog{path: path}
}

// Load reads and parses the catalog file once; later calls return the
// cached result. The file is static for the lifetime of the process.
func (f *fileCatalog) Load() ([]Scheme, error) {
	f.once.Do(func() {
		data, err := os.ReadFile(f.path)
		if err != nil {
			f.loadErr = fmt.Errorf("reading scheme catalog %s: %w", f.path, err)
			return
		}
		if err := json.Unmarshal(data, &f.schemes); err != nil {
			f.loadErr = fmt.Errorf("parsing scheme catalog %s: %w", f.path, err)
		}
	})
	return f.schemes, f.loadErr
}

// Filter returns catalog entries matching the filter, applied in memory.
func (f *fileCatalog) Filter(filter ListFilter) ([]Scheme, error) {
	all, err := f.Load()
	if err != nil {
		return nil, err
	}

	var out []Scheme
	for i := range all {
		if !filter.Matches(&all[i]) {
			continue
		}
		out = append(out, all[i])
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	if out == nil {
		out = []Scheme{}
	}
	return out, nil
}
