package backend

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ProbePageCount inspects a local file for a page count before the backend
// reports the authoritative one. Only PDFs can be probed; everything else
// returns 0 and the caller falls back to its own provisional guess.
func ProbePageCount(path string) (int, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return 0, nil
	}
	file, reader, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("probe %q: %w", path, err)
	}
	defer file.Close()
	return reader.NumPage(), nil
}
