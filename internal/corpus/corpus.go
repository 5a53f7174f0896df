// Package corpus loads the raw document text the retrieval index is built
// over. A neuroscience knowledge base ships embedded in the binary; a file
// path configured by the caller overrides it.
package corpus

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/synaptiq/neurag/internal/domain"
)

//go:embed neuroscience.txt
var defaultCorpus string

// Load returns the corpus text from path, or the embedded default when path
// is empty. Whitespace-only text is rejected so the index build fails fast.
func Load(path string) (string, error) {
	text := defaultCorpus
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return "", fmt.Errorf("read corpus %s: %w", path, err)
		}
		text = string(data)
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("corpus text is empty: %w", domain.ErrInvalidInput)
	}
	return text, nil
}
