package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateArtifactPath checks the location of the intermediate bundle
// input. The file is deleted and rewritten on every sync, so the path must
// not name a directory and its extension must be one the bundler loads.
func ValidateArtifactPath(path, extension string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("path contains a NUL byte")
	}

	if filepath.Ext(path) != extension {
		return fmt.Errorf("path must end in %s", extension)
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("path is a directory: %s", path)
	}

	return nil
}
