// Package export writes discovered profiles to files. Exporters consume the
// final record list only; they have no dependency on the discovery engine.
package export

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// resolvePath builds the output path, generating a timestamped filename when
// none is given and appending ext when missing. Ensures outputDir exists.
func resolvePath(outputDir, filename, stem, ext string) (string, error) {
	if filename == "" {
		filename = stem + "_" + time.Now().Format("20060102_150405") + ext
	}
	if !strings.HasSuffix(filename, ext) {
		filename += ext
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", eris.Wrapf(err, "export: create output dir %s", outputDir)
	}
	return filepath.Join(outputDir, filename), nil
}
