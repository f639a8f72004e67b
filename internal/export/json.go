package export

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/linkdapi/leads-cli/internal/model"
)

// ToJSON writes the record list verbatim as indented JSON and returns the
// written path.
func ToJSON(profiles []model.Profile, outputDir, filename string) (string, error) {
	path, err := resolvePath(outputDir, filename, "linkedin_leads", ".json")
	if err != nil {
		return "", err
	}

	out, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "export: marshal profiles")
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", eris.Wrap(err, "export: write json file")
	}
	return path, nil
}
