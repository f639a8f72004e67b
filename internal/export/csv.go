package export

import (
	"encoding/csv"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/linkdapi/leads-cli/internal/model"
)

// ToCSV writes one flattened row per record. A column is included only when
// at least one record has a meaningful value for it; columns are sorted by
// name.
func ToCSV(profiles []model.Profile, outputDir, filename string) (string, error) {
	if len(profiles) == 0 {
		return "", eris.New("export: no profiles to export")
	}

	path, err := resolvePath(outputDir, filename, "linkedin_leads", ".csv")
	if err != nil {
		return "", err
	}

	rows := flattenAll(profiles)
	columns := activeColumns(rows)

	f, err := os.Create(path)
	if err != nil {
		return "", eris.Wrap(err, "export: create csv file")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return "", eris.Wrap(err, "export: write csv header")
	}
	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return "", eris.Wrap(err, "export: write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", eris.Wrap(err, "export: flush csv")
	}
	return path, nil
}

func flattenAll(profiles []model.Profile) []map[string]string {
	rows := make([]map[string]string, len(profiles))
	for i, p := range profiles {
		rows[i] = flattenProfile(p)
	}
	return rows
}

// flattenProfile reduces nested structures to scalar or joined-string
// fields: first 3 languages, current position, first 10 skills, first
// education.
func flattenProfile(p model.Profile) map[string]string {
	row := map[string]string{
		"id":             p.ID.String(),
		"urn":            p.URN,
		"username":       p.Username,
		"firstName":      p.FirstName,
		"lastName":       p.LastName,
		"headline":       p.Headline,
		"summary":        p.Summary,
		"isCreator":      strconv.FormatBool(p.IsCreator),
		"isPremium":      strconv.FormatBool(p.IsPremium),
		"profilePicture": p.ProfilePicture,
		"depth_level":    strconv.Itoa(p.DepthLevel),
		"source_urn":     p.SourceURN,
		"location":       p.Geo.Full,
		"country":        p.Geo.Country,
		"city":           p.Geo.City,
	}

	if len(p.Languages) > 0 {
		names := make([]string, 0, 3)
		for _, l := range p.Languages {
			if len(names) == 3 {
				break
			}
			names = append(names, l.Name)
		}
		row["languages"] = strings.Join(names, ", ")
	}

	if pos := p.CurrentPosition(); pos != nil {
		row["current_title"] = pos.Title
		row["current_company"] = pos.CompanyName
		row["current_company_url"] = pos.CompanyURL
	}

	if len(p.Skills) > 0 {
		names := make([]string, 0, 10)
		for _, s := range p.Skills {
			if len(names) == 10 {
				break
			}
			names = append(names, s.Name)
		}
		row["skills"] = strings.Join(names, ", ")
	}

	if len(p.Educations) > 0 {
		row["education"] = p.Educations[0].SchoolName
	}

	return row
}

// activeColumns returns the sorted set of columns carrying a meaningful
// value in at least one row. "0" and "false" count as empty so flag and
// depth columns drop out when no record sets them, matching the loose
// truthiness of the exported upstream format.
func activeColumns(rows []map[string]string) []string {
	active := make(map[string]bool)
	for _, row := range rows {
		for col, val := range row {
			if val != "" && val != "0" && val != "false" {
				active[col] = true
			}
		}
	}

	columns := make([]string, 0, len(active))
	for col := range active {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}
