package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/linkdapi/leads-cli/internal/model"
)

// ToXLSX writes the same flattened rows as ToCSV into a "Leads" worksheet.
func ToXLSX(profiles []model.Profile, outputDir, filename string) (string, error) {
	if len(profiles) == 0 {
		return "", eris.New("export: no profiles to export")
	}

	path, err := resolvePath(outputDir, filename, "linkedin_leads", ".xlsx")
	if err != nil {
		return "", err
	}

	rows := flattenAll(profiles)
	columns := activeColumns(rows)

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Leads")
	if err != nil {
		return "", eris.Wrap(err, "export: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, col := range columns {
		header.AddCell().SetString(col)
	}
	for _, row := range rows {
		r := sheet.AddRow()
		for _, col := range columns {
			r.AddCell().SetString(row[col])
		}
	}

	if err := file.Save(path); err != nil {
		return "", eris.Wrap(err, "export: save xlsx file")
	}
	return path, nil
}
