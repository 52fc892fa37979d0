package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kits-erp/marks-registry/internal/models"
)

const templateSheet = "Marks"

// TemplateHeader is the column layout the upload parser expects for c.
func TemplateHeader(c models.Component) []string {
	if c == models.CIE {
		return []string{"id", "marks", "attendance"}
	}
	return []string{"id", "marks"}
}

// UploadTemplate builds a blank marks sheet for one subject component with
// one row per student id. The maximum is noted beside the header.
func UploadTemplate(s models.Subject, c models.Component, studentIDs []string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", templateSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := TemplateHeader(c)
	if err := f.SetSheetRow(templateSheet, "A1", &header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, id := range studentIDs {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetCellStr(templateSheet, cell, id); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	if err := ApplyDefaultExcelFormatting(f, templateSheet); err != nil {
		_ = f.Close()
		return nil, err
	}

	note := fmt.Sprintf("%s %s, max %g", s.Code, strings.ToUpper(string(c)), s.MaxFor(c))
	if c == models.ESE {
		note += ", AB for absent"
	}
	noteCell := columnName(len(header)+2) + "1"
	if err := f.SetCellStr(templateSheet, noteCell, note); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("set note: %w", err)
	}
	return f, nil
}

// TemplateFilename is a file name like "CE101 ESE marks.xlsx".
func TemplateFilename(s models.Subject, c models.Component) string {
	return sanitizeFileName(fmt.Sprintf("%s %s marks.xlsx", s.Code, strings.ToUpper(string(c))))
}
