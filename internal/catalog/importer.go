package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/tapspeak/internal/database"
	"github.com/example/tapspeak/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath          string // Path to the Excel or CSV file
	IDColumn          string // Column with the word id (optional, derived from label when empty)
	LabelColumn       string // Column with the word label
	TranslationColumn string // Column with the translation
	TopicColumn       string // Column with the topic
	SheetName         string // Name of the sheet to import
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		IDColumn:          "A",
		LabelColumn:       "B",
		TranslationColumn: "C",
		TopicColumn:       "D",
		SheetName:         "Sheet1",
		StartRow:          2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// ImportWords imports catalog entries from an Excel or CSV file and upserts
// them into the word catalog. Progress records are untouched; they spring
// into existence on first reference.
func ImportWords(config ImportConfig, wordRepo *database.WordRepository) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))

	if ext == ".csv" {
		return importFromCSV(config, wordRepo)
	}

	return importFromExcel(config, wordRepo)
}

// importFromExcel imports catalog entries from an Excel file
func importFromExcel(config ImportConfig, wordRepo *database.WordRepository) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	result := &ImportResult{
		Errors: make([]string, 0),
	}

	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}

		result.TotalProcessed++

		if err := processRow(row, config, wordRepo, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}

	return result, nil
}

// importFromCSV imports catalog entries from a CSV file. Columns follow the
// same order as the Excel layout.
func importFromCSV(config ImportConfig, wordRepo *database.WordRepository) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	result := &ImportResult{
		Errors: make([]string, 0),
	}

	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}

		rowNum++

		// Skip header rows
		if rowNum < config.StartRow {
			continue
		}

		result.TotalProcessed++

		if err := processRow(row, config, wordRepo, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}

	return result, nil
}

// processRow upserts a single row into the catalog
func processRow(row []string, config ImportConfig, wordRepo *database.WordRepository, result *ImportResult) error {
	var id, label, translation, topic string

	if colIdx := columnToIndex(config.IDColumn); colIdx >= 0 && colIdx < len(row) {
		id = strings.TrimSpace(row[colIdx])
	}
	if colIdx := columnToIndex(config.LabelColumn); colIdx >= 0 && colIdx < len(row) {
		label = strings.TrimSpace(row[colIdx])
	}
	if colIdx := columnToIndex(config.TranslationColumn); colIdx >= 0 && colIdx < len(row) {
		translation = strings.TrimSpace(row[colIdx])
	}
	if colIdx := columnToIndex(config.TopicColumn); colIdx >= 0 && colIdx < len(row) {
		topic = strings.TrimSpace(row[colIdx])
	}

	if label == "" {
		result.Skipped++
		return nil
	}
	if id == "" {
		id = slugify(label)
	}

	created, err := wordRepo.Upsert(&models.Word{
		ID:          id,
		Label:       label,
		Translation: translation,
		Topic:       topic,
	})
	if err != nil {
		return err
	}
	if created {
		result.Created++
	} else {
		result.Updated++
	}
	return nil
}

// slugify derives a stable word id from a label.
func slugify(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = strings.Join(strings.Fields(s), "-")
	return s
}

// columnToIndex converts an Excel column letter ("A", "B", ... "AA") to a
// zero-based index. Returns -1 for an empty or invalid column.
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	if column == "" {
		return -1
	}
	idx := 0
	for _, c := range column {
		if c < 'A' || c > 'Z' {
			return -1
		}
		idx = idx*26 + int(c-'A') + 1
	}
	return idx - 1
}
