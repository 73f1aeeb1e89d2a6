package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tealeg/xlsx"
)

// NewXLSXImporter reads the first worksheet of an Excel workbook using the
// same header layout as the CSV format.
func NewXLSXImporter(r io.ReaderAt, size int64, repo ProductWriter) (*Importer, error) {
	book, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	if len(book.Sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return &Importer{
		reader:      &sheetReader{sheet: book.Sheets[0]},
		productRepo: repo,
	}, nil
}

type sheetReader struct {
	sheet *xlsx.Sheet
	next  int
}

func (s *sheetReader) Read() ([]string, error) {
	if s.next >= len(s.sheet.Rows) {
		return nil, io.EOF
	}
	row := s.sheet.Rows[s.next]
	s.next++
	if row == nil {
		return []string{}, nil
	}
	out := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		if cell != nil {
			out[i] = strings.TrimSpace(cell.String())
		}
	}
	return out, nil
}
