package workbook

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

var delimiters = []rune{';', ',', '\t'}

func readCSV(name string, r io.Reader) ([]Sheet, error) {
	decoded, err := utf8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect charset: %w", err)
	}

	data, err := io.ReadAll(decoded)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	return []Sheet{{Name: name, Rows: rows}}, nil
}

// sniffDelimiter picks the separator that occurs most often on the first line
// carrying any candidate; decimal commas further down are never counted.
// Ties resolve in the order ';', ',', tab.
func sniffDelimiter(data []byte) rune {
	for i, line := range strings.Split(string(data), "\n") {
		if i >= 50 {
			break
		}

		best, bestCount := rune(0), 0

		for _, d := range delimiters {
			if c := strings.Count(line, string(d)); c > bestCount {
				best, bestCount = d, c
			}
		}

		if bestCount > 0 {
			return best
		}
	}

	return ','
}
