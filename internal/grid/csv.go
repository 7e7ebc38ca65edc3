package grid

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/derekprior/wcsched/internal/config"
	"github.com/derekprior/wcsched/internal/schedule"
)

// ReadCSV decodes a schedule table from CSV.
func ReadCSV(r io.Reader, t *config.Tournament, opts ...Option) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return Decode(rows, t, opts...)
}

// ReadCSVFile opens path and decodes it with ReadCSV.
func ReadCSVFile(path string, t *config.Tournament, opts ...Option) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening schedule: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, t, opts...)
}

// WriteCSV encodes s as a schedule table.
func WriteCSV(w io.Writer, s *schedule.Schedule, t *config.Tournament) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(Rows(s, t)); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}
