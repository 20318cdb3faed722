package repositories

import (
	"context"
	"cruise-status-service/internal/domain"
	"cruise-status-service/internal/platform/obs"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// CSV-backed implementation of the ScheduleRepository port. The file is read
// on every call so edits show up without a restart.
type CSVScheduleRepository struct {
	Path string
}

func NewCSVScheduleRepository(path string) *CSVScheduleRepository {
	return &CSVScheduleRepository{Path: path}
}

func (c *CSVScheduleRepository) ListRows(ctx context.Context) (_ []domain.ScheduleRow, err error) {
	defer obs.Time(ctx, "csv.ListRows")(&err)

	if strings.TrimSpace(c.Path) == "" {
		return nil, errors.New("csv schedule repository: path is empty")
	}

	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("list rows: open %q: %w", c.Path, err)
	}
	defer f.Close()

	rows, err := ReadRows(f)
	if err != nil {
		return nil, fmt.Errorf("list rows: %q: %w", c.Path, err)
	}
	return rows, nil
}

// ReadRows parses schedule rows from CSV with a header line. Header names are
// matched case-insensitively; absent columns leave the field empty. Rows
// without a ship name are kept and dropped later by grouping.
func ReadRows(r io.Reader) ([]domain.ScheduleRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := makeIndex(headers)

	rows := make([]domain.ScheduleRow, 0, 64)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if blank(record) {
			continue
		}

		rows = append(rows, domain.ScheduleRow{
			Ship:      getField(record, idx, "ship"),
			Port:      getField(record, idx, "port"),
			Country:   getField(record, idx, "country"),
			Date:      getField(record, idx, "date"),
			Arrival:   getField(record, idx, "arrival"),
			Departure: getField(record, idx, "departure"),
			Timezone:  getField(record, idx, "timezone"),
		})
	}

	return rows, nil
}

func makeIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimPrefix(h, "\ufeff")
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

func getField(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
