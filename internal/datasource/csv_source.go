package datasource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/daytrade-predictor/internal/logger"
	"github.com/yourusername/daytrade-predictor/internal/models"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// CSVSource reads <DataDir>/<SYMBOL>.csv files with a header row
type CSVSource struct {
	DataDir   string
	logger    logrus.FieldLogger
	validator *BarValidator
}

// NewCSVSource creates a CSV source rooted at dataDir
func NewCSVSource(dataDir string, log logrus.FieldLogger) *CSVSource {
	log = logger.OrDiscard(log)
	return &CSVSource{
		DataDir:   dataDir,
		logger:    log,
		validator: NewBarValidator(log),
	}
}

// Name returns the name of the data source
func (s *CSVSource) Name() string { return "csv" }

// Path returns the file a symbol is read from
func (s *CSVSource) Path(symbol string) string {
	return filepath.Join(s.DataDir, strings.ToUpper(symbol)+".csv")
}

// LoadBars reads symbol's series
func (s *CSVSource) LoadBars(ctx context.Context, symbol string) ([]models.PriceBar, error) {
	return s.LoadFile(ctx, symbol, s.Path(symbol))
}

// LoadFile reads a series from an explicit path
func (s *CSVSource) LoadFile(ctx context.Context, symbol, path string) ([]models.PriceBar, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, models.NewNotFoundError("data file", path)
		}
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	s.logger.WithField("path", path).Info("Loading price data")

	bars, err := ParseBars(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s.validator.Inspect(symbol, bars)
	s.logger.WithFields(logrus.Fields{"path": path, "rows": len(bars)}).Info("Loaded price data")
	return bars, nil
}

// ParseBars decodes a CSV stream whose header names at least the required
// columns. Header names are matched case-insensitively and extra columns are
// ignored.
func ParseBars(ctx context.Context, r io.Reader) ([]models.PriceBar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, models.NewValidationError("csv file is empty")
	}
	if err != nil {
		return nil, models.WrapValidationError("malformed csv header", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	var missing []string
	for _, col := range models.RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, models.NewValidationError("missing required columns: %s", strings.Join(missing, ", "))
	}

	var bars []models.PriceBar
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, models.WrapValidationError(fmt.Sprintf("malformed csv at line %d", line), err)
		}
		if isBlank(record) {
			continue
		}
		bar, err := parseRecord(record, index)
		if err != nil {
			return nil, models.WrapValidationError(fmt.Sprintf("line %d", line), err)
		}
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, models.NewValidationError("csv file has no data rows")
	}
	return bars, nil
}

func parseRecord(record []string, index map[string]int) (models.PriceBar, error) {
	field := func(name string) (string, error) {
		i := index[name]
		if i >= len(record) {
			return "", fmt.Errorf("missing %s value", name)
		}
		return strings.TrimSpace(record[i]), nil
	}

	var bar models.PriceBar
	raw, err := field("date")
	if err != nil {
		return bar, err
	}
	if bar.Date, err = parseDate(raw); err != nil {
		return bar, err
	}

	prices := []struct {
		name string
		dst  *float64
	}{
		{"open", &bar.Open},
		{"high", &bar.High},
		{"low", &bar.Low},
		{"close", &bar.Close},
	}
	for _, p := range prices {
		raw, err := field(p.name)
		if err != nil {
			return bar, err
		}
		if *p.dst, err = strconv.ParseFloat(raw, 64); err != nil {
			return bar, fmt.Errorf("invalid %s %q", p.name, raw)
		}
	}

	raw, err = field("volume")
	if err != nil {
		return bar, err
	}
	volume, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return bar, fmt.Errorf("invalid volume %q", raw)
	}
	bar.Volume = int64(volume)
	return bar, nil
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
