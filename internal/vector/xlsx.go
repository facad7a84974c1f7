package vector

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// LoadTrainingXLSX reads labeled training points from a spreadsheet. The
// first sheet must have a header row with id, x, y and type columns
// (case-insensitive, any order). Rows with a missing coordinate or label
// are skipped.
func LoadTrainingXLSX(path string) ([]Feature, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "vector: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("vector: no sheets in %s", path)
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) < 2 {
		return nil, eris.Errorf("vector: no data rows in %s", path)
	}

	// Header row → column indexes.
	colIdx := make(map[string]int)
	for j, cell := range sheet.Rows[0].Cells {
		colIdx[strings.ToLower(strings.TrimSpace(cell.String()))] = j
	}
	for _, col := range []string{"id", "x", "y", "type"} {
		if _, ok := colIdx[col]; !ok {
			return nil, eris.Errorf("vector: xlsx %s is missing column %q", path, col)
		}
	}

	cellAt := func(row *xlsx.Row, col string) string {
		j := colIdx[col]
		if j >= len(row.Cells) {
			return ""
		}
		return strings.TrimSpace(row.Cells[j].String())
	}

	var features []Feature
	var skipped int
	for i, row := range sheet.Rows {
		if i == 0 {
			continue
		}
		xs, ys := cellAt(row, "x"), cellAt(row, "y")
		label := cellAt(row, "type")
		if xs == "" || ys == "" || label == "" {
			skipped++
			continue
		}
		x, errX := strconv.ParseFloat(xs, 64)
		y, errY := strconv.ParseFloat(ys, 64)
		if errX != nil || errY != nil {
			skipped++
			continue
		}
		id := cellAt(row, "id")
		if id == "" {
			id = strconv.Itoa(i)
		}
		features = append(features, Feature{
			ID:    id,
			Label: label,
			Geom:  geom.NewPointFlat(geom.XY, []float64{x, y}),
		})
	}
	if skipped > 0 {
		zap.L().Debug("vector: skipped xlsx rows", zap.String("path", path), zap.Int("skipped", skipped))
	}
	if len(features) == 0 {
		return nil, eris.Errorf("vector: no usable training rows in %s", path)
	}
	return features, nil
}
