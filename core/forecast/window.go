package forecast

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"asset-prediction-orchestrator/core/models"
)

// SeriesRow is one parsed row of a raw asset series
type SeriesRow struct {
	Date  string
	Time  time.Time
	Value float64
}

// Windows is the result of the window computation: the inference input and
// the observed slice shown alongside the prediction
type Windows struct {
	TargetHistory []SeriesRow
	DisplayWindow []models.SeriesPoint
}

const dateLayout = "2006-01-02"

// ParseSeriesCSV parses a "date,value" CSV with a header line into rows.
// Dates are ascending, one value per day, gaps allowed.
func ParseSeriesCSV(data []byte) ([]SeriesRow, error) {
	lines := strings.Split(string(data), "\n")
	if len(lines) > 0 {
		// header
		lines = lines[1:]
	}

	rows := make([]SeriesRow, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ",", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed series row %q", line)
		}

		dateStr := strings.TrimSpace(parts[0])
		ts, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("malformed series date %q: %w", dateStr, err)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed series value in %q: %w", line, err)
		}

		rows = append(rows, SeriesRow{Date: dateStr, Time: ts, Value: value})
	}
	return rows, nil
}

// BuildWindows computes the inference target history and the clamped display
// window around the training end. Pure and deterministic: same inputs always
// produce the same output.
func BuildWindows(rows []SeriesRow, trainingStart, trainingEnd time.Time, contextLength, predictionLength int) (*Windows, error) {
	var targetHistory []SeriesRow
	trainingEndIdx := -1

	prevBeforeEnd := true
	for idx, row := range rows {
		if !row.Time.Before(trainingStart) && !row.Time.After(trainingEnd) {
			targetHistory = append(targetHistory, row)
		}

		if prevBeforeEnd && !row.Time.Before(trainingEnd) && trainingEndIdx == -1 {
			trainingEndIdx = idx
		}
		prevBeforeEnd = row.Time.Before(trainingEnd)
	}

	if len(targetHistory) == 0 {
		return nil, ErrEmptyTrainingWindow
	}
	if trainingEndIdx == -1 {
		return nil, ErrTrainingEndNotFound
	}

	start := trainingEndIdx - contextLength
	if start < 0 {
		start = 0
	}
	end := trainingEndIdx + predictionLength
	if end > len(rows)-1 {
		end = len(rows) - 1
	}

	window := make([]models.SeriesPoint, 0, end-start+1)
	for i := start; i <= end; i++ {
		window = append(window, models.SeriesPoint{Date: rows[i].Date, Value: rows[i].Value})
	}

	return &Windows{TargetHistory: targetHistory, DisplayWindow: window}, nil
}
