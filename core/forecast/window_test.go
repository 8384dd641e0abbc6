package forecast

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dailyRows(t *testing.T, start string, n int) []SeriesRow {
	t.Helper()
	day, err := time.Parse(dateLayout, start)
	require.NoError(t, err)

	rows := make([]SeriesRow, n)
	for i := 0; i < n; i++ {
		d := day.AddDate(0, 0, i)
		rows[i] = SeriesRow{Date: d.Format(dateLayout), Time: d, Value: float64(i)}
	}
	return rows
}

func TestParseSeriesCSV(t *testing.T) {
	csv := "date,value\n2021-01-01,1.5\n2021-01-02, 2.25 \n\n2021-01-04,3\n"

	rows, err := ParseSeriesCSV([]byte(csv))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2021-01-01", rows[0].Date)
	assert.Equal(t, 1.5, rows[0].Value)
	assert.Equal(t, 2.25, rows[1].Value)
	// gaps are allowed
	assert.Equal(t, "2021-01-04", rows[2].Date)
}

func TestParseSeriesCSVMalformed(t *testing.T) {
	_, err := ParseSeriesCSV([]byte("date,value\nnot-a-row\n"))
	assert.Error(t, err)

	_, err = ParseSeriesCSV([]byte("date,value\n2021-01-01,abc\n"))
	assert.Error(t, err)
}

func TestBuildWindowsBasic(t *testing.T) {
	rows := dailyRows(t, "2021-01-01", 30)
	start := rows[0].Time
	end := rows[9].Time // 2021-01-10

	w, err := BuildWindows(rows, start, end, 3, 5)
	require.NoError(t, err)

	// rows 0..9 fall inside [start, end]
	require.Len(t, w.TargetHistory, 10)
	assert.Equal(t, "2021-01-01", w.TargetHistory[0].Date)
	assert.Equal(t, "2021-01-10", w.TargetHistory[9].Date)

	// display window is [9-3, 9+5]
	require.Len(t, w.DisplayWindow, 9)
	assert.Equal(t, "2021-01-07", w.DisplayWindow[0].Date)
	assert.Equal(t, "2021-01-15", w.DisplayWindow[len(w.DisplayWindow)-1].Date)
}

func TestBuildWindowsClampsLeft(t *testing.T) {
	rows := dailyRows(t, "2021-01-01", 100)
	start := rows[0].Time
	end := rows[10].Time

	w, err := BuildWindows(rows, start, end, 20, 5)
	require.NoError(t, err)

	// 10-20 clamps to index 0, not -10
	assert.Equal(t, rows[0].Date, w.DisplayWindow[0].Date)
	assert.Equal(t, rows[15].Date, w.DisplayWindow[len(w.DisplayWindow)-1].Date)
}

func TestBuildWindowsClampsRight(t *testing.T) {
	rows := dailyRows(t, "2021-01-01", 12)
	start := rows[0].Time
	end := rows[9].Time

	w, err := BuildWindows(rows, start, end, 2, 50)
	require.NoError(t, err)

	// 9+50 clamps to the last index
	assert.Equal(t, rows[11].Date, w.DisplayWindow[len(w.DisplayWindow)-1].Date)
}

func TestBuildWindowsTrainingEndNotFound(t *testing.T) {
	rows := dailyRows(t, "2021-01-01", 10)
	start := rows[0].Time
	end := rows[9].Time.AddDate(0, 0, 30) // beyond every timestamp

	_, err := BuildWindows(rows, start, end, 3, 5)
	assert.ErrorIs(t, err, ErrTrainingEndNotFound)
}

func TestBuildWindowsEmptyTrainingWindow(t *testing.T) {
	rows := dailyRows(t, "2021-06-01", 10)
	start, _ := time.Parse(dateLayout, "2021-01-01")
	end, _ := time.Parse(dateLayout, "2021-01-31")

	_, err := BuildWindows(rows, start, end, 3, 5)
	assert.ErrorIs(t, err, ErrEmptyTrainingWindow)
}

func TestBuildWindowsDeterministic(t *testing.T) {
	rows := dailyRows(t, "2021-01-01", 50)
	start := rows[5].Time
	end := rows[40].Time

	first, err := BuildWindows(rows, start, end, 10, 10)
	require.NoError(t, err)
	second, err := BuildWindows(rows, start, end, 10, 10)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildWindowsWithGaps(t *testing.T) {
	// weekday-style series with weekend gaps
	var sb strings.Builder
	sb.WriteString("date,value\n")
	day, _ := time.Parse(dateLayout, "2021-01-04")
	for i := 0; i < 20; i++ {
		if day.Weekday() != time.Saturday && day.Weekday() != time.Sunday {
			sb.WriteString(fmt.Sprintf("%s,%d\n", day.Format(dateLayout), i))
		}
		day = day.AddDate(0, 0, 1)
	}
	rows, err := ParseSeriesCSV([]byte(sb.String()))
	require.NoError(t, err)

	// trainingEnd on a Saturday: the first following row anchors the window
	end, _ := time.Parse(dateLayout, "2021-01-09")
	start, _ := time.Parse(dateLayout, "2021-01-04")
	w, err := BuildWindows(rows, start, end, 2, 2)
	require.NoError(t, err)
	assert.NotEmpty(t, w.TargetHistory)
	assert.NotEmpty(t, w.DisplayWindow)
}
