package legacy

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vplan/internal/config"
	"vplan/internal/diag"
	"vplan/internal/parser"
	"vplan/internal/plan"
)

// sundayClock pins Now to Sunday 01.09.2024 so that weekday resolution is
// deterministic: Montag becomes 02.09.2024, Dienstag 03.09.2024.
func sundayClock() time.Time {
	return time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
}

func parsePDF(t *testing.T, pages []string) (*parser.Result, *diag.Recorder) {
	t.Helper()
	sink := diag.NewRecorder()
	p := NewPDF(config.DefaultConfig(), sink, "plan.pdf")
	p.Now = sundayClock
	p.Extract = func(string) ([]string, error) { return pages, nil }

	result, err := parser.Run(p)
	require.NoError(t, err)
	return result, sink
}

func TestPDFParseAbsentClasses(t *testing.T) {
	page := "Vertretungsplan der Schule\n" +
		"Montag\n" +
		"Abwesende Klassen\n" +
		"1192 08:00 09:30 R12 Klausur verschoben;\n" +
		"1201 x x x\n" +
		"Dienstag\n" +
		"Abwesende Klassen 1192 a b c Exkursion\n"

	result, _ := parsePDF(t, []string{page})

	require.Len(t, result.Plan, 3)
	assert.Equal(t, int(plan.PlanCanceled), int(result.PlanType))

	first := result.Plan[0]
	assert.Equal(t, "02.09.2024", first.Date)
	assert.Equal(t, 0, first.Hour)
	assert.Equal(t, "00:00:00", first.StartTime)
	assert.Equal(t, "23:59:59", first.EndTime)
	assert.Equal(t, "1192", first.Course)
	assert.Equal(t, int(plan.ChangeCancelled), first.ChgType)
	assert.Equal(t, "Klausur verschoben", first.Info)

	second := result.Plan[1]
	assert.Equal(t, "02.09.2024", second.Date)
	assert.Equal(t, "1201", second.Course)
	assert.Equal(t, "", second.Info)

	third := result.Plan[2]
	assert.Equal(t, "03.09.2024", third.Date)
	assert.Equal(t, "1192", third.Course)
	assert.Equal(t, "Exkursion", third.Info)

	// 1192 appears on two days but registers once.
	require.Len(t, result.Classes, 2)
}

func TestPDFParseSkipsUnusableSegments(t *testing.T) {
	page := "Montag\n" +
		"Abwesende Klassen\n" +
		"ohne Klassennummer x y z;\n" +
		"12 zu kurz\n"

	result, sink := parsePDF(t, []string{page})

	assert.Empty(t, result.Plan)
	assert.Len(t, sink.Messages(diag.LevelWarning), 2)
}

func TestPDFParseIgnoresTextOutsideBlocks(t *testing.T) {
	page := "Montag\n" +
		"1192 08:00 09:30 R12 kein Marker davor\n"

	result, _ := parsePDF(t, []string{page})
	assert.Empty(t, result.Plan)
}

func TestPDFExtractErrorIsFatal(t *testing.T) {
	sink := diag.NewRecorder()
	p := NewPDF(config.DefaultConfig(), sink, "plan.pdf")
	p.Extract = func(string) ([]string, error) { return nil, errors.New("broken xref") }

	_, err := parser.Run(p)
	require.Error(t, err)
	assert.Len(t, sink.Messages(diag.LevelError), 1)
}
