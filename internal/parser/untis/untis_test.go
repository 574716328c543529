package untis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vplan/internal/config"
	"vplan/internal/diag"
	"vplan/internal/parser"
	"vplan/internal/plan"
)

// weekFlags builds a 53-position mask with the given characters set,
// week numbers being 1-based.
func weekFlags(set map[int]byte) string {
	mask := []byte(strings.Repeat("0", 53))
	for week, c := range set {
		mask[week-1] = c
	}
	return string(mask)
}

func row(fields ...string) string {
	return strings.Join(fields, "\t") + "\n"
}

// monday is 2024-09-02, ISO week 36.
var monday = time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)

func writeExport(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func exportFixture() map[string]string {
	substRow := make([]string, 22)
	substRow[0] = "VTD"
	substRow[1] = "54"
	substRow[2] = "Verlegung"
	substRow[3] = "2.9."
	substRow[4] = "Mo"
	substRow[5] = "2"
	substRow[6] = "09:00-09:45"
	substRow[7] = "MATH"
	substRow[8] = "MATH"
	substRow[9] = "MUE"
	substRow[10] = "MUE"
	substRow[11] = "10a"
	substRow[12] = "10a"
	substRow[13] = "C12"
	substRow[14] = "C12"
	substRow[16] = "Mo-9.9. / 1"

	noteRow := make([]string, 22)
	copy(noteRow, substRow)
	noteRow[1] = "55"
	noteRow[2] = "Vertretung"
	noteRow[5] = "1"
	noteRow[16] = ""
	noteRow[21] = "Aufgaben in moodle"

	return map[string]string{
		"date.txt":    row("36", "Mo", "20240902", "1"),
		"time.txt":    row("1", "1", "0", "0800", "0845") + row("1", "2", "0", "0900", "0945"),
		"class.txt":   row("10a", "Klasse 10a"),
		"room.txt":    row("C12", "EDV-Raum"),
		"subject.txt": row("MATH", "Mathematik"),
		"teacher.txt": row("MUE", "Mueller", "", "Max"),
		"lesson.txt": row("MUE", "1", "1", "MATH", "C12", "100", "0", "10a",
			weekFlags(map[int]byte{36: '1', 37: 'x'}), "1") +
			row("MUE", "1", "2", "MATH", "C12", "101", "0", "10a",
				weekFlags(map[int]byte{36: 'x'}), "2"),
		"substitution.txt": row(substRow...) + row(noteRow...),
		"supervision.txt":  row("20240902", "1", "Hof A", "MUE", "SCH", "1"),
	}
}

func parseExport(t *testing.T, files map[string]string) (*parser.Result, *diag.Recorder) {
	t.Helper()
	dir := writeExport(t, files)

	sink := diag.NewRecorder()
	p := New(config.DefaultConfig(), sink, filepath.Join(dir, "lesson.txt"))
	p.Now = func() time.Time { return monday }

	result, err := parser.Run(p)
	require.NoError(t, err)
	return result, sink
}

func findRecord(records []plan.Record, date string, hour int) (plan.Record, bool) {
	for _, rec := range records {
		if rec.Date == date && rec.Hour == hour {
			return rec, true
		}
	}
	return plan.Record{}, false
}

func TestStandinOnlyWeekBecomesFreePeriod(t *testing.T) {
	result, _ := parseExport(t, exportFixture())

	rec, ok := findRecord(result.Plan, "02.09.2024", 2)
	require.True(t, ok)
	assert.NotZero(t, rec.ChgType&int(plan.ChangeFree))
	assert.NotZero(t, rec.ChgType&int(plan.ChangeStandin))
	assert.Equal(t, "Unterrichtsfrei", rec.Info)
	assert.NotZero(t, rec.Type&int(plan.PlanFillIn))
}

func TestRegularOccurrenceEmitted(t *testing.T) {
	result, _ := parseExport(t, exportFixture())

	rec, ok := findRecord(result.Plan, "02.09.2024", 1)
	require.True(t, ok)
	assert.NotZero(t, rec.ChgType&int(plan.ChangeRegular))
	assert.Equal(t, "MUE", rec.Teacher)
	assert.Equal(t, "MATH", rec.Subject)
	assert.Equal(t, "C12", rec.Room)
	assert.Equal(t, "10a", rec.Course)
	assert.Equal(t, "080000", rec.StartTime)
	assert.Equal(t, "084500", rec.EndTime)
	// the note-only substitution row attaches here
	assert.Equal(t, "Aufgaben in moodle", rec.Notes)
}

func TestMovedPairLinkage(t *testing.T) {
	result, _ := parseExport(t, exportFixture())

	moved, ok := findRecord(result.Plan, "02.09.2024", 2)
	require.True(t, ok)
	assert.NotZero(t, moved.ChgType&int(plan.ChangeMoved))
	assert.Equal(t, "Verschoben von Mo, 1. Stunde (9.9.)", moved.Notes)

	source, ok := findRecord(result.Plan, "09.09.2024", 1)
	require.True(t, ok)
	assert.NotZero(t, source.ChgType&int(plan.ChangeMovedFrom))
	assert.Equal(t, "Verschoben auf Mo, 2. Stunde (2.9.)", source.Notes)
}

func TestWholeDayCancellationInferred(t *testing.T) {
	// 09.09. week 37: hour 1 is free, hour 2 does not occur at all, so
	// the class has no surviving lesson that day.
	result, _ := parseExport(t, exportFixture())

	rec, ok := findRecord(result.Plan, "09.09.2024", 0)
	require.True(t, ok)
	assert.Equal(t, int(plan.PlanCanceled), rec.Type)
	assert.Equal(t, int(plan.ChangeCancelled), rec.ChgType)
	assert.Equal(t, "10a", rec.Course)
	assert.Equal(t, "00:00:00", rec.StartTime)
	assert.Equal(t, "23:59:59", rec.EndTime)
}

func TestSupervisionChange(t *testing.T) {
	result, _ := parseExport(t, exportFixture())

	var duty *plan.Record
	for i := range result.Plan {
		if result.Plan[i].ChgType&int(plan.ChangeDuty) != 0 {
			duty = &result.Plan[i]
			break
		}
	}
	require.NotNil(t, duty)
	assert.Equal(t, "02.09.2024", duty.Date)
	assert.Equal(t, "MUE", duty.Teacher)
	assert.Equal(t, "SCH", duty.ChangeTeacher)
	assert.Equal(t, "Hof A", duty.Info)
	// duty slot is the gap between hour 1 and hour 2
	assert.Equal(t, "084500", duty.StartTime)
	assert.Equal(t, "090000", duty.EndTime)
}

func TestSubstitutionRowsDriveChangeBits(t *testing.T) {
	files := exportFixture()
	// substitution sub-row on the hour 1 slot of week 36 with another
	// teacher and room
	files["lesson.txt"] += row("SCH", "1", "1", "MATH", "C14", "100", "2", "10a",
		weekFlags(map[int]byte{36: '1'}), "1")

	result, _ := parseExport(t, files)

	rec, ok := findRecord(result.Plan, "02.09.2024", 1)
	require.True(t, ok)
	assert.NotZero(t, rec.ChgType&int(plan.ChangeStandin))
	assert.Equal(t, "SCH", rec.ChangeTeacher)
	assert.Equal(t, "C14", rec.ChangeRoom)
	assert.Empty(t, rec.ChangeSubject)
}

func TestMasterDataEnvelope(t *testing.T) {
	result, _ := parseExport(t, exportFixture())

	require.Len(t, result.Classes, 1)
	assert.Equal(t, "10a", result.Classes[0]["abbreviation"])
	require.Len(t, result.Teachers, 1)
	assert.Equal(t, "Max", result.Teachers[0]["firstname"])
	assert.Len(t, result.Timeframes["pupil"], 2)
	assert.Len(t, result.Timeframes["duty"], 1)
	for _, key := range []string{"classes", "teacher", "subjects", "pupil", "duty"} {
		assert.NotEmpty(t, result.Hashes[key], key)
	}
}

func TestMissingCompanionFilesTimeout(t *testing.T) {
	files := exportFixture()
	delete(files, "supervision.txt")
	dir := writeExport(t, files)

	cfg := config.DefaultConfig()
	cfg.Untis.FileTimeoutSeconds = 1

	p := New(cfg, diag.NewRecorder(), filepath.Join(dir, "lesson.txt"))
	p.Now = func() time.Time { return monday }

	_, err := parser.Run(p)
	assert.ErrorIs(t, err, parser.ErrFilesTimeout)
}
