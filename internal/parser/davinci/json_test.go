package davinci

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vplan/internal/config"
	"vplan/internal/diag"
	"vplan/internal/parser"
	"vplan/internal/plan"
)

const jsonMasterData = `
  "teams": [{"id": "t1", "description": "Oberstufe"}],
  "classes": [
    {"id": "c1", "code": "10a", "teamRefs": ["t1"]},
    {"id": "c2", "code": "10b", "teamRefs": []}
  ],
  "teachers": [
    {"id": "p1", "code": "MUE", "firstName": "Max", "lastName": "Mueller"},
    {"id": "p2", "code": "SCH", "firstName": "Sabine", "lastName": "Schmidt"}
  ],
  "subjects": [{"id": "s1", "code": "MATH", "description": "Mathematik"}],
  "timeframes": [
    {"code": "Standard", "timeslots": [
      {"label": "1", "startTime": "0800", "endTime": "0845"},
      {"label": "3", "startTime": "0945", "endTime": "1030"}
    ]},
    {"code": "Aufsichten", "timeslots": [
      {"label": "1", "startTime": "0930", "endTime": "0945"}
    ]}
  ]`

func parseJSON(t *testing.T, body string, mutate func(*config.Config)) (*parser.Result, *diag.Recorder) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	sink := diag.NewRecorder()
	p := NewJSON(cfg, sink, path)
	p.Now = func() time.Time { return time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC) }

	result, err := parser.Run(p)
	require.NoError(t, err)
	return result, sink
}

func TestJSONWholeDayClassAbsence(t *testing.T) {
	result, _ := parseJSON(t, `{"result": {`+jsonMasterData+`,
		"classAbsences": [
			{"startDate": "20240901", "endDate": "20240901",
			 "startTime": "0000", "endTime": "0000", "classRef": "c1"}
		]}}`, nil)

	require.Len(t, result.Plan, 1)
	rec := result.Plan[0]
	assert.Equal(t, int(plan.PlanCanceled), rec.Type)
	assert.Equal(t, "01.09.2024", rec.Date)
	assert.Equal(t, 0, rec.Hour)
	assert.Equal(t, "00:00:00", rec.StartTime)
	assert.Equal(t, "23:59:59", rec.EndTime)
	assert.Equal(t, "10a", rec.Course)
}

func TestJSONAbsenceSpanExpandsPerDay(t *testing.T) {
	result, _ := parseJSON(t, `{"result": {`+jsonMasterData+`,
		"teacherAbsences": [
			{"startDate": "20240902", "endDate": "20240904",
			 "startTime": "0000", "endTime": "0000", "teacherRef": "p1"}
		]}}`, nil)

	require.Len(t, result.Plan, 3)
	dates := []string{result.Plan[0].Date, result.Plan[1].Date, result.Plan[2].Date}
	assert.Equal(t, []string{"02.09.2024", "03.09.2024", "04.09.2024"}, dates)
	for _, rec := range result.Plan {
		assert.Equal(t, int(plan.PlanOutTeacher), rec.Type)
		assert.Equal(t, "MUE", rec.Teacher)
	}
}

func TestJSONSupersededRecordDiscarded(t *testing.T) {
	base := `"lessonRef": "L1", "courseRef": "K1", "dates": ["20240902"],
		"startTime": "0945", "endTime": "1030", "subjectCode": "MATH",
		"teacherCodes": ["MUE"], "roomCodes": ["C12"], "classCodes": ["10a"]`

	result, sink := parseJSON(t, `{"result": {`+jsonMasterData+`,
		"displaySchedule": {"lessonTimes": [
			{`+base+`, "changes": {"changeType": 5, "newTeacherCodes": ["SCH"]}},
			{`+base+`, "changes": {"changeType": 0}}
		]}}}`, nil)

	require.Len(t, result.Plan, 1)
	rec := result.Plan[0]
	assert.Equal(t, "02.09.2024", rec.Date)
	assert.Equal(t, 3, rec.Hour)
	assert.Equal(t, "MUE", rec.Teacher)
	assert.Empty(t, rec.ChangeTeacher)
	assert.NotEmpty(t, sink.Messages(diag.LevelInfo))
}

func TestJSONDuplicateRawRecordsCollapse(t *testing.T) {
	record := `{"lessonRef": "L1", "courseRef": "K1", "dates": ["20240902"],
		"startTime": "0945", "endTime": "1030", "subjectCode": "MATH",
		"teacherCodes": ["MUE"], "roomCodes": ["C12"], "classCodes": ["10a"],
		"changes": {"changeType": 0}}`

	result, sink := parseJSON(t, `{"result": {`+jsonMasterData+`,
		"displaySchedule": {"lessonTimes": [`+record+`,`+record+`]}}}`, nil)

	assert.Len(t, result.Plan, 1)
	assert.NotEmpty(t, sink.Messages(diag.LevelInfo))
}

func TestJSONClassAbsenceWithTimeBecomesFreePeriod(t *testing.T) {
	result, _ := parseJSON(t, `{"result": {`+jsonMasterData+`,
		"displaySchedule": {"lessonTimes": [
			{"lessonRef": "L2", "dates": ["20240902"],
			 "startTime": "0945", "endTime": "1030", "classCodes": ["10a"],
			 "changes": {"changeType": 1, "reasonType": "classAbsence",
			             "caption": "Klasse abwesend", "cancelled": "classFree"}}
		]}}}`, nil)

	require.Len(t, result.Plan, 1)
	rec := result.Plan[0]
	assert.Equal(t, "Unterrichtsfrei", rec.Info)
	assert.NotZero(t, rec.ChgType&int(plan.ChangeFree))
	assert.Equal(t, "10a", rec.Course)
}

func TestJSONAbsenceNoteRecoveryRequiresMatchingReason(t *testing.T) {
	body := func(reasonCode string) string {
		return `{"result": {` + jsonMasterData + `,
		"classAbsences": [
			{"startDate": "20240902", "endDate": "20240902",
			 "startTime": "0000", "endTime": "0000", "classRef": "c1",
			 "reasonRef": "rA", "note": "Exkursion Berlin"}
		],
		"displaySchedule": {"lessonTimes": [
			{"lessonRef": "L3", "dates": ["20240902"],
			 "startTime": "0945", "endTime": "1030", "classCodes": ["10a"],
			 "changes": {"changeType": 1, "reasonType": "classAbsence",
			             "reasonCode": "` + reasonCode + `"}}
		]}}}`
	}
	standinRecord := func(result *parser.Result) plan.Record {
		for _, rec := range result.Plan {
			if rec.Hour == 3 {
				return rec
			}
		}
		t.Fatal("no standin record generated")
		return plan.Record{}
	}

	// Same class, same reason: the detail record's note fills the gap.
	result, _ := parseJSON(t, body("rA"), nil)
	assert.Equal(t, "Exkursion Berlin", standinRecord(result).Info)

	// Same class, unrelated reason: the note stays out.
	result, _ = parseJSON(t, body("KRANK"), nil)
	rec := standinRecord(result)
	assert.NotEqual(t, "Exkursion Berlin", rec.Info)
	assert.NotEqual(t, "Exkursion Berlin", rec.Notes)
}

func TestJSONTeacherChangeSetsBits(t *testing.T) {
	result, _ := parseJSON(t, `{"result": {`+jsonMasterData+`,
		"displaySchedule": {"lessonTimes": [
			{"lessonRef": "L3", "dates": ["20240902"],
			 "startTime": "0945", "endTime": "1030", "subjectCode": "MATH",
			 "teacherCodes": ["MUE"], "roomCodes": ["C12"], "classCodes": ["10a"],
			 "changes": {"changeType": 2, "newTeacherCodes": ["SCH"],
			             "newRoomCodes": ["C14"]}}
		]}}}`, nil)

	require.Len(t, result.Plan, 1)
	rec := result.Plan[0]
	assert.Equal(t, "SCH", rec.ChangeTeacher)
	assert.Equal(t, "C14", rec.ChangeRoom)
	assert.NotZero(t, rec.ChgType&int(plan.ChangeTeacher))
	assert.NotZero(t, rec.ChgType&int(plan.ChangeRoom))
}

func TestJSONYardDuty(t *testing.T) {
	result, _ := parseJSON(t, `{"result": {`+jsonMasterData+`,
		"displaySchedule": {"supervisionTimes": [
			{"dates": ["20240902"], "startTime": "0930", "endTime": "0945",
			 "areaCode": "Hof A", "teacherCodes": ["SCH"],
			 "changes": {"changeType": 4, "absentTeacherCodes": ["MUE"]}}
		]}}}`, nil)

	require.Len(t, result.Plan, 1)
	rec := result.Plan[0]
	assert.Equal(t, int(plan.PlanYardDuty), rec.Type)
	assert.Equal(t, "MUE", rec.Teacher)
	assert.Equal(t, "SCH", rec.ChangeTeacher)
	assert.Equal(t, "Hof A", rec.Info)
	assert.NotZero(t, rec.ChgType&int(plan.ChangeDuty))
}

func TestJSONEnvelopeSections(t *testing.T) {
	result, _ := parseJSON(t, `{"result": {`+jsonMasterData+`}}`, nil)

	assert.Len(t, result.Classes, 2)
	assert.Len(t, result.Teachers, 2)
	assert.Len(t, result.Subjects, 1)
	assert.Len(t, result.Timeframes["pupil"], 2)
	assert.Len(t, result.Timeframes["duty"], 1)
	for _, key := range []string{"classes", "teacher", "subjects", "pupil", "duty"} {
		assert.NotEmpty(t, result.Hashes[key], key)
	}
}

func TestJSONStructuralFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"no": "result"}`), 0o644))

	p := NewJSON(config.DefaultConfig(), diag.NewRecorder(), path)
	_, err := parser.Run(p)
	assert.ErrorIs(t, err, parser.ErrStructural)
}
