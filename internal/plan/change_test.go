package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenExpandsDatesCoursesHours(t *testing.T) {
	entry := NewChangeEntry([]string{"01.09.2024", "02.09.2024"}, PlanFillIn, ChangeTeacher)
	entry.Hours = []TimeFrame{
		{Hour: 3, Start: "094500", End: "103000"},
		{Hour: 4, Start: "103000", End: "111500"},
	}
	entry.Course = []string{"10a", "10b", "10c"}
	entry.Teacher = "MUE"
	entry.ChangeTeacher = "SCH"

	records := entry.Flatten()
	require.Len(t, records, 2*3*2)

	hours := map[int]int{}
	for _, rec := range records {
		hours[rec.Hour]++
		assert.Equal(t, "MUE", rec.Teacher)
		assert.Equal(t, "SCH", rec.ChangeTeacher)
		assert.Equal(t, int(ChangeTeacher), rec.ChgType)
		assert.NotEmpty(t, rec.GUID)
	}
	assert.Equal(t, 6, hours[3])
	assert.Equal(t, 6, hours[4])
}

func TestFlattenFallsBackToEntryTimes(t *testing.T) {
	entry := NewChangeEntry([]string{"01.09.2024"}, PlanCanceled, ChangeCancelled)
	entry.Hours = []TimeFrame{{Hour: 0}}
	entry.StartTime = "00:00:00"
	entry.EndTime = "23:59:59"
	entry.Course = []string{"10a"}

	records := entry.Flatten()
	require.Len(t, records, 1)
	assert.Equal(t, "00:00:00", records[0].StartTime)
	assert.Equal(t, "23:59:59", records[0].EndTime)
}

func TestFlattenEmptyCourseStillEmitsRecords(t *testing.T) {
	entry := NewChangeEntry([]string{"01.09.2024"}, PlanOutTeacher, ChangeTeacherAway)
	entry.Hours = []TimeFrame{{Hour: 0}}
	entry.Teacher = "MUE"

	records := entry.Flatten()
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].Course)
}

func TestGUIDContentAddressed(t *testing.T) {
	entry := NewChangeEntry([]string{"01.09.2024"}, PlanFillIn, ChangeRoom)
	entry.Hours = []TimeFrame{{Hour: 3, Start: "094500", End: "103000"}}
	entry.Course = []string{"10a"}
	entry.Room = "C12"
	entry.ChangeRoom = "C14"

	first := entry.Flatten()
	second := entry.Flatten()
	require.Len(t, first, 1)
	assert.Equal(t, first[0].GUID, second[0].GUID)

	entry.ChangeRoom = "C15"
	third := entry.Flatten()
	assert.NotEqual(t, first[0].GUID, third[0].GUID)
}

func TestMatchUsesOriginalFields(t *testing.T) {
	entry := NewChangeEntry([]string{"01.09.2024"}, PlanFillIn, ChangeTeacher)
	entry.Hours = []TimeFrame{{Hour: 3}}
	entry.Teacher = "MUE"
	entry.Subject = "MATH"
	entry.Room = "C12"
	entry.ChangeTeacher = "SCH"

	assert.True(t, entry.Match("01.09.2024", 3, "MUE", "MATH", "C12", false))
	assert.False(t, entry.Match("01.09.2024", 3, "SCH", "MATH", "C12", false))
	assert.False(t, entry.Match("02.09.2024", 3, "MUE", "MATH", "C12", false))
	assert.False(t, entry.Match("01.09.2024", 4, "MUE", "MATH", "C12", false))
	// free requested but the entry carries no FREE bit
	assert.False(t, entry.Match("01.09.2024", 3, "MUE", "MATH", "C12", true))
}

func TestMatchStandinPrefersChangedFields(t *testing.T) {
	entry := NewChangeEntry([]string{"01.09.2024"}, PlanFillIn, ChangeTeacher|ChangeRoom)
	entry.Hours = []TimeFrame{{Hour: 3}}
	entry.Teacher = "MUE"
	entry.Subject = "MATH"
	entry.Room = "C12"
	entry.ChangeTeacher = "SCH"
	entry.ChangeRoom = "C14"

	assert.True(t, entry.MatchStandin("01.09.2024", 3, "SCH", "MATH", "C14", false))
	assert.False(t, entry.MatchStandin("01.09.2024", 3, "MUE", "MATH", "C12", false))
}

func TestHasSlot(t *testing.T) {
	entry := NewChangeEntry([]string{"01.09.2024"}, PlanFillIn, 0)
	entry.Hours = []TimeFrame{{Hour: 3}}
	entry.Course = []string{"10a", "10b"}

	assert.True(t, entry.HasSlot("01.09.2024", "10b", 3))
	assert.False(t, entry.HasSlot("01.09.2024", "10c", 3))
	assert.False(t, entry.HasSlot("01.09.2024", "10a", 4))
}

func TestLessOrdersByDateHourCourse(t *testing.T) {
	a := NewChangeEntry([]string{"01.09.2024"}, PlanFillIn, 0)
	a.Hours = []TimeFrame{{Hour: 2}}
	a.Course = []string{"10a"}

	b := NewChangeEntry([]string{"01.09.2024"}, PlanFillIn, 0)
	b.Hours = []TimeFrame{{Hour: 3}}
	b.Course = []string{"10a"}

	c := NewChangeEntry([]string{"02.09.2024"}, PlanFillIn, 0)
	c.Hours = []TimeFrame{{Hour: 1}}
	c.Course = []string{"10a"}

	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.True(t, b.Less(c))
}
