package plan

// PlanType is a bitmask describing which plan category an entry belongs to.
type PlanType int

const (
	PlanFillIn     PlanType = 1
	PlanCanceled   PlanType = 2
	PlanYardDuty   PlanType = 4
	PlanOutTeacher PlanType = 8
	PlanAdditional PlanType = 16
	PlanRegular    PlanType = 32
)

// ChangeType is a bitmask describing what kind of change occurred,
// independent of the plan category. A single entry may carry several bits.
type ChangeType int

const (
	ChangeCancelled   ChangeType = 1
	ChangeRoom        ChangeType = 2
	ChangeTeacher     ChangeType = 4
	ChangeSubject     ChangeType = 8
	ChangeMoved       ChangeType = 16
	ChangeMovedFrom   ChangeType = 32
	ChangeFree        ChangeType = 64
	ChangeDuty        ChangeType = 128
	ChangeAddInfo     ChangeType = 256
	ChangeTeacherAway ChangeType = 512
	ChangeStandin     ChangeType = 1024
	ChangeRegular     ChangeType = 2048
)

// ChangeEntry is the canonical, not yet flattened unit of output. Teacher,
// Subject and Room hold the original (pre-change) values; the Change*
// counterparts hold the values after the change. Dates are DD.MM.YYYY
// strings; a single logical change may recur on several of them.
type ChangeEntry struct {
	Dates    []string
	PlanType PlanType
	ChgType  ChangeType

	Hours     []TimeFrame
	StartTime string // fallback when a frame has no own start
	EndTime   string // fallback when a frame has no own end

	Teacher string
	Subject string
	Room    string
	Course  []string

	ChangeTeacher string
	ChangeSubject string
	ChangeRoom    string

	// CourseRef is the originating lesson/course id when the source links
	// the change back to a concrete lesson.
	CourseRef string

	Note string // operational remark
	Info string // reason / caption
}

// NewChangeEntry constructs an entry for the given dates and plan category.
func NewChangeEntry(dates []string, planType PlanType, chgType ChangeType) *ChangeEntry {
	return &ChangeEntry{
		Dates:    dates,
		PlanType: planType,
		ChgType:  chgType,
	}
}

// Match reports whether the entry covers the given slot using the original
// (pre-change) fields. With free set, the entry must additionally carry the
// FREE bit.
func (c *ChangeEntry) Match(date string, hour int, teacher, subject, room string, free bool) bool {
	if !c.hasDate(date) || !c.hasHour(hour) {
		return false
	}
	if teacher != c.Teacher || subject != c.Subject || room != c.Room {
		return false
	}
	if free && c.ChgType&ChangeFree == 0 {
		return false
	}
	return true
}

// MatchStandin is like Match but compares against the post-change values,
// falling back to the original field wherever no change value is present.
func (c *ChangeEntry) MatchStandin(date string, hour int, teacher, subject, room string, free bool) bool {
	if !c.hasDate(date) || !c.hasHour(hour) {
		return false
	}

	effective := func(changed, original string) string {
		if changed != "" {
			return changed
		}
		return original
	}
	if teacher != effective(c.ChangeTeacher, c.Teacher) {
		return false
	}
	if subject != effective(c.ChangeSubject, c.Subject) {
		return false
	}
	if room != effective(c.ChangeRoom, c.Room) {
		return false
	}
	if free && c.ChgType&ChangeFree == 0 {
		return false
	}
	return true
}

// HasSlot reports whether the entry covers the given date, course and hour.
func (c *ChangeEntry) HasSlot(date, course string, hour int) bool {
	if !c.hasDate(date) || !c.hasHour(hour) {
		return false
	}
	for _, co := range c.Course {
		if co == course {
			return true
		}
	}
	return false
}

func (c *ChangeEntry) hasDate(date string) bool {
	for _, d := range c.Dates {
		if d == date {
			return true
		}
	}
	return false
}

func (c *ChangeEntry) hasHour(hour int) bool {
	for _, h := range c.Hours {
		if h.Hour == hour {
			return true
		}
	}
	return false
}

// Less orders entries by (first date, first hour, first course). Entries
// without dates sort as not-less so they keep their relative position.
func (c *ChangeEntry) Less(other *ChangeEntry) bool {
	if len(c.Dates) == 0 || len(other.Dates) == 0 {
		return false
	}
	if c.Dates[0] != other.Dates[0] {
		return c.Dates[0] < other.Dates[0]
	}

	switch {
	case len(c.Hours) == 0 && len(other.Hours) == 0:
		return false
	case len(c.Hours) == 0:
		return true
	case len(other.Hours) == 0:
		return false
	}
	if !c.Hours[0].Equal(other.Hours[0]) {
		return c.Hours[0].Less(other.Hours[0])
	}

	if len(c.Course) > 0 && len(other.Course) > 0 && c.Course[0] < other.Course[0] {
		return true
	}
	return false
}

// Equal reports whether both entries describe the same slot set; used to
// detect duplicate entries before flattening.
func (c *ChangeEntry) Equal(other *ChangeEntry) bool {
	if len(c.Dates) != len(other.Dates) || len(c.Hours) != len(other.Hours) ||
		len(c.Course) != len(other.Course) {
		return false
	}
	for i := range c.Dates {
		if c.Dates[i] != other.Dates[i] {
			return false
		}
	}
	for i := range c.Hours {
		if !c.Hours[i].Equal(other.Hours[i]) {
			return false
		}
	}
	for i := range c.Course {
		if c.Course[i] != other.Course[i] {
			return false
		}
	}
	return c.Room == other.Room
}

// Flatten expands the entry into one Record per date x course x hour-slot.
// An entry without courses still produces records, carrying an empty course.
func (c *ChangeEntry) Flatten() []Record {
	courses := c.Course
	if len(courses) == 0 {
		courses = []string{""}
	}

	records := make([]Record, 0, len(c.Dates)*len(courses)*len(c.Hours))
	for _, day := range c.Dates {
		for _, course := range courses {
			for _, tf := range c.Hours {
				start := tf.Start
				if start == "" {
					start = c.StartTime
				}
				end := tf.End
				if end == "" {
					end = c.EndTime
				}

				rec := Record{
					Type:          int(c.PlanType),
					Date:          day,
					Hour:          tf.Hour,
					StartTime:     start,
					EndTime:       end,
					CourseRef:     c.CourseRef,
					Teacher:       c.Teacher,
					Subject:       c.Subject,
					Room:          c.Room,
					ChgType:       int(c.ChgType),
					Course:        course,
					ChangeTeacher: c.ChangeTeacher,
					ChangeSubject: c.ChangeSubject,
					ChangeRoom:    c.ChangeRoom,
					Notes:         c.Note,
					Info:          c.Info,
				}
				rec.GUID = rec.guid()
				records = append(records, rec)
			}
		}
	}
	return records
}

// FlattenAll flattens a list of entries into one record list, preserving
// entry order.
func FlattenAll(entries []*ChangeEntry) []Record {
	var records []Record
	for _, e := range entries {
		records = append(records, e.Flatten()...)
	}
	return records
}
