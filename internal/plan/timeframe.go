package plan

import (
	"fmt"
	"sort"
)

// TimeFrame describes a single lesson slot within the weekly grid.
// Start and End are wall-clock strings in HHMMSS form; Hour is the ordinal
// period number as counted by the source system (1-based for real periods,
// 0 for synthetic whole-day entries).
type TimeFrame struct {
	Weekday int
	Hour    int
	Start   string
	End     string
}

// SortKey returns the key used to order frames inside a Timetable.
func (t TimeFrame) SortKey() string {
	return fmt.Sprintf("%d-%d", t.Weekday, t.Hour)
}

// Equal reports whether both frames match in all four fields.
func (t TimeFrame) Equal(other TimeFrame) bool {
	return t.Weekday == other.Weekday &&
		t.Hour == other.Hour &&
		t.Start == other.Start &&
		t.End == other.End
}

// Less orders frames by (weekday, hour, start).
func (t TimeFrame) Less(other TimeFrame) bool {
	if t.Weekday != other.Weekday {
		return t.Weekday < other.Weekday
	}
	if t.Hour != other.Hour {
		return t.Hour < other.Hour
	}
	return t.Start < other.Start
}

// Serialize returns the wire representation of the frame.
func (t TimeFrame) Serialize() map[string]any {
	return map[string]any{
		"hour":    t.Hour,
		"start":   t.Start,
		"end":     t.End,
		"weekday": t.Weekday,
	}
}

// Timetable is an ordered collection of TimeFrame. It is kept sorted by
// (weekday, hour) after every insert; ties keep insertion order so repeated
// appends of equal keys stay deterministic.
type Timetable struct {
	frames []TimeFrame
}

// Append inserts a frame and restores the sort order.
func (tt *Timetable) Append(tf TimeFrame) {
	tt.frames = append(tt.frames, tf)
	sort.SliceStable(tt.frames, func(i, j int) bool {
		if tt.frames[i].Weekday != tt.frames[j].Weekday {
			return tt.frames[i].Weekday < tt.frames[j].Weekday
		}
		return tt.frames[i].Hour < tt.frames[j].Hour
	})
}

// Len returns the number of frames.
func (tt *Timetable) Len() int {
	return len(tt.frames)
}

// Frames returns the sorted frame list. Callers must not mutate it.
func (tt *Timetable) Frames() []TimeFrame {
	return tt.frames
}

// Find locates the frame at (weekday, hour) or, failing an exact hit, the
// nearest following frame in sort order. Returns false when the position is
// past the end of the table.
func (tt *Timetable) Find(weekday, hour int) (TimeFrame, bool) {
	idx := sort.Search(len(tt.frames), func(i int) bool {
		f := tt.frames[i]
		if f.Weekday != weekday {
			return f.Weekday > weekday
		}
		return f.Hour >= hour
	})
	if idx >= len(tt.frames) {
		return TimeFrame{}, false
	}
	return tt.frames[idx], true
}

// FindByTime returns every frame of the given weekday whose start/end window
// lies within [startTime, endTime]. Times shorter than HHMMSS are padded
// with trailing "00" so HHMM input from the source files compares correctly.
func (tt *Timetable) FindByTime(startTime, endTime string, weekday int) []TimeFrame {
	start := padTime(startTime)
	end := padTime(endTime)

	var matched []TimeFrame
	for _, f := range tt.frames {
		if f.Weekday == weekday && f.Start >= start && f.End <= end {
			matched = append(matched, f)
		}
	}
	return matched
}

// Serialize returns the wire representation of all frames in order.
func (tt *Timetable) Serialize() []map[string]any {
	out := make([]map[string]any, 0, len(tt.frames))
	for _, f := range tt.frames {
		out = append(out, f.Serialize())
	}
	return out
}

func padTime(t string) string {
	if len(t) > 4 {
		return t
	}
	return t + "00"
}
