package plan

// Entity is anything a plan may reference by abbreviation: teachers,
// subjects, rooms and school classes. The abbreviation is the cross-reference
// key used everywhere else; the ID is the source-system identifier and may
// be empty for formats that do not carry one.
type Entity interface {
	Key() string
	EntityID() string
	Serialize() map[string]any
}

// Teacher is a teaching person, identified by the usual short code.
type Teacher struct {
	ID           string
	Abbreviation string
	FirstName    string
	LastName     string
}

func (t Teacher) Key() string      { return t.Abbreviation }
func (t Teacher) EntityID() string { return t.ID }

func (t Teacher) Serialize() map[string]any {
	return map[string]any{
		"firstname":    t.FirstName,
		"lastname":     t.LastName,
		"abbreviation": t.Abbreviation,
	}
}

// Subject is a school subject.
type Subject struct {
	ID           string
	Abbreviation string
	Description  string
}

func (s Subject) Key() string      { return s.Abbreviation }
func (s Subject) EntityID() string { return s.ID }

func (s Subject) Serialize() map[string]any {
	return map[string]any{
		"name":         s.Description,
		"abbreviation": s.Abbreviation,
	}
}

// Room is a physical room.
type Room struct {
	ID           string
	Abbreviation string
	Description  string
}

func (r Room) Key() string      { return r.Abbreviation }
func (r Room) EntityID() string { return r.ID }

func (r Room) Serialize() map[string]any {
	return map[string]any{
		"name":         r.Description,
		"abbreviation": r.Abbreviation,
	}
}

// SchoolClass is a class or course group. Team is the describing team/group
// label some sources attach (DaVinci "teams").
type SchoolClass struct {
	ID           string
	Abbreviation string
	Description  string
	Team         string
}

func (c SchoolClass) Key() string      { return c.Abbreviation }
func (c SchoolClass) EntityID() string { return c.ID }

func (c SchoolClass) Serialize() map[string]any {
	return map[string]any{
		"name":         c.Description,
		"abbreviation": c.Abbreviation,
	}
}

// EntityList is a registry mapping abbreviation -> entity. Re-inserting the
// same abbreviation overwrites the stored entity but keeps its original
// position, so Serialize output stays stable across duplicate master-data
// rows.
type EntityList[E Entity] struct {
	byKey map[string]E
	order []string
}

// NewEntityList returns an empty registry.
func NewEntityList[E Entity]() *EntityList[E] {
	return &EntityList[E]{byKey: make(map[string]E)}
}

// Append stores the entity under its abbreviation.
func (l *EntityList[E]) Append(e E) {
	key := e.Key()
	if _, exists := l.byKey[key]; !exists {
		l.order = append(l.order, key)
	}
	l.byKey[key] = e
}

// Find returns the entity registered under the abbreviation.
func (l *EntityList[E]) Find(key string) (E, bool) {
	e, ok := l.byKey[key]
	return e, ok
}

// FindByID scans for the entity with the given source-system id.
func (l *EntityList[E]) FindByID(id string) (E, bool) {
	for _, key := range l.order {
		if e := l.byKey[key]; e.EntityID() == id {
			return e, true
		}
	}
	var zero E
	return zero, false
}

// Len returns the number of registered entities.
func (l *EntityList[E]) Len() int {
	return len(l.byKey)
}

// Keys returns the abbreviations in insertion order.
func (l *EntityList[E]) Keys() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Serialize returns the wire representation of all entities in insertion
// order.
func (l *EntityList[E]) Serialize() []map[string]any {
	out := make([]map[string]any, 0, len(l.order))
	for _, key := range l.order {
		out = append(out, l.byKey[key].Serialize())
	}
	return out
}
