package timeline

// Category is the display classification of a milestone.
type Category string

const (
	CategoryJob              Category = "job"
	CategoryEducation        Category = "education"
	CategoryProject          Category = "project"
	CategoryEvent            Category = "event"
	CategoryAction           Category = "action"
	CategoryCareerTransition Category = "careerTransition"
)

// Categories lists every valid category.
var Categories = []Category{
	CategoryJob,
	CategoryEducation,
	CategoryProject,
	CategoryEvent,
	CategoryAction,
	CategoryCareerTransition,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// CanOwnChildren reports whether milestones of this category may own
// projects, events and actions.
func (c Category) CanOwnChildren() bool {
	switch c {
	case CategoryJob, CategoryEducation, CategoryCareerTransition:
		return true
	}
	return false
}

// fieldHints is the legacy inference table. Order matters: the first field
// present in the payload decides.
var fieldHints = []struct {
	field string
	cat   Category
}{
	{"degree", CategoryEducation},
	{"company", CategoryJob},
	{"technologies", CategoryProject},
	{"eventType", CategoryEvent},
	{"category", CategoryAction},
	{"transitionType", CategoryCareerTransition},
}

// InferCategory classifies a record. A valid explicit type wins; otherwise
// the payload is sniffed using the legacy field precedence, defaulting to
// [CategoryJob].
func InferCategory(typ string, meta Meta) Category {
	if c := Category(typ); c.Valid() {
		return c
	}
	if c := Category(meta.String("type")); c.Valid() {
		return c
	}
	for _, h := range fieldHints {
		if meta.Has(h.field) {
			return h.cat
		}
	}
	return CategoryJob
}
