package enums

// CourseKind discriminates the two catalog branches. A course reference is
// always tagged with exactly one kind; the storage layer keeps the branches
// in separate tables.
type CourseKind string

const (
	CourseKindStandard CourseKind = "standard"
	CourseKindAdvanced CourseKind = "advanced"
)

func ParseCourseKind(raw string) (CourseKind, bool) {
	switch CourseKind(raw) {
	case CourseKindStandard:
		return CourseKindStandard, true
	case CourseKindAdvanced:
		return CourseKindAdvanced, true
	default:
		return "", false
	}
}
