package enums

// ProgressStatus only moves forward: not_started -> in_progress -> completed.
type ProgressStatus string

const (
	ProgressStatusNotStarted ProgressStatus = "not_started"
	ProgressStatusInProgress ProgressStatus = "in_progress"
	ProgressStatusCompleted  ProgressStatus = "completed"
)

func (s ProgressStatus) rank() int {
	switch s {
	case ProgressStatusInProgress:
		return 1
	case ProgressStatusCompleted:
		return 2
	default:
		return 0
	}
}

// AtLeast reports whether s is equal to or further along than other.
func (s ProgressStatus) AtLeast(other ProgressStatus) bool {
	return s.rank() >= other.rank()
}
