// Package workflow holds the review states shared by sarees, procurement records and expenses.
package workflow

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var Statuses = []Status{StatusPending, StatusApproved, StatusRejected}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Reviewed reports whether s is a terminal review outcome.
func (s Status) Reviewed() bool {
	return s == StatusApproved || s == StatusRejected
}

func StatusNames() []string {
	names := make([]string, len(Statuses))
	for i, s := range Statuses {
		names[i] = string(s)
	}
	return names
}
