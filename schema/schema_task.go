package schema

// AnalysisTask is a background analysis task as reported by the compute engine.
type AnalysisTask struct {
	ID           string     `json:"id"`
	Type         string     `json:"type"`
	Status       TaskStatus `json:"status"`
	ComponentKey string     `json:"componentKey,omitempty"`
	SubmittedAt  string     `json:"submittedAt"`
	ExecutedAt   *string    `json:"executedAt,omitempty"`
	AnalysisID   *string    `json:"analysisId,omitempty"`
	ErrorMessage *string    `json:"errorMessage,omitempty"`
}

// IsTerminal reports whether the task will not change status anymore.
func (t AnalysisTask) IsTerminal() bool {
	switch t.Status {
	case TaskSuccess, TaskFailed, TaskCanceled:
		return true
	default:
		return false
	}
}
