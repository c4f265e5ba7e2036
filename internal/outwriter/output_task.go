package outwriter

import (
	"fmt"
	"io"
	"os"

	"github.com/huangsam/sonar-cli/internal/contract"
	"github.com/huangsam/sonar-cli/schema"
	"github.com/schollz/progressbar/v3"
)

// WriteTask prints a finished analysis task.
func (ow *OutWriter) WriteTask(task schema.AnalysisTask, cfg *contract.Config) error {
	return writeView(cfg, taskView(task))
}

func taskView(task schema.AnalysisTask) view {
	row := []string{
		task.ID,
		task.Type,
		string(task.Status),
		task.ComponentKey,
		task.SubmittedAt,
		optString(task.ExecutedAt),
		optString(task.AnalysisID),
	}
	return view{
		name:      "task",
		payload:   task,
		title:     fmt.Sprintf("Analysis task %s: %s", task.ID, task.Status),
		headers:   []string{"ID", "Type", "Status", "Component", "Submitted", "Executed", "Analysis"},
		rows:      [][]string{row},
		alignLeft: true,
	}
}

// Spinner shows progress while waiting on an analysis task.
type Spinner struct {
	bar *progressbar.ProgressBar
}

// NewSpinner returns a spinner writing to stderr. It stays silent when
// stderr is not a terminal or the output is machine readable.
func NewSpinner(description string, cfg *contract.Config) *Spinner {
	var w io.Writer = os.Stderr
	if cfg.Output != schema.TextOut || !isTerminal(os.Stderr) {
		w = io.Discard
	}
	return newSpinner(w, description)
}

func newSpinner(w io.Writer, description string) *Spinner {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionClearOnFinish(),
	)
	return &Spinner{bar: bar}
}

// Update advances the spinner and shows the latest task status.
func (s *Spinner) Update(task schema.AnalysisTask) {
	s.bar.Describe(fmt.Sprintf("Waiting for analysis %s (%s)", task.ID, task.Status))
	_ = s.bar.Add(1)
}

// Finish clears the spinner.
func (s *Spinner) Finish() {
	_ = s.bar.Finish()
}
