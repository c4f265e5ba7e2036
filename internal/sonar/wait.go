package sonar

import (
	"context"
	"net/url"
	"time"

	"github.com/huangsam/sonar-cli/schema"
)

// Defaults for waiting on a background analysis task.
const (
	DefaultWaitTimeout  = 300 * time.Second
	DefaultPollInterval = 5 * time.Second
)

// WaitOptions tunes WaitForAnalysis.
type WaitOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
	// OnPoll is called with every task that is not terminal yet.
	OnPoll func(schema.AnalysisTask)
}

type taskResponse struct {
	Task schema.AnalysisTask `json:"task"`
}

// Task returns the current state of a background task.
func (c *Client) Task(ctx context.Context, taskID string) (schema.AnalysisTask, error) {
	resp, err := getJSON[taskResponse](ctx, c, "/api/ce/task", url.Values{"id": {taskID}})
	if err != nil {
		return schema.AnalysisTask{}, err
	}
	return resp.Task, nil
}

// classifyTask maps a task to its outcome. done is false for PENDING,
// IN_PROGRESS and any status this client does not know.
func classifyTask(task schema.AnalysisTask) (done bool, err error) {
	switch task.Status {
	case schema.TaskSuccess:
		return true, nil
	case schema.TaskFailed:
		msg := ""
		if task.ErrorMessage != nil {
			msg = *task.ErrorMessage
		}
		return true, &AnalysisError{Message: msg}
	case schema.TaskCanceled:
		return true, &AnalysisError{Message: CanceledMessage}
	default:
		return false, nil
	}
}

// WaitForAnalysis polls a task until it reaches a terminal status or the
// timeout elapses. Request, status and decoding failures are retried; only
// the deadline, ctx, or a terminal status end the loop.
func (c *Client) WaitForAnalysis(ctx context.Context, taskID string, opts WaitOptions) (schema.AnalysisTask, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	deadline := time.Now().Add(timeout)
	for attempt := 1; ; attempt++ {
		if time.Now().After(deadline) {
			return schema.AnalysisTask{}, ErrTimeout
		}

		task, err := c.Task(ctx, taskID)
		if err != nil {
			c.log.Warn().Err(err).Str("task", taskID).Int("attempt", attempt).Msg("polling analysis task failed, retrying")
		} else {
			done, outcome := classifyTask(task)
			if done {
				if outcome != nil {
					return schema.AnalysisTask{}, outcome
				}
				return task, nil
			}
			c.log.Debug().Str("task", taskID).Str("status", string(task.Status)).Msg("analysis still running")
			if opts.OnPoll != nil {
				opts.OnPoll(task)
			}
		}

		if err := sleep(ctx, interval); err != nil {
			return schema.AnalysisTask{}, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
