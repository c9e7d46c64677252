package live

import (
	"fmt"
	"time"

	"enemeval/internal/runner"
)

// Reduce applies a question event to the UI state. Event indexes are
// 1-based; rows are created as needed.
func Reduce(state State, event runner.QuestionEvent) State {
	state = ensureRow(state, event)
	state = applyQuestionEvent(state, event)
	state.Counts = recount(state.Rows)
	if message := formatLastEvent(event); message != "" {
		state.LastEvent = message
	}
	return state
}

// StartRun resets state for a new run.
func StartRun(info runner.RunInfo, now time.Time) State {
	state := State{
		RunID:      info.RunID,
		Total:      info.Total,
		Resumed:    info.Resumed,
		Checkpoint: info.CheckpointPath,
		Delay:      info.Delay,
		StartedAt:  now,
		Rows:       make([]QuestionRow, info.Total),
	}
	for i := range state.Rows {
		state.Rows[i] = QuestionRow{Index: i, Status: runner.QuestionQueued}
	}
	state.Counts = recount(state.Rows)
	if info.Resumed > 0 {
		state.LastEvent = fmt.Sprintf("resumed %d results from checkpoint", info.Resumed)
	}
	return state
}

// ReduceCheckpoint records a checkpoint write in the footer.
func ReduceCheckpoint(state State, event runner.CheckpointEvent) State {
	if event.Err != nil {
		state.LastEvent = "checkpoint failed: " + event.Err.Error()
		return state
	}
	state.LastEvent = fmt.Sprintf("checkpoint saved (%d results)", event.Processed)
	return state
}

// FinishRun marks the run as ended.
func FinishRun(state State, outcome runner.Outcome) State {
	state.Finished = true
	if outcome.Interrupted {
		state.LastEvent = fmt.Sprintf("interrupted after %d questions", outcome.Processed)
	} else {
		state.LastEvent = fmt.Sprintf("finished: %d processed, %d skipped", outcome.Processed, outcome.Skipped)
	}
	return state
}

func ensureRow(state State, event runner.QuestionEvent) State {
	index := event.Index - 1
	if index < 0 || index < len(state.Rows) {
		return state
	}
	rows := make([]QuestionRow, index+1)
	copy(rows, state.Rows)
	for i := len(state.Rows); i < len(rows); i++ {
		rows[i] = QuestionRow{Index: i, Status: runner.QuestionQueued}
	}
	state.Rows = rows
	return state
}

func applyQuestionEvent(state State, event runner.QuestionEvent) State {
	index := event.Index - 1
	if index < 0 || index >= len(state.Rows) {
		return state
	}
	row := state.Rows[index]
	if row.ID == "" {
		row.ID = event.QuestionID
	}
	if row.Area == "" {
		row.Area = event.Area
	}
	row.Status = event.Type
	if event.Type == runner.QuestionRunning && row.StartedAt.IsZero() {
		row.StartedAt = event.EmittedAt
	}
	if event.Type.Terminal() {
		row.FinishedAt = event.EmittedAt
		row.WallTime = event.WallTime
		row.Error = event.Error
	}
	state.Rows[index] = row
	return state
}

func recount(rows []QuestionRow) StatusCounts {
	var counts StatusCounts
	for _, row := range rows {
		switch row.Status {
		case runner.QuestionQueued:
			counts.Queued++
		case runner.QuestionRunning:
			counts.Running++
		case runner.QuestionCorrect:
			counts.Done++
			counts.Correct++
		case runner.QuestionIncorrect:
			counts.Done++
			counts.Incorrect++
		case runner.QuestionUnknown:
			counts.Done++
			counts.Unknown++
		case runner.QuestionFailed:
			counts.Done++
			counts.Failed++
		case runner.QuestionSkipped:
			counts.Done++
			counts.Skipped++
		}
	}
	return counts
}

func formatLastEvent(event runner.QuestionEvent) string {
	switch event.Type {
	case runner.QuestionFailed:
		return fmt.Sprintf("Q%d failed: %s", event.Index, event.Error)
	case runner.QuestionCorrect, runner.QuestionIncorrect, runner.QuestionUnknown:
		return fmt.Sprintf("Q%d %s (%s)", event.Index, statusLabel(event.Type), formatDuration(event.WallTime))
	}
	return ""
}

func formatDuration(duration time.Duration) string {
	if duration <= 0 {
		return "0s"
	}
	return duration.Round(100 * time.Millisecond).String()
}
