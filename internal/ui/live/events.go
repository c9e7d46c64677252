package live

import "enemeval/internal/runner"

// EventKind identifies the type of live UI event.
type EventKind int

const (
	// EventRunStart signals the start of a run.
	EventRunStart EventKind = iota
	// EventQuestion delivers a question status update.
	EventQuestion
	// EventCheckpoint reports a checkpoint write.
	EventCheckpoint
	// EventRunEnd signals run completion.
	EventRunEnd
)

// Event carries a UI update payload.
type Event struct {
	Kind       EventKind
	Run        runner.RunInfo
	Question   runner.QuestionEvent
	Checkpoint runner.CheckpointEvent
	Outcome    runner.Outcome
}
