package runner

import "time"

// QuestionEventType identifies a question status update for observers.
type QuestionEventType string

const (
	// QuestionQueued marks a question known but not yet submitted.
	QuestionQueued QuestionEventType = "queued"
	// QuestionRunning marks an active model call.
	QuestionRunning QuestionEventType = "running"
	// QuestionCorrect marks a correct answer.
	QuestionCorrect QuestionEventType = "correct"
	// QuestionIncorrect marks an incorrect answer.
	QuestionIncorrect QuestionEventType = "incorrect"
	// QuestionUnknown marks an answer with no key to compare against.
	QuestionUnknown QuestionEventType = "unknown"
	// QuestionFailed marks a failed model call.
	QuestionFailed QuestionEventType = "failed"
	// QuestionSkipped marks a question already present in the checkpoint.
	QuestionSkipped QuestionEventType = "skipped"
)

// Terminal reports whether no further events follow for the question.
func (t QuestionEventType) Terminal() bool {
	switch t {
	case QuestionCorrect, QuestionIncorrect, QuestionUnknown, QuestionFailed, QuestionSkipped:
		return true
	default:
		return false
	}
}

// QuestionEvent carries a single status update for a question.
type QuestionEvent struct {
	Index      int
	Total      int
	QuestionID string
	Area       string
	Type       QuestionEventType
	Error      string
	WallTime   time.Duration
	EmittedAt  time.Time
}

// RunInfo describes a run as it starts.
type RunInfo struct {
	RunID          string
	Total          int
	Resumed        int
	CheckpointPath string
	Delay          time.Duration
}

// CheckpointEvent reports a checkpoint write.
type CheckpointEvent struct {
	Path      string
	Processed int
	Err       error
}

// RunObserver receives run lifecycle events for UI or logging.
type RunObserver interface {
	// OnRunStart signals the start of a run.
	OnRunStart(info RunInfo)
	// OnQuestionEvent delivers a question status update.
	OnQuestionEvent(event QuestionEvent)
	// OnCheckpoint signals a checkpoint write attempt.
	OnCheckpoint(event CheckpointEvent)
	// OnRunEnd signals run completion, including interrupted runs.
	OnRunEnd(outcome Outcome)
}

// Observers fans events out to several observers.
type Observers []RunObserver

func (o Observers) OnRunStart(info RunInfo) {
	for _, obs := range o {
		if obs != nil {
			obs.OnRunStart(info)
		}
	}
}

func (o Observers) OnQuestionEvent(event QuestionEvent) {
	for _, obs := range o {
		if obs != nil {
			obs.OnQuestionEvent(event)
		}
	}
}

func (o Observers) OnCheckpoint(event CheckpointEvent) {
	for _, obs := range o {
		if obs != nil {
			obs.OnCheckpoint(event)
		}
	}
}

func (o Observers) OnRunEnd(outcome Outcome) {
	for _, obs := range o {
		if obs != nil {
			obs.OnRunEnd(outcome)
		}
	}
}
