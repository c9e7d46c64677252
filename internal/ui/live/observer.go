package live

import (
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"enemeval/internal/runner"
)

const eventBuffer = 256

// Controller runs the live UI and implements runner.RunObserver.
type Controller struct {
	events  chan Event
	program *tea.Program
	done    chan struct{}
	mu      sync.Mutex
	closed  bool
}

// Start launches a live UI controller that writes to stdout. The program
// reads the terminal in raw mode, so ctrl+c reaches the model as a key
// press and is forwarded to opts.OnInterrupt.
func Start(stdout io.Writer, opts Options) *Controller {
	if stdout == nil {
		stdout = os.Stdout
	}
	events := make(chan Event, eventBuffer)
	model := NewModel(events, opts)
	program := tea.NewProgram(model, tea.WithOutput(stdout), tea.WithAltScreen())
	controller := &Controller{
		events:  events,
		program: program,
		done:    make(chan struct{}),
	}
	go func() {
		_, _ = program.Run()
		close(controller.done)
	}()
	return controller
}

// Close signals the UI to stop.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.events)
}

// Wait blocks until the UI has exited.
func (c *Controller) Wait() {
	if c == nil {
		return
	}
	<-c.done
}

func (c *Controller) OnRunStart(info runner.RunInfo) {
	c.send(Event{Kind: EventRunStart, Run: info})
}

// OnQuestionEvent forwards status updates. Queued events are dropped since
// OnRunStart already lays out a queued row per question.
func (c *Controller) OnQuestionEvent(event runner.QuestionEvent) {
	if event.Type == runner.QuestionQueued {
		return
	}
	c.send(Event{Kind: EventQuestion, Question: event})
}

func (c *Controller) OnCheckpoint(event runner.CheckpointEvent) {
	c.send(Event{Kind: EventCheckpoint, Checkpoint: event})
}

// OnRunEnd forwards run completion to the UI and closes it.
func (c *Controller) OnRunEnd(outcome runner.Outcome) {
	c.send(Event{Kind: EventRunEnd, Outcome: outcome})
	c.Close()
}

// send enqueues an event without blocking the caller. Events are dropped
// when the buffer is full or the controller is closed.
func (c *Controller) send(event Event) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.events <- event:
	default:
	}
}
