package cli

import (
	"fmt"
	"io"
	"sync"

	"enemeval/internal/runner"
)

// plainObserver prints one progress line per question for non-TTY output.
type plainObserver struct {
	mu  sync.Mutex
	out io.Writer
	// open is set while a "Processando" line awaits its status.
	open bool
}

func newPlainObserver(out io.Writer) *plainObserver {
	return &plainObserver{out: out}
}

func (o *plainObserver) OnRunStart(info runner.RunInfo) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if info.Resumed > 0 {
		fmt.Fprintf(o.out, "📥 Progresso anterior carregado: %d questões já processadas\n\n", info.Resumed)
	}
	fmt.Fprintf(o.out, "🔄 Processando %d questões...\n", info.Total)
	fmt.Fprintf(o.out, "   Intervalo entre requisições: %s\n\n", info.Delay)
}

func (o *plainObserver) OnQuestionEvent(event runner.QuestionEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch event.Type {
	case runner.QuestionRunning:
		fmt.Fprintf(o.out, "[%d/%d] Processando questão %s... ", event.Index, event.Total, event.QuestionID)
		o.open = true
	case runner.QuestionCorrect, runner.QuestionIncorrect, runner.QuestionUnknown, runner.QuestionFailed:
		if !o.open {
			return
		}
		o.open = false
		fmt.Fprintln(o.out, plainStatus(event.Type))
	}
}

func (o *plainObserver) OnCheckpoint(event runner.CheckpointEvent) {
	if event.Err == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closeLine()
	fmt.Fprintf(o.out, "⚠️  Falha ao salvar progresso em %s: %v\n", event.Path, event.Err)
}

func (o *plainObserver) OnRunEnd(outcome runner.Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closeLine()
	if outcome.Interrupted {
		return
	}
	fmt.Fprintf(o.out, "\n✅ Processamento concluído! %d questões processadas\n\n", len(outcome.Results))
}

// closeLine terminates a progress line left open by an interrupted call.
func (o *plainObserver) closeLine() {
	if o.open {
		fmt.Fprintln(o.out)
		o.open = false
	}
}

func plainStatus(t runner.QuestionEventType) string {
	switch t {
	case runner.QuestionCorrect:
		return "✅"
	case runner.QuestionIncorrect:
		return "❌"
	case runner.QuestionUnknown:
		return "❔ Sem gabarito"
	default:
		return "⚠️  Erro"
	}
}
