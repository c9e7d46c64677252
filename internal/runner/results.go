package runner

import (
	"encoding/json"
	"fmt"

	"enemeval/internal/eval"
	"enemeval/internal/question"
)

// Result is the evaluated outcome of one question. A result with a non-empty
// Error is a failure; its verdict is always Unknown.
type Result struct {
	QuestionID string         `json:"questao_id"`
	SourceFile string         `json:"arquivo_origem"`
	Area       string         `json:"area"`
	Expected   string         `json:"gabarito"`
	Response   string         `json:"resposta_modelo,omitempty"`
	Error      string         `json:"erro,omitempty"`
	Verdict    eval.Verdict   `json:"acertou"`
	Prompt     string         `json:"prompt_usado,omitempty"`
	Original   map[string]any `json:"questao_original,omitempty"`
}

// Failed reports whether the model call failed for this question.
func (r Result) Failed() bool {
	return r.Error != ""
}

// NoGroundTruth reports a successful call whose question had no answer key.
func (r Result) NoGroundTruth() bool {
	return !r.Failed() && !r.Verdict.Known()
}

func newResult(q question.Canonical, promptText, expected string) Result {
	return Result{
		QuestionID: q.ID,
		SourceFile: q.SourceFile,
		Area:       q.AreaLabel,
		Expected:   expected,
		Prompt:     promptText,
		Original:   q.Raw,
	}
}

// UnmarshalJSON accepts questao_id as a string or a number. Older progress
// files store numeric ids for records keyed by "number".
func (r *Result) UnmarshalJSON(data []byte) error {
	type plain Result
	aux := struct {
		*plain
		QuestionID json.RawMessage `json:"questao_id"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	id, err := decodeQuestionID(aux.QuestionID)
	if err != nil {
		return err
	}
	r.QuestionID = id
	return nil
}

func decodeQuestionID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}
	var number json.Number
	if err := json.Unmarshal(raw, &number); err != nil {
		return "", fmt.Errorf("questao_id: %w", err)
	}
	return number.String(), nil
}
