package report

import (
	"enemeval/internal/eval"
	"enemeval/internal/question"
	"enemeval/internal/runner"
)

// TrainingRecord is the simplified per-question entry written for
// fine-tuning datasets.
type TrainingRecord struct {
	Question     any          `json:"questao"`
	Alternatives any          `json:"alternativas"`
	Expected     string       `json:"gabarito"`
	Response     string       `json:"resposta_modelo"`
	Verdict      eval.Verdict `json:"acertou"`
	Area         string       `json:"area"`
}

func trainingRecords(area string, results []runner.Result) []TrainingRecord {
	records := make([]TrainingRecord, 0, len(results))
	for _, r := range results {
		records = append(records, TrainingRecord{
			Question:     firstRaw(r.Original, "", "question", "questao"),
			Alternatives: firstRaw(r.Original, map[string]any{}, "alternatives", "alternativas"),
			Expected:     r.Expected,
			Response:     r.Response,
			Verdict:      r.Verdict,
			Area:         area,
		})
	}
	return records
}

// firstRaw returns the first set value among keys. The last key is returned
// as is when present, even if empty.
func firstRaw(raw map[string]any, fallback any, keys ...string) any {
	for i, key := range keys {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if question.Present(value) || i == len(keys)-1 {
			return value
		}
	}
	return fallback
}
