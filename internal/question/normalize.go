package question

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Alias keys per logical field, tried in order.
var (
	idKeys          = []string{"id", "number"}
	yearKeys        = []string{"ano", "year", "edicao"}
	areaKeys        = []string{"area", "subject", "disciplina"}
	topicKeys       = []string{"tema", "topic", "assunto"}
	difficultyKeys  = []string{"dificuldade", "difficulty"}
	textKeys        = []string{"question", "questao", "original_question", "texto"}
	contextKeys     = []string{"context", "description"}
	alternativeKeys = []string{"alternatives", "alternativas", "options"}
	answerKeys      = []string{"answer", "gabarito", "correct_answer", "resposta"}
)

// Letters lists the recognized answer-choice labels in render order.
var Letters = []string{"A", "B", "C", "D", "E"}

// Normalize builds the canonical view of a record. It never fails: values
// of unexpected shape resolve to empty fields.
func Normalize(rec Record) Canonical {
	fields := rec.Fields
	q := Canonical{
		ID:         stringField(fields, idKeys),
		Year:       stringField(fields, yearKeys),
		Area:       stringField(fields, areaKeys),
		Topic:      stringField(fields, topicKeys),
		Difficulty: stringField(fields, difficultyKeys),
		Text:       stringField(fields, textKeys),
		Context:    stringField(fields, contextKeys),
		Answer:     strings.ToUpper(strings.TrimSpace(stringField(fields, answerKeys))),
		SourceFile: rec.SourceFile,
		Line:       rec.Line,
		Raw:        rec.Raw(),
	}
	if q.ID == "" {
		q.ID = rec.SyntheticID
	}
	if q.Area == "" {
		q.Area = AreaUnknown
	}
	q.AreaLabel = AreaLabel(q.Area)
	value, _ := firstPresent(fields, alternativeKeys)
	q.Alternatives = alternatives(value)
	return q
}

// NormalizeAll normalizes records preserving order.
func NormalizeAll(records []Record) []Canonical {
	out := make([]Canonical, 0, len(records))
	for _, rec := range records {
		out = append(out, Normalize(rec))
	}
	return out
}

// alternatives accepts a letter-keyed object or a positional list. Lists
// longer than five entries are truncated after E.
func alternatives(value any) []Alternative {
	switch v := value.(type) {
	case map[string]any:
		out := make([]Alternative, 0, len(Letters))
		for _, letter := range Letters {
			text, ok := lookupPresent(v, letter, strings.ToLower(letter))
			if !ok {
				continue
			}
			out = append(out, Alternative{Letter: letter, Text: stringify(text)})
		}
		return out
	case []any:
		out := make([]Alternative, 0, len(Letters))
		for i, item := range v {
			if i >= len(Letters) {
				break
			}
			out = append(out, Alternative{Letter: Letters[i], Text: alternativeText(item)})
		}
		return out
	default:
		return nil
	}
}

// alternativeText unwraps list entries shaped like {"letter": "A", "text": "..."}.
func alternativeText(item any) string {
	if obj, ok := item.(map[string]any); ok {
		if text, ok := lookupPresent(obj, "text", "texto"); ok {
			return stringify(text)
		}
	}
	return stringify(item)
}

func stringField(fields map[string]any, keys []string) string {
	value, ok := firstPresent(fields, keys)
	if !ok {
		return ""
	}
	return stringify(value)
}

func firstPresent(fields map[string]any, keys []string) (any, bool) {
	return lookupPresent(fields, keys...)
}

func lookupPresent(fields map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		value, ok := fields[key]
		if ok && Present(value) {
			return value, true
		}
	}
	return nil, false
}

// Present reports whether a decoded JSON value counts as set. Empty strings,
// zero numbers, false and empty collections do not.
func Present(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return v != ""
		}
		return f != 0
	case float64:
		return v != 0
	case int:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprint(v)
	}
}
