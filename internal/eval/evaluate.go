// Package eval scores free-text model answers against an answer key.
package eval

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// TriggerPhrasesV1 are the phrasings, followed by the expected letter, that
// count as naming an alternative. Reports produced before any change to this
// list are only comparable while it stays as is.
var TriggerPhrasesV1 = []string{"ALTERNATIVA ", "LETRA ", "OPÇÃO "}

// Evaluate returns True when response names the expected letter.
//
// The check is a substring heuristic: the bare letter anywhere in the
// response counts, so incidental capitals produce false positives. An empty
// expected letter yields Unknown.
func Evaluate(response, expected string) Verdict {
	letter := strings.ToUpper(strings.TrimSpace(expected))
	if letter == "" {
		return Unknown
	}
	text := strings.ToUpper(norm.NFC.String(response))
	if strings.Contains(text, letter) {
		return True
	}
	for _, phrase := range TriggerPhrasesV1 {
		if strings.Contains(text, phrase+letter) {
			return True
		}
	}
	return False
}
