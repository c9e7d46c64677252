package question

import "strings"

// AreaUnknown is the area recorded when a source carries no area field.
const AreaUnknown = "N/A"

var areaLabels = map[string]string{
	"languages":        "LINGUAGENS",
	"human-sciences":   "HUMANAS",
	"natural-sciences": "NATUREZA",
	"mathematics":      "MATEMATICA",
	AreaUnknown:        "OUTRAS",
}

// AreaLabel maps a raw area token to its report label.
// Unrecognized tokens are upper-cased.
func AreaLabel(raw string) string {
	if label, ok := areaLabels[raw]; ok {
		return label
	}
	return strings.ToUpper(raw)
}
