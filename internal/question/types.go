package question

// SourceField is the provenance key attached to every loaded record.
const SourceField = "arquivo_origem"

// Record is one decoded JSONL line with the provenance attached by the loader.
type Record struct {
	Fields      map[string]any
	SourceFile  string
	Line        int
	SyntheticID string
}

// Raw returns the record fields with the source file tag added.
func (r Record) Raw() map[string]any {
	out := make(map[string]any, len(r.Fields)+1)
	for key, value := range r.Fields {
		out[key] = value
	}
	if r.SourceFile != "" {
		out[SourceField] = r.SourceFile
	}
	return out
}

// Alternative is one lettered answer choice.
type Alternative struct {
	Letter string
	Text   string
}

// Canonical is the schema-stable view of a question record.
// Optional attributes are empty when the source did not provide them.
type Canonical struct {
	ID           string
	Year         string
	Area         string
	AreaLabel    string
	Topic        string
	Difficulty   string
	Text         string
	Context      string
	Alternatives []Alternative
	Answer       string
	SourceFile   string
	Line         int
	Raw          map[string]any
}
