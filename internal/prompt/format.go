// Package prompt renders canonical questions into model-facing text.
package prompt

import (
	"strings"

	"enemeval/internal/question"
)

// SystemPrompt is sent as the system message for every question.
const SystemPrompt = "Você é um assistente especializado em questões do ENEM (Exame Nacional do Ensino Médio) " +
	"e Teoria da Resposta ao Item (TRI). Forneça respostas precisas, didáticas e baseadas " +
	"em conhecimento educacional brasileiro."

// Instruction closes every prompt. The evaluator relies on the model
// naming a letter, so the wording asks for it explicitly.
const Instruction = "Resolva esta questão passo a passo e indique a alternativa correta:"

const unknownYear = "N/A"

// Format returns the prompt text and the expected answer letter.
func Format(q question.Canonical) (string, string) {
	year := q.Year
	if year == "" {
		year = unknownYear
	}
	area := q.AreaLabel
	if area == "" {
		area = question.AreaLabel(q.Area)
	}

	var b strings.Builder
	b.WriteString("Questão do ENEM ")
	b.WriteString(year)
	b.WriteString(" - ")
	b.WriteString(area)
	b.WriteString("\n\n")
	if q.Context != "" {
		b.WriteString("Contexto: ")
		b.WriteString(q.Context)
		b.WriteString("\n\n")
	}
	b.WriteString(q.Text)
	b.WriteString("\n\n")
	for _, alt := range q.Alternatives {
		b.WriteString(alt.Letter)
		b.WriteString(") ")
		b.WriteString(alt.Text)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(Instruction)
	return b.String(), q.Answer
}
