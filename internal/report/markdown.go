package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"enemeval/internal/eval"
	"enemeval/internal/runner"
)

const (
	maxListedErrors = 10
	previewRunes    = 100
)

func renderMarkdown(global GlobalReport, groups []areaGroup, now time.Time) string {
	var b strings.Builder
	b.WriteString("# 📊 Relatório de Resolução - Questões ENEM\n\n")
	fmt.Fprintf(&b, "**Data**: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Total de Questões**: %s\n\n", thousands(global.Total))

	b.WriteString("## 📈 Resumo Geral\n\n")
	b.WriteString("| Área | Total | Acertos | Erros | Taxa de Acerto |\n")
	b.WriteString("|------|-------|---------|-------|----------------|\n")
	for _, area := range global.SortedAreas() {
		stats := global.ByArea[area]
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %s%% |\n", area, stats.Total, stats.Correct, stats.Incorrect, formatRate(stats.Accuracy))
	}

	b.WriteString("\n## 📚 Detalhes por Área\n\n")
	sorted := append([]areaGroup(nil), groups...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].area < sorted[j].area })
	for _, group := range sorted {
		stats := global.ByArea[group.area]
		fmt.Fprintf(&b, "### %s\n\n", group.area)
		fmt.Fprintf(&b, "- **Total de Questões**: %d\n", stats.Total)
		fmt.Fprintf(&b, "- **Acertos**: %d\n", stats.Correct)
		fmt.Fprintf(&b, "- **Erros**: %d\n", stats.Incorrect)
		if stats.Failures > 0 {
			fmt.Fprintf(&b, "- **Falhas de requisição**: %d\n", stats.Failures)
		}
		fmt.Fprintf(&b, "- **Taxa de Acerto**: %s%%\n\n", formatRate(stats.Accuracy))
		writeErrors(&b, group.results)
	}

	b.WriteString("\n## 📁 Arquivos Gerados\n\n")
	for _, area := range global.SortedAreas() {
		fmt.Fprintf(&b, "- `%s` - Dados completos de %s\n", AreaFile(area), area)
	}
	b.WriteString("- `dados_treinamento_*.json` - Dados formatados para treinamento\n")
	fmt.Fprintf(&b, "- `%s` - Estatísticas gerais\n", GlobalFile)
	return b.String()
}

func writeErrors(b *strings.Builder, results []runner.Result) {
	var wrong []runner.Result
	for _, r := range results {
		if r.Verdict == eval.False {
			wrong = append(wrong, r)
		}
	}
	if len(wrong) == 0 {
		return
	}
	b.WriteString("#### Questões com Erro (Primeiras 10)\n\n")
	if len(wrong) > maxListedErrors {
		wrong = wrong[:maxListedErrors]
	}
	for i, r := range wrong {
		id := r.QuestionID
		if id == "" {
			id = "N/A"
		}
		fmt.Fprintf(b, "%d. Questão %s\n", i+1, id)
		fmt.Fprintf(b, "   - Gabarito: %s\n", r.Expected)
		fmt.Fprintf(b, "   - Resposta do modelo: %s...\n\n", preview(r.Response, previewRunes))
	}
}

func preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', 2, 64)
}

// thousands formats n with comma group separators.
func thousands(n int) string {
	digits := strconv.Itoa(n)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String()
}
