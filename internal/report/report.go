// Package report aggregates evaluated results into per-area statistics and
// writes the report files a run leaves behind.
package report

import (
	"math"
	"sort"

	"enemeval/internal/eval"
	"enemeval/internal/runner"
)

// AreaReport holds the statistics for one area.
type AreaReport struct {
	Area       string  `json:"area"`
	Total      int     `json:"total_questoes"`
	Correct    int     `json:"acertos"`
	Incorrect  int     `json:"erros"`
	Unanswered int     `json:"sem_resposta"`
	Failures   int     `json:"falhas"`
	Accuracy   float64 `json:"taxa_acerto"`
}

// GlobalReport holds the statistics for a whole run.
type GlobalReport struct {
	Total  int                   `json:"total_questoes"`
	ByArea map[string]AreaReport `json:"por_area"`
	// Areas lists ByArea keys in the order they were first seen.
	Areas []string `json:"-"`
}

// SortedAreas returns the area names in lexical order.
func (g GlobalReport) SortedAreas() []string {
	names := make([]string, 0, len(g.ByArea))
	for name := range g.ByArea {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Aggregate groups results by area. Failures and results without an answer
// key both count as unanswered; failures are also counted separately.
func Aggregate(results []runner.Result) GlobalReport {
	global, _ := aggregate(results)
	return global
}

// aggregate also returns the per-area groups in first-seen order for the
// file writers.
func aggregate(results []runner.Result) (GlobalReport, []areaGroup) {
	global := GlobalReport{Total: len(results), ByArea: map[string]AreaReport{}}
	groups := groupByArea(results)
	for _, group := range groups {
		global.ByArea[group.area] = summarize(group.area, group.results)
		global.Areas = append(global.Areas, group.area)
	}
	return global, groups
}

// Accuracy returns correct/(correct+incorrect) as a percentage rounded to two
// decimals, or 0 when nothing was scored.
func Accuracy(correct, incorrect int) float64 {
	scored := correct + incorrect
	if scored == 0 {
		return 0
	}
	return round2(float64(correct) / float64(scored) * 100)
}

type areaGroup struct {
	area    string
	results []runner.Result
}

func groupByArea(results []runner.Result) []areaGroup {
	index := map[string]int{}
	var groups []areaGroup
	for _, r := range results {
		area := r.Area
		if area == "" {
			area = "OUTRAS"
		}
		i, ok := index[area]
		if !ok {
			i = len(groups)
			index[area] = i
			groups = append(groups, areaGroup{area: area})
		}
		groups[i].results = append(groups[i].results, r)
	}
	return groups
}

func summarize(area string, results []runner.Result) AreaReport {
	stats := AreaReport{Area: area, Total: len(results)}
	for _, r := range results {
		switch r.Verdict {
		case eval.True:
			stats.Correct++
		case eval.False:
			stats.Incorrect++
		default:
			stats.Unanswered++
		}
		if r.Failed() {
			stats.Failures++
		}
	}
	stats.Accuracy = Accuracy(stats.Correct, stats.Incorrect)
	return stats
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
