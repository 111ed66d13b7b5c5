package output

import (
	"encoding/json"
	"io"

	"github.com/deidtools/deideval/internal/score"
)

// JSONFormatter renders the spans report as a JSON object.
type JSONFormatter struct{}

type jsonCounts struct {
	TP        int     `json:"tp"`
	FP        int     `json:"fp"`
	FN        int     `json:"fn"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

type jsonDoc struct {
	ID string `json:"id"`
	jsonCounts
}

type jsonEvaluation struct {
	Label     string    `json:"label"`
	Documents []jsonDoc `json:"documents,omitempty"`
	jsonCounts
}

type jsonReport struct {
	Categories []jsonEvaluation `json:"categories"`
	Total      jsonEvaluation   `json:"total"`
}

func counts(c score.Counts) jsonCounts {
	return jsonCounts{
		TP:        c.TP,
		FP:        c.FP,
		FN:        c.FN,
		Precision: c.Precision(),
		Recall:    c.Recall(),
		F1:        c.F1(),
	}
}

func evaluation(ev score.Evaluation, verbose bool) jsonEvaluation {
	out := jsonEvaluation{Label: ev.Label, jsonCounts: counts(ev.Total)}
	if !verbose {
		return out
	}
	for _, d := range ev.PerDoc {
		out.Documents = append(out.Documents, jsonDoc{ID: d.ID, jsonCounts: counts(d.Counts)})
	}
	return out
}

// Format writes the report as pretty-printed JSON. Per-document rows
// appear on the pooled total only in verbose mode.
func (f *JSONFormatter) Format(w io.Writer, t score.Track, verbose bool) error {
	report := jsonReport{Total: evaluation(t.Overall, verbose)}
	report.Categories = make([]jsonEvaluation, 0, len(t.Categories))
	for _, ev := range t.Categories {
		report.Categories = append(report.Categories, evaluation(ev, false))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
