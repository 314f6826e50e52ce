// Package table holds the score table a report is built from.
//
// A table is attribute-major: one row per attribute, in display order, with
// a score for every individual and an explicit row average. Tables are
// immutable once built; accessors hand out copies.
package table

import (
	"math"
	"strconv"

	"github.com/gompdf/scorepdf/internal/failure"
)

// AverageKey is the reserved input key carrying per-attribute averages.
// It never names an individual.
const AverageKey = "average_score"

// Default score bounds.
const (
	DefaultMin = 0.0
	DefaultMax = 10.0
)

// Row is one attribute of the table.
type Row struct {
	Attribute string
	Average   float64
	Scores    map[string]float64
}

// Input describes one attribute row before validation. A nil Average is
// computed from the scores unless strict averages are required.
type Input struct {
	Attribute string
	Scores    map[string]float64
	Average   *float64
}

// ScoreTable is a validated, rectangular score table.
type ScoreTable struct {
	rows        []Row
	individuals []string
	index       map[string]int
}

// New validates inputs and builds a table. Individuals fixes the column
// order; every input row must score exactly those individuals.
func New(individuals []string, inputs []Input, opts ...Option) (*ScoreTable, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var problems failure.Problems
	if len(inputs) == 0 {
		problems.Add("no attributes")
	}
	if len(individuals) == 0 {
		problems.Add("no individuals")
	}

	known := make(map[string]bool, len(individuals))
	for _, name := range individuals {
		switch {
		case name == "":
			problems.Add("empty individual name")
		case name == AverageKey:
			problems.Add("%q is reserved and cannot name an individual", AverageKey)
		case known[name]:
			problems.Add("duplicate individual %q", name)
		}
		known[name] = true
	}

	t := &ScoreTable{
		rows:        make([]Row, 0, len(inputs)),
		individuals: append([]string(nil), individuals...),
		index:       make(map[string]int, len(inputs)),
	}

	for _, in := range inputs {
		if in.Attribute == "" {
			problems.Add("empty attribute name")
			continue
		}
		if _, dup := t.index[in.Attribute]; dup {
			problems.Add("duplicate attribute %q", in.Attribute)
			continue
		}

		row := Row{Attribute: in.Attribute, Scores: make(map[string]float64, len(individuals))}
		sum := 0.0
		for _, name := range individuals {
			v, ok := in.Scores[name]
			if !ok {
				problems.Add("attribute %q has no score for %q", in.Attribute, name)
				continue
			}
			if !o.inBounds(v) {
				problems.Add("score %s for %q/%q outside [%s, %s]", fmtNum(v), in.Attribute, name, fmtNum(o.min), fmtNum(o.max))
				continue
			}
			row.Scores[name] = v
			sum += v
		}
		for name := range in.Scores {
			if !known[name] {
				problems.Add("attribute %q scores unknown individual %q", in.Attribute, name)
			}
		}

		switch {
		case in.Average != nil:
			if !o.inBounds(*in.Average) {
				problems.Add("average %s for %q outside [%s, %s]", fmtNum(*in.Average), in.Attribute, fmtNum(o.min), fmtNum(o.max))
			}
			row.Average = *in.Average
		case o.strictAverage:
			problems.Add("attribute %q has no %s", in.Attribute, AverageKey)
		case len(individuals) > 0:
			row.Average = sum / float64(len(individuals))
		}

		t.index[in.Attribute] = len(t.rows)
		t.rows = append(t.rows, row)
	}

	if err := problems.Err(); err != nil {
		return nil, failure.Validation("table", err)
	}
	return t, nil
}

// Len returns the number of attributes.
func (t *ScoreTable) Len() int { return len(t.rows) }

// Attributes returns attribute names in display order.
func (t *ScoreTable) Attributes() []string {
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Attribute
	}
	return out
}

// Individuals returns individual names in column order.
func (t *ScoreTable) Individuals() []string {
	return append([]string(nil), t.individuals...)
}

// Row returns a copy of the named attribute row.
func (t *ScoreTable) Row(attribute string) (Row, bool) {
	i, ok := t.index[attribute]
	if !ok {
		return Row{}, false
	}
	r := t.rows[i]
	scores := make(map[string]float64, len(r.Scores))
	for k, v := range r.Scores {
		scores[k] = v
	}
	return Row{Attribute: r.Attribute, Average: r.Average, Scores: scores}, true
}

// Score returns one cell.
func (t *ScoreTable) Score(attribute, individual string) (float64, bool) {
	i, ok := t.index[attribute]
	if !ok {
		return 0, false
	}
	v, ok := t.rows[i].Scores[individual]
	return v, ok
}

// Average returns the row average of an attribute.
func (t *ScoreTable) Average(attribute string) (float64, bool) {
	i, ok := t.index[attribute]
	if !ok {
		return 0, false
	}
	return t.rows[i].Average, true
}

// Preview flattens the table for display: one line per attribute, individual
// columns in order and the average last.
func (t *ScoreTable) Preview() (header []string, rows [][]string) {
	header = make([]string, 0, len(t.individuals)+2)
	header = append(header, "attribute")
	header = append(header, t.individuals...)
	header = append(header, AverageKey)

	rows = make([][]string, 0, len(t.rows))
	for _, r := range t.rows {
		line := make([]string, 0, len(header))
		line = append(line, r.Attribute)
		for _, name := range t.individuals {
			line = append(line, fmtNum(r.Scores[name]))
		}
		line = append(line, strconv.FormatFloat(r.Average, 'f', 1, 64))
		rows = append(rows, line)
	}
	return header, rows
}

func fmtNum(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
