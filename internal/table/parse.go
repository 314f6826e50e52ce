package table

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/gompdf/scorepdf/internal/failure"
	"gopkg.in/yaml.v3"
)

// Parse reads a JSON or YAML score document. Key order in the document is the
// display order of attributes and individuals.
func Parse(r io.Reader, opts ...Option) (*ScoreTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, failure.IO("read input", err)
	}
	return ParseBytes(data, opts...)
}

// Load parses the score document at path.
func Load(path string, opts ...Option) (*ScoreTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, failure.IO("open input", err)
	}
	defer f.Close()
	return Parse(f, opts...)
}

// ParseBytes parses an in-memory score document.
func ParseBytes(data []byte, opts ...Option) (*ScoreTable, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, failure.Validationf("parse", "empty input")
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, failure.Validation("parse", fmt.Errorf("decode: %w", err))
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, failure.Validationf("parse", "empty input")
	}
	root := resolve(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, failure.Validationf("parse", "top level must be an object, line %d", root.Line)
	}

	orientation := o.orientation
	if orientation == OrientationAuto {
		orientation = OrientationAttributeMajor
		for _, p := range entries(root, nil) {
			if p.key == AverageKey {
				orientation = OrientationIndividualMajor
				break
			}
		}
	}

	var (
		individuals []string
		inputs      []Input
		problems    failure.Problems
	)
	if orientation == OrientationIndividualMajor {
		individuals, inputs = readIndividualMajor(root, &problems)
	} else {
		individuals, inputs = readAttributeMajor(root, &problems)
	}
	if err := problems.Err(); err != nil {
		return nil, failure.Validation("parse", err)
	}
	return New(individuals, inputs, opts...)
}

func readAttributeMajor(root *yaml.Node, problems *failure.Problems) ([]string, []Input) {
	var individuals []string
	seen := map[string]bool{}
	var inputs []Input

	for _, attr := range entries(root, problems) {
		if attr.key == AverageKey {
			problems.Add("line %d: %q must be nested inside each attribute", attr.line, AverageKey)
			continue
		}
		if attr.value.Kind != yaml.MappingNode {
			problems.Add("line %d: attribute %q must map individuals to scores", attr.line, attr.key)
			continue
		}
		in := Input{Attribute: attr.key, Scores: map[string]float64{}}
		for _, cell := range entries(attr.value, problems) {
			v, err := number(cell.value)
			if err != nil {
				problems.Add("line %d: %q/%q %v", cell.line, attr.key, cell.key, err)
				continue
			}
			if cell.key == AverageKey {
				avg := v
				in.Average = &avg
				continue
			}
			in.Scores[cell.key] = v
			if !seen[cell.key] {
				seen[cell.key] = true
				individuals = append(individuals, cell.key)
			}
		}
		inputs = append(inputs, in)
	}
	return individuals, inputs
}

func readIndividualMajor(root *yaml.Node, problems *failure.Problems) ([]string, []Input) {
	var (
		individuals []string
		attributes  []string
		seen        = map[string]bool{}
		scores      = map[string]map[string]float64{}
		averages    = map[string]float64{}
	)
	note := func(attr string) {
		if !seen[attr] {
			seen[attr] = true
			attributes = append(attributes, attr)
			scores[attr] = map[string]float64{}
		}
	}

	for _, top := range entries(root, problems) {
		if top.value.Kind != yaml.MappingNode {
			problems.Add("line %d: %q must map attributes to scores", top.line, top.key)
			continue
		}
		isAverage := top.key == AverageKey
		if !isAverage {
			individuals = append(individuals, top.key)
		}
		for _, cell := range entries(top.value, problems) {
			v, err := number(cell.value)
			if err != nil {
				problems.Add("line %d: %q/%q %v", cell.line, top.key, cell.key, err)
				continue
			}
			note(cell.key)
			if isAverage {
				averages[cell.key] = v
			} else {
				scores[cell.key][top.key] = v
			}
		}
	}

	inputs := make([]Input, 0, len(attributes))
	for _, attr := range attributes {
		in := Input{Attribute: attr, Scores: scores[attr]}
		if avg, ok := averages[attr]; ok {
			in.Average = &avg
		}
		inputs = append(inputs, in)
	}
	return individuals, inputs
}

type entry struct {
	key   string
	line  int
	value *yaml.Node
}

// entries lists a mapping's key/value pairs in document order, reporting
// non-scalar and duplicate keys.
func entries(n *yaml.Node, problems *failure.Problems) []entry {
	out := make([]entry, 0, len(n.Content)/2)
	dup := map[string]bool{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := resolve(n.Content[i])
		if k.Kind != yaml.ScalarNode {
			if problems != nil {
				problems.Add("line %d: keys must be strings", k.Line)
			}
			continue
		}
		if dup[k.Value] {
			if problems != nil {
				problems.Add("line %d: duplicate key %q", k.Line, k.Value)
			}
			continue
		}
		dup[k.Value] = true
		out = append(out, entry{key: k.Value, line: k.Line, value: resolve(n.Content[i+1])})
	}
	return out
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

var errNull = errors.New("is null")

func number(n *yaml.Node) (float64, error) {
	if n.Kind != yaml.ScalarNode {
		return 0, errors.New("is not a number")
	}
	switch n.ShortTag() {
	case "!!null":
		return 0, errNull
	case "!!int", "!!float":
		var v float64
		if err := n.Decode(&v); err != nil {
			return 0, err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("is not finite (%s)", n.Value)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("is not a number (%q)", n.Value)
	}
}
