package pagination

import (
	"errors"
	"fmt"

	"github.com/gompdf/scorepdf/internal/failure"
)

// Sentinel pagination errors. Returned wrapped as validation failures.
var (
	ErrNoAttributes    = errors.New("no attributes to report")
	ErrNoIndividuals   = errors.New("no individuals to report")
	ErrInvalidCapacity = errors.New("capacity must be at least 1")
)

// Plan describes one chart: a contiguous slice of attributes charted for a
// contiguous group of individuals.
type Plan struct {
	// Page is the attribute-page index.
	Page int
	// Group is the individual-group index within the page.
	Group int
	// Pages and Groups are the totals the plan was cut from.
	Pages  int
	Groups int
	// FirstAttribute is the offset of Attributes[0] in the full list.
	FirstAttribute int
	// FirstIndividual is the offset of Individuals[0] in the full list.
	FirstIndividual int
	// TotalAttributes and TotalIndividuals are the full list lengths.
	TotalAttributes  int
	TotalIndividuals int

	Attributes  []string
	Individuals []string
}

// Index returns the plan's position in emission order.
func (p Plan) Index() int {
	return p.Page*p.Groups + p.Group
}

// String returns a short label such as "page 1/2 group 3/3".
func (p Plan) String() string {
	return fmt.Sprintf("page %d/%d group %d/%d", p.Page+1, p.Pages, p.Group+1, p.Groups)
}

// Paginator cuts attribute and individual lists into plans.
type Paginator struct {
	AttributeCapacity int
	GroupCapacity     int
}

// NewPaginator creates a new paginator
func NewPaginator(attributeCapacity, groupCapacity int) *Paginator {
	return &Paginator{
		AttributeCapacity: attributeCapacity,
		GroupCapacity:     groupCapacity,
	}
}

// Paginate emits plans row-major: every group of attribute page 0, then
// every group of page 1, and so on.
func (p *Paginator) Paginate(attributes, individuals []string) ([]Plan, error) {
	if p.AttributeCapacity < 1 || p.GroupCapacity < 1 {
		return nil, failure.Validation("paginate", ErrInvalidCapacity)
	}
	if len(attributes) == 0 {
		return nil, failure.Validation("paginate", ErrNoAttributes)
	}
	if len(individuals) == 0 {
		return nil, failure.Validation("paginate", ErrNoIndividuals)
	}

	pages := Chunk(attributes, p.AttributeCapacity)
	groups := Chunk(individuals, p.GroupCapacity)

	plans := make([]Plan, 0, len(pages)*len(groups))
	for pi, attrs := range pages {
		for gi, members := range groups {
			plans = append(plans, Plan{
				Page:             pi,
				Group:            gi,
				Pages:            len(pages),
				Groups:           len(groups),
				FirstAttribute:   pi * p.AttributeCapacity,
				FirstIndividual:  gi * p.GroupCapacity,
				TotalAttributes:  len(attributes),
				TotalIndividuals: len(individuals),
				Attributes:       attrs,
				Individuals:      members,
			})
		}
	}
	return plans, nil
}

// Chunk splits items into contiguous slices of at most size elements,
// preserving order. The returned slices are copies.
func Chunk(items []string, size int) [][]string {
	if size < 1 || len(items) == 0 {
		return nil
	}
	out := make([][]string, 0, PageCount(len(items), size))
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, append([]string(nil), items[start:end]...))
	}
	return out
}

// PageCount returns ceil(n/size).
func PageCount(n, size int) int {
	if n <= 0 || size < 1 {
		return 0
	}
	return (n + size - 1) / size
}
