package pagination

import (
	"github.com/gompdf/scorepdf/internal/failure"
)

// Default page capacities.
const (
	DefaultAttributeCapacity = 12
	DefaultGroupCapacity     = 3
)

// Options represents options for the pagination engine
type Options struct {
	// AttributeCapacity is the number of attributes charted per page.
	AttributeCapacity int
	// GroupCapacity is the number of individuals charted side by side.
	GroupCapacity int
}

// Validate reports capacities below one.
func (o Options) Validate() error {
	var problems failure.Problems
	if o.AttributeCapacity < 1 {
		problems.Add("attribute capacity must be at least 1, got %d", o.AttributeCapacity)
	}
	if o.GroupCapacity < 1 {
		problems.Add("group capacity must be at least 1, got %d", o.GroupCapacity)
	}
	if err := problems.Err(); err != nil {
		return failure.Validation("paginate", err)
	}
	return nil
}

// Engine handles the pagination process
type Engine struct {
	options Options
}

// NewEngine creates a new pagination engine
func NewEngine() *Engine {
	return &Engine{
		options: Options{
			AttributeCapacity: DefaultAttributeCapacity,
			GroupCapacity:     DefaultGroupCapacity,
		},
	}
}

// SetOptions sets the options for the pagination engine
func (e *Engine) SetOptions(options Options) {
	e.options = options
}

// Options returns the current options.
func (e *Engine) Options() Options {
	return e.options
}

// Paginate splits attributes and individuals into page plans.
func (e *Engine) Paginate(attributes, individuals []string) ([]Plan, error) {
	if err := e.options.Validate(); err != nil {
		return nil, err
	}
	paginator := NewPaginator(e.options.AttributeCapacity, e.options.GroupCapacity)
	return paginator.Paginate(attributes, individuals)
}
