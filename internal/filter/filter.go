// Package filter compiles the optional per-item filter expressions carried
// by collect specs. Expressions use expr-lang syntax and are evaluated
// against a flat map of item fields, e.g. `Score > 100 && !Stickied`.
package filter

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

type Program struct {
	source  string
	program *vm.Program
}

// Compile compiles source once for repeated evaluation. An empty source
// returns a nil Program, which keeps every item.
func Compile(source string) (*Program, error) {
	if source == "" {
		return nil, nil
	}
	program, err := expr.Compile(source, expr.Env(map[string]interface{}{}), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", source, err)
	}
	return &Program{source: source, program: program}, nil
}

// Keep evaluates the filter against one item's fields. Non-boolean results
// are an error so typos fail loudly instead of silently dropping items.
func (p *Program) Keep(env map[string]interface{}) (bool, error) {
	if p == nil {
		return true, nil
	}
	result, err := expr.Run(p.program, env)
	if err != nil {
		return false, fmt.Errorf("run filter %q: %w", p.source, err)
	}
	keep, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("filter %q returned %T, want bool", p.source, result)
	}
	return keep, nil
}
