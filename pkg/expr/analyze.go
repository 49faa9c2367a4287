package expr

import "sort"

// FreeNames returns every name the program references before assigning it,
// sorted. Builtin names are not reported. The validator checks this set
// against parameters, declared input bindings and temporal bindings without
// executing the program.
func (p *Program) FreeNames() []string {
	free := make(map[string]bool)
	assigned := make(map[string]bool)

	for _, stmt := range p.Statements {
		stmt.Expr.freeNames(assigned, free)
		assigned[stmt.Name] = true
	}

	names := make([]string, 0, len(free))
	for name := range free {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AssignsBreach reports whether the program assigns the "breach" binding.
func (p *Program) AssignsBreach() bool {
	for _, stmt := range p.Statements {
		if stmt.Name == BreachName {
			return true
		}
	}
	return false
}
