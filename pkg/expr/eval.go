package expr

import (
	"fmt"
)

// BreachName is the binding every logic program must end up assigning; its
// boolean value is the check outcome.
const BreachName = "breach"

// Result holds the outcome of evaluating a logic program: the final breach
// verdict plus every named binding the program defined, in declaration
// order, so evidence and metrics can be extracted afterwards.
type Result struct {
	// Breach is the value of the final "breach" binding.
	Breach bool

	// Bindings maps every assigned name to its value.
	Bindings map[string]interface{}

	// Order lists assigned names in declaration order.
	Order []string
}

// Env is the immutable evaluation environment a program runs against:
// bound parameters, input data and temporal values. Comprehension loop
// variables live in child frames and never leak into the environment.
type Env struct {
	parent *Env
	vars   map[string]interface{}
}

// NewEnv creates an environment from the given bindings. The map is not
// copied; callers must not mutate it after evaluation starts.
func NewEnv(vars map[string]interface{}) *Env {
	if vars == nil {
		vars = map[string]interface{}{}
	}
	return &Env{vars: vars}
}

// child creates a nested frame with one additional binding.
func (e *Env) child(name string, value interface{}) *Env {
	return &Env{parent: e, vars: map[string]interface{}{name: value}}
}

// lookup resolves a name through the frame chain.
func (e *Env) lookup(name string) (interface{}, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Eval runs the program against env. Statements execute in order; each
// assignment becomes visible to subsequent statements. The program must
// assign "breach" to a boolean; otherwise Eval fails with a TypeError.
func (p *Program) Eval(env *Env) (*Result, error) {
	result := &Result{Bindings: make(map[string]interface{}, len(p.Statements))}

	// Assigned names shadow environment bindings for later statements.
	frame := &Env{parent: env, vars: result.Bindings}

	for _, stmt := range p.Statements {
		value, err := evalNode(stmt.Expr, frame)
		if err != nil {
			return nil, fmt.Errorf("line %d (%s): %w", stmt.Line, stmt.Name, err)
		}
		if _, seen := result.Bindings[stmt.Name]; !seen {
			result.Order = append(result.Order, stmt.Name)
		}
		result.Bindings[stmt.Name] = value
	}

	breach, ok := result.Bindings[BreachName]
	if !ok {
		return nil, &TypeError{Op: "program", Message: `program never assigns "breach"`}
	}
	b, ok := breach.(bool)
	if !ok {
		return nil, &TypeError{Op: "program", Message: fmt.Sprintf(`"breach" is %s, expected bool`, typeName(breach))}
	}
	result.Breach = b
	return result, nil
}

func evalNode(node Node, env *Env) (interface{}, error) {
	switch n := node.(type) {
	case *NumberLit:
		return n.Value, nil
	case *StringLit:
		return n.Value, nil
	case *BoolLit:
		return n.Value, nil
	case *NullLit:
		return nil, nil

	case *Ident:
		v, ok := env.lookup(n.Name)
		if !ok {
			return nil, &UnboundNameError{Name: n.Name}
		}
		return v, nil

	case *ListLit:
		list := make([]interface{}, 0, len(n.Elems))
		for _, elem := range n.Elems {
			v, err := evalNode(elem, env)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil

	case *Attr:
		return evalAttr(n, env)

	case *Unary:
		return evalUnary(n, env)

	case *Binary:
		return evalBinary(n, env)

	case *Conditional:
		cond, err := evalNode(n.Cond, env)
		if err != nil {
			return nil, err
		}
		b, err := truth(cond, "conditional")
		if err != nil {
			return nil, err
		}
		if b {
			return evalNode(n.Then, env)
		}
		return evalNode(n.Else, env)

	case *Call:
		fn := builtins[n.Func]
		args := make([]interface{}, 0, len(n.Args))
		for _, arg := range n.Args {
			v, err := evalNode(arg, env)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		return fn(args)

	case *Comprehension:
		return evalComprehension(n, env)
	}

	return nil, fmt.Errorf("unsupported node %T", node)
}

func evalAttr(n *Attr, env *Env) (interface{}, error) {
	recv, err := evalNode(n.Receiver, env)
	if err != nil {
		return nil, err
	}
	switch r := recv.(type) {
	case map[string]interface{}:
		// Absent attributes resolve to null so policies can express
		// "field missing" with == null instead of failing.
		return r[n.Name], nil
	case map[string]string:
		if v, ok := r[n.Name]; ok {
			return v, nil
		}
		return nil, nil
	case nil:
		return nil, &TypeError{Op: "attribute", Message: fmt.Sprintf("cannot read %q from null", n.Name)}
	}
	return nil, &TypeError{Op: "attribute", Message: fmt.Sprintf("cannot read %q from %s", n.Name, typeName(recv))}
}

func evalUnary(n *Unary, env *Env) (interface{}, error) {
	v, err := evalNode(n.Operand, env)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "not":
		b, err := truth(v, "not")
		if err != nil {
			return nil, err
		}
		return !b, nil
	case "-":
		num, ok := asNumber(v)
		if !ok {
			return nil, &TypeError{Op: "-", Message: fmt.Sprintf("cannot negate %s", typeName(v))}
		}
		return -num, nil
	}
	return nil, fmt.Errorf("unsupported unary operator %q", n.Op)
}

func evalBinary(n *Binary, env *Env) (interface{}, error) {
	// and/or short-circuit, so the right side is only evaluated on demand.
	if n.Op == "and" || n.Op == "or" {
		left, err := evalNode(n.Left, env)
		if err != nil {
			return nil, err
		}
		lb, err := truth(left, n.Op)
		if err != nil {
			return nil, err
		}
		if (n.Op == "and" && !lb) || (n.Op == "or" && lb) {
			return lb, nil
		}
		right, err := evalNode(n.Right, env)
		if err != nil {
			return nil, err
		}
		return truth(right, n.Op)
	}

	left, err := evalNode(n.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := evalNode(n.Right, env)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "==":
		return valuesEqual(left, right), nil
	case "!=":
		return !valuesEqual(left, right), nil

	case "<", "<=", ">", ">=":
		cmp, err := compareValues(n.Op, left, right)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case "<":
			return cmp < 0, nil
		case "<=":
			return cmp <= 0, nil
		case ">":
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}

	case "in":
		return memberOf(left, right)

	case "+", "-", "*", "/":
		return evalArithmetic(n.Op, left, right)
	}

	return nil, fmt.Errorf("unsupported operator %q", n.Op)
}

func evalArithmetic(op string, left, right interface{}) (interface{}, error) {
	// String concatenation rides on +; everything else is numeric.
	if op == "+" {
		if ls, ok := left.(string); ok {
			rs, ok := right.(string)
			if !ok {
				return nil, &TypeError{Op: "+", Message: fmt.Sprintf("cannot add string and %s", typeName(right))}
			}
			return ls + rs, nil
		}
	}

	ln, ok := asNumber(left)
	if !ok {
		return nil, &TypeError{Op: op, Message: fmt.Sprintf("left operand is %s, expected number", typeName(left))}
	}
	rn, ok := asNumber(right)
	if !ok {
		return nil, &TypeError{Op: op, Message: fmt.Sprintf("right operand is %s, expected number", typeName(right))}
	}

	switch op {
	case "+":
		return ln + rn, nil
	case "-":
		return ln - rn, nil
	case "*":
		return ln * rn, nil
	case "/":
		if rn == 0 {
			return nil, &DivisionByZeroError{}
		}
		return ln / rn, nil
	}
	return nil, fmt.Errorf("unsupported arithmetic operator %q", op)
}

func evalComprehension(n *Comprehension, env *Env) (interface{}, error) {
	source, err := evalNode(n.Source, env)
	if err != nil {
		return nil, err
	}
	list, ok := asList(source)
	if !ok {
		return nil, &TypeError{Op: "comprehension", Message: fmt.Sprintf("source is %s, expected list", typeName(source))}
	}

	out := make([]interface{}, 0, len(list))
	for _, elem := range list {
		frame := env.child(n.Var, elem)
		if n.Cond != nil {
			cond, err := evalNode(n.Cond, frame)
			if err != nil {
				return nil, err
			}
			keep, err := truth(cond, "comprehension filter")
			if err != nil {
				return nil, err
			}
			if !keep {
				continue
			}
		}
		v, err := evalNode(n.Expr, frame)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
