package expr

// Node is implemented by every expression node in a parsed logic program.
type Node interface {
	// freeNames reports every identifier the node references, excluding
	// names bound by an enclosing comprehension. Used by the static
	// validator to reject unresolvable references before evaluation.
	freeNames(bound map[string]bool, out map[string]bool)
}

// Program is a parsed logic program: an ordered sequence of assignments.
type Program struct {
	// Source is the original program text, kept for diagnostics.
	Source string

	// Statements are the assignments in declaration order.
	Statements []*Assignment
}

// Assignment binds the value of an expression to a name.
type Assignment struct {
	Name string
	Expr Node
	Line int
}

// NumberLit is a numeric literal. All numbers are float64.
type NumberLit struct {
	Value float64
}

// StringLit is a string literal.
type StringLit struct {
	Value string
}

// BoolLit is a boolean literal.
type BoolLit struct {
	Value bool
}

// NullLit is the null literal.
type NullLit struct{}

// Ident is a reference to a bound name.
type Ident struct {
	Name string
	Line int
}

// ListLit is a list literal: [a, b, c].
type ListLit struct {
	Elems []Node
}

// Attr is attribute access: receiver.name (e.g. r.license_model, r.tags).
type Attr struct {
	Receiver Node
	Name     string
}

// Unary is a prefix operation: "not" or numeric negation.
type Unary struct {
	Op      string
	Operand Node
}

// Binary is an infix operation: arithmetic, comparison, membership,
// "and"/"or" (both short-circuit).
type Binary struct {
	Op          string
	Left, Right Node
}

// Conditional is a Python-style conditional expression:
// Then if Cond else Else.
type Conditional struct {
	Cond, Then, Else Node
}

// Call invokes one of the fixed builtins. Arbitrary functions cannot be
// expressed; the parser only accepts calls to known builtin names.
type Call struct {
	Func string
	Args []Node
	Line int
}

// Comprehension is a filtered list comprehension:
// [Expr for Var in Source if Cond]. Cond may be nil.
type Comprehension struct {
	Expr   Node
	Var    string
	Source Node
	Cond   Node
}

func (n *NumberLit) freeNames(bound, out map[string]bool) {}
func (n *StringLit) freeNames(bound, out map[string]bool) {}
func (n *BoolLit) freeNames(bound, out map[string]bool)   {}
func (n *NullLit) freeNames(bound, out map[string]bool)   {}

func (n *Ident) freeNames(bound, out map[string]bool) {
	if !bound[n.Name] {
		out[n.Name] = true
	}
}

func (n *ListLit) freeNames(bound, out map[string]bool) {
	for _, e := range n.Elems {
		e.freeNames(bound, out)
	}
}

func (n *Attr) freeNames(bound, out map[string]bool) {
	n.Receiver.freeNames(bound, out)
}

func (n *Unary) freeNames(bound, out map[string]bool) {
	n.Operand.freeNames(bound, out)
}

func (n *Binary) freeNames(bound, out map[string]bool) {
	n.Left.freeNames(bound, out)
	n.Right.freeNames(bound, out)
}

func (n *Conditional) freeNames(bound, out map[string]bool) {
	n.Cond.freeNames(bound, out)
	n.Then.freeNames(bound, out)
	n.Else.freeNames(bound, out)
}

func (n *Call) freeNames(bound, out map[string]bool) {
	for _, a := range n.Args {
		a.freeNames(bound, out)
	}
}

func (n *Comprehension) freeNames(bound, out map[string]bool) {
	n.Source.freeNames(bound, out)
	inner := make(map[string]bool, len(bound)+1)
	for k := range bound {
		inner[k] = true
	}
	inner[n.Var] = true
	n.Expr.freeNames(inner, out)
	if n.Cond != nil {
		n.Cond.freeNames(inner, out)
	}
}
