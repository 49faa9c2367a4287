// Package expr implements the restricted expression language used inside a
// check's evaluate.logic block.
//
// A logic program is a sequence of named assignments ending in a "breach"
// assignment:
//
//	non_compliant = [r.display_name for r in resources if r.license_model != "BRING_YOUR_OWN_LICENSE"]
//	breach = count(non_compliant) > 0
//
// The language is closed by design: list comprehensions with a filter
// predicate, the builtins count/sum/len/any_tag, arithmetic, comparisons
// (including over dates), boolean operators, and conditional expressions.
// There is no way to call host code, loop unboundedly, or perform I/O from
// inside a program. Given an identical environment, evaluation is
// deterministic: collections are iterated in their declared order.
package expr
