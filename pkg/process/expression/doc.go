// Package expression evaluates sandboxed embedded expressions against
// per-process-instance variable contexts.
//
// Expressions are wrapped as ${...} and restricted by a whitelist to
// numeric literals, bare identifiers, and arithmetic chains over
// + - * /. Anything outside that grammar is rejected before it can
// reach the expression engine:
//
//	${amount}          variable lookup
//	${a + b * 2}       arithmetic with conventional precedence
//	${total / 4}       division
//
// Evaluation resolves against the variable context of the given
// instance, falling back to ancestor contexts, or, from a root
// instance, searching the entire descendant subtree. The root/non-root
// asymmetry mirrors how orchestration-level variables only become
// resolvable once a sub-process has populated its own context.
//
// The evaluator uses expr-lang/expr and caches compiled programs,
// so repeated evaluation of the same expression text is cheap.
package expression
