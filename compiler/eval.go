package compiler

import "github.com/kvasm/vm32/parser"

// evalStatus reports how far constant folding got evaluating one Expr.
type evalStatus int

const (
	evalOK evalStatus = iota
	// evalUnresolved means the expression references a label not yet in
	// the label map; the caller should retry on a later fixed-point pass.
	evalUnresolved
	// evalError means folding hit a hard failure (division by zero) that
	// will never resolve by retrying.
	evalError
)

// evalExpr recursively folds e using wrapping 32-bit arithmetic, resolving
// label references against labels. Division by zero produces a
// CannotCompileExpression diagnostic pinned to the dividing sub-expression's
// span, per the compiler's fixed-point contract.
func evalExpr(e parser.Expr, labels map[string]uint32) (uint32, evalStatus, parser.Diagnostic) {
	switch n := e.(type) {
	case *parser.IntLit:
		return n.Value, evalOK, parser.Diagnostic{}
	case *parser.LabelRefExpr:
		v, ok := labels[n.Name]
		if !ok {
			return 0, evalUnresolved, parser.Diagnostic{}
		}
		return v, evalOK, parser.Diagnostic{}
	case *parser.BinExpr:
		l, ls, lerr := evalExpr(n.Left, labels)
		if ls == evalError {
			return 0, evalError, lerr
		}
		r, rs, rerr := evalExpr(n.Right, labels)
		if rs == evalError {
			return 0, evalError, rerr
		}
		if ls == evalUnresolved || rs == evalUnresolved {
			return 0, evalUnresolved, parser.Diagnostic{}
		}
		switch n.Op {
		case parser.OpAdd:
			return l + r, evalOK, parser.Diagnostic{}
		case parser.OpSub:
			return l - r, evalOK, parser.Diagnostic{}
		case parser.OpMul:
			return l * r, evalOK, parser.Diagnostic{}
		case parser.OpDiv:
			if r == 0 {
				return 0, evalError, parser.Diagnostic{
					Span:    n.Span,
					Tag:     parser.CannotCompileExpression,
					Message: "division by zero",
				}
			}
			return l / r, evalOK, parser.Diagnostic{}
		}
	}
	return 0, evalError, parser.Diagnostic{Tag: parser.CannotCompileExpression, Message: "malformed expression"}
}
