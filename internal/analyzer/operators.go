package analyzer

import "github.com/klein-martifex/jackc/internal/token"

// opCategory groups Expression's binary operators into the three
// compatibility classes the analyzer checks.
type opCategory int

const (
	opArithmetic opCategory = iota
	opRelational
	opBoolean
)

func categoryOf(op token.Type) opCategory {
	switch op {
	case token.LT, token.GT, token.EQUAL:
		return opRelational
	case token.AMPERSAND, token.BAR:
		return opBoolean
	default:
		return opArithmetic
	}
}
