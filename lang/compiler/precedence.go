package compiler

import "github.com/rox-lang/rox/lang/token"

// Precedence orders binding strength from loosest to tightest, following the
// Pratt table laid out in spec.md §4.4.
type Precedence int

const (
	precNone       Precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // ( )
	precPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

var rules map[token.Kind]parseRule

func init() {
	rules = map[token.Kind]parseRule{
		token.LPAREN: {prefix: (*Compiler).grouping, infix: (*Compiler).call, precedence: precCall},
		token.MINUS:  {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: precTerm},
		token.PLUS:   {infix: (*Compiler).binary, precedence: precTerm},
		token.SLASH:  {infix: (*Compiler).binary, precedence: precFactor},
		token.STAR:   {infix: (*Compiler).binary, precedence: precFactor},
		token.BANG:   {prefix: (*Compiler).unary},
		token.BANGEQ: {infix: (*Compiler).binary, precedence: precEquality},
		token.EQEQ:   {infix: (*Compiler).binary, precedence: precEquality},
		token.GT:     {infix: (*Compiler).binary, precedence: precComparison},
		token.GTEQ:   {infix: (*Compiler).binary, precedence: precComparison},
		token.LT:     {infix: (*Compiler).binary, precedence: precComparison},
		token.LTEQ:   {infix: (*Compiler).binary, precedence: precComparison},
		token.IDENT:  {prefix: (*Compiler).variable},
		token.STRING: {prefix: (*Compiler).stringLiteral},
		token.NUMBER: {prefix: (*Compiler).number},
		token.AND:    {infix: (*Compiler).and_, precedence: precAnd},
		token.OR:     {infix: (*Compiler).or_, precedence: precOr},
		token.FALSE:  {prefix: (*Compiler).literal},
		token.TRUE:   {prefix: (*Compiler).literal},
		token.NIL:    {prefix: (*Compiler).literal},
	}
}

func getRule(k token.Kind) parseRule { return rules[k] }
