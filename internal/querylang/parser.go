package querylang

import "querykit/internal/predicate"

// Parser parses a query string into an AST.
//
// Grammar (EBNF):
//
//	query      = or_expr EOF
//	or_expr    = and_expr ( "OR" and_expr )*
//	and_expr   = unary_expr ( [ "AND" ] unary_expr )*
//	unary_expr = "NOT" unary_expr | primary
//	primary    = "(" or_expr ")" | comparison
//	comparison = WORD op literal
//	op         = "=" | "==" | "!=" | "<>" | "<" | "<=" | ">" | ">="
//	literal    = WORD
//
// Precedence (highest to lowest):
//  1. Parentheses
//  2. NOT (prefix, right-associative)
//  3. AND (implicit or explicit)
//  4. OR
type parser struct {
	lex *Lexer
	cur Token
}

// Parse parses a query string into an AST. # starts a comment that runs to
// the end of the line.
func Parse(input string) (Expr, error) {
	p := &parser{lex: NewLexer(StripComments(input))}

	// Prime the parser with the first token.
	if err := p.advance(); err != nil {
		return nil, err
	}

	// Check for empty query.
	if p.cur.Kind == TokEOF {
		return nil, newParseError(0, ErrEmptyQuery, "empty query")
	}

	expr, err := p.parseOrExpr()
	if err != nil {
		return nil, err
	}

	// Ensure we consumed all input.
	switch p.cur.Kind {
	case TokEOF:
		return expr, nil
	case TokRParen:
		return nil, newParseError(p.cur.Pos, ErrUnmatchedParen, "unmatched closing parenthesis")
	default:
		return nil, newParseError(p.cur.Pos, ErrUnexpectedToken, "unexpected token: %s", p.cur.Lit)
	}
}

// advance moves to the next token.
func (p *parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

// parseOrExpr parses: or_expr = and_expr ( "OR" and_expr )*
func (p *parser) parseOrExpr() (Expr, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}

	for p.cur.Kind == TokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}

		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}

		left = flattenOr(left, right)
	}

	return left, nil
}

// parseAndExpr parses: and_expr = unary_expr ( [ "AND" ] unary_expr )*
func (p *parser) parseAndExpr() (Expr, error) {
	left, err := p.parseUnaryExpr()
	if err != nil {
		return nil, err
	}

	for p.isAndStart() {
		// Consume optional AND keyword.
		if p.cur.Kind == TokAnd {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}

		right, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}

		left = flattenAnd(left, right)
	}

	return left, nil
}

// isAndStart returns true if the current token is an explicit AND or could
// start another unary_expr in an implicit AND sequence.
func (p *parser) isAndStart() bool {
	switch p.cur.Kind {
	case TokAnd, TokNot, TokLParen, TokWord:
		return true
	default:
		return false
	}
}

// parseUnaryExpr parses: unary_expr = "NOT" unary_expr | primary
func (p *parser) parseUnaryExpr() (Expr, error) {
	if p.cur.Kind == TokNot {
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}

		// Check for something after NOT.
		if p.cur.Kind == TokEOF {
			return nil, newParseError(pos, ErrUnexpectedEOF, "expected expression after NOT")
		}
		if p.cur.Kind == TokOr || p.cur.Kind == TokAnd || p.cur.Kind == TokRParen {
			return nil, newParseError(p.cur.Pos, ErrUnexpectedToken, "expected expression after NOT, got %s", p.cur.Kind)
		}

		term, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}

		return &NotExpr{Term: term}, nil
	}

	return p.parsePrimary()
}

// parsePrimary parses: primary = "(" or_expr ")" | comparison
func (p *parser) parsePrimary() (Expr, error) {
	if p.cur.Kind == TokLParen {
		openPos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}

		// Check for empty parens.
		if p.cur.Kind == TokRParen {
			return nil, newParseError(openPos, ErrEmptyQuery, "empty parentheses")
		}

		expr, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}

		if p.cur.Kind != TokRParen {
			return nil, newParseError(openPos, ErrUnmatchedParen, "unmatched opening parenthesis")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}

		return expr, nil
	}

	return p.parseComparison()
}

// parseComparison parses: comparison = WORD op literal
func (p *parser) parseComparison() (Expr, error) {
	switch p.cur.Kind {
	case TokEOF:
		return nil, newParseError(p.cur.Pos, ErrUnexpectedEOF, "unexpected end of query")
	case TokOr, TokAnd:
		return nil, newParseError(p.cur.Pos, ErrUnexpectedToken, "unexpected keyword %s", p.cur.Lit)
	case TokRParen:
		return nil, newParseError(p.cur.Pos, ErrUnmatchedParen, "unmatched closing parenthesis")
	case TokOp:
		return nil, newParseError(p.cur.Pos, ErrUnexpectedToken, "unexpected '%s', expected column name", p.cur.Lit)
	}

	col := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.cur.Kind == TokEOF {
		return nil, newParseError(p.cur.Pos, ErrUnexpectedEOF, "expected operator after %s", col.Lit)
	}
	if p.cur.Kind != TokOp {
		return nil, newParseError(p.cur.Pos, ErrUnexpectedToken, "expected operator after %s, got %s", col.Lit, p.cur.Kind)
	}
	op, err := predicate.ParseOperator(p.cur.Lit)
	if err != nil {
		return nil, newParseError(p.cur.Pos, ErrUnexpectedToken, "%v", err)
	}
	opPos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}

	// Keywords are accepted as literals: level = not is a comparison with "not".
	switch p.cur.Kind {
	case TokWord, TokAnd, TokOr, TokNot:
	case TokEOF:
		return nil, newParseError(opPos, ErrUnexpectedEOF, "expected value after %s", op)
	default:
		return nil, newParseError(p.cur.Pos, ErrUnexpectedToken, "expected value after %s, got %s", op, p.cur.Kind)
	}
	val := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}

	return &CompareExpr{
		Column:    col.Lit,
		Op:        op,
		Value:     val.Lit,
		Quoted:    val.Quoted,
		ColumnPos: col.Pos,
		ValuePos:  val.Pos,
	}, nil
}
