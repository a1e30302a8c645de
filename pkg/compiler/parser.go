package compiler

import "strconv"

// Parser consumes the flat token slice produced by the Lexer and builds
// the typed AST.
//
// Grammar:
//
//	program    = definition* EOF
//	definition = type IDENT ( "(" params? ")" block          // function
//	           | ("[" expr "]")? ("=" (expr | STRING))? ";") // global field
//	params     = type ("*")? IDENT ("," type ("*")? IDENT)*
//	type       = "int" | "char" | "void"
//	block      = "{" statement* "}"
//	statement  = varDecl | block | if | while | for | switch
//	           | "break" ";" | "continue" ";" | "return" expr? ";"
//	           | expr ";"
//	varDecl    = type IDENT ("[" expr "]")? ("=" expr)? ";"
//	if         = "if" "(" expr ")" body ("else" body)?
//	while      = "while" "(" expr ")" body
//	for        = "for" "(" forInit? ";" expr ";" expr ")" body
//	switch     = "switch" "(" expr ")" "{" (caseItem | statement)* "}"
//	caseItem   = "case" expr ":" | "default" ":"
//	expr       = assignment
//	assignment = lvalue "=" assignment | logicalOr
//	logicalOr  = logicalAnd ("||" logicalAnd)*
//	logicalAnd = bitwiseOr ("&&" bitwiseOr)*
//	bitwiseOr  = bitwiseXor ("|" bitwiseXor)*
//	bitwiseXor = bitwiseAnd ("^" bitwiseAnd)*
//	bitwiseAnd = equality ("&" equality)*
//	equality   = relational (("=="|"!=") relational)*
//	relational = additive (("<"|"<="|">"|">=") additive)*
//	additive   = multiplicative (("+"|"-") multiplicative)*
//	multiplicative = unary (("*"|"/") unary)*
//	unary      = ("+"|"-"|"~"|"!") unary | primary
//	primary    = INTEGER | IDENT ("[" expr "]" | "(" args ")")? | "(" expr ")"
//
// A varDecl with an initializer desugars into the plain declaration
// followed by an assignment statement.
type Parser struct {
	tokens []Token
	pos    int
	file   string
}

func NewParser(tokens []Token, filename string) *Parser {
	return &Parser{tokens: tokens, file: filename}
}

// Parse runs a full pass over the tokens and returns the program root.
func Parse(tokens []Token, filename string) (*Program, error) {
	return NewParser(tokens, filename).parseProgram()
}

// loc converts a token position into a source location.
func (p *Parser) loc(tok Token) Location {
	l := locationOf(tok)
	l.File = p.file
	return l
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise errors.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.advance()
	if tok.Type != tt {
		return tok, syntaxErrorf(p.loc(tok), "expected %s, got %s (%q)", tt, tok.Type, tok.Lexeme)
	}
	return tok, nil
}

func isTypeToken(tt TokenType) bool {
	return tt == INT || tt == CHAR || tt == VOID
}

// parseType consumes a type keyword.
func (p *Parser) parseType() (SymbolType, Token, error) {
	tok := p.advance()
	switch tok.Type {
	case INT:
		return intType, tok, nil
	case CHAR:
		return charType, tok, nil
	case VOID:
		return voidType, tok, nil
	}
	return nil, tok, syntaxErrorf(p.loc(tok), "expected a type, got %s (%q)", tok.Type, tok.Lexeme)
}

func (p *Parser) parseProgram() (*Program, error) {
	var definitions []Definition
	for p.peek().Type != EOF {
		d, err := p.parseDefinition()
		if err != nil {
			return nil, err
		}
		definitions = append(definitions, d)
	}
	return NewProgram(definitions), nil
}

func (p *Parser) parseDefinition() (Definition, error) {
	typ, typTok, err := p.parseType()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}

	if p.peek().Type == LPAREN {
		return p.parseFunctionDefinition(typ, typTok, nameTok)
	}
	return p.parseFieldDefinition(typ, typTok, nameTok)
}

func (p *Parser) parseFieldDefinition(typ SymbolType, typTok, nameTok Token) (Definition, error) {
	if typ.Equal(voidType) {
		return nil, syntaxErrorf(p.loc(typTok), "a variable cannot have type \"void\"")
	}
	loc := p.loc(typTok).Span(p.loc(nameTok))

	if p.peek().Type == LBRACKET {
		arrayType, err := p.parseArraySuffix(typ.(ValueType))
		if err != nil {
			return nil, err
		}
		typ = arrayType
	}

	if p.peek().Type != ASSIGN {
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		return NewFieldDefinition(nameTok.Lexeme, typ, loc), nil
	}

	p.advance() // consume '='
	var value Expression
	if tok := p.peek(); tok.Type == STRING {
		p.advance()
		value = NewStringLiteral(tok.Lexeme, p.loc(tok))
	} else {
		exp, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		value = exp
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return NewFieldDefinitionValue(nameTok.Lexeme, typ, value, loc)
}

// parseArraySuffix consumes "[ size ]" and builds the array type. The size
// must fold to a positive constant.
func (p *Parser) parseArraySuffix(elem ValueType) (ArrayType, error) {
	open := p.advance() // consume '['
	sizeExp, err := p.parseExpression()
	if err != nil {
		return ArrayType{}, err
	}
	if _, err := p.expect(RBRACKET); err != nil {
		return ArrayType{}, err
	}

	size, ok := integralIfNeeded(sizeExp).Precompute()
	if !ok {
		return ArrayType{}, syntaxErrorf(p.loc(open).Span(sizeExp.Loc()),
			"array size must be a compile-time constant expression")
	}
	if size <= 0 {
		return ArrayType{}, syntaxErrorf(p.loc(open).Span(sizeExp.Loc()),
			"array size must be positive")
	}
	return NewArrayType(elem, int(size)), nil
}

func (p *Parser) parseFunctionDefinition(typ SymbolType, typTok, nameTok Token) (Definition, error) {
	p.advance() // consume '('

	var params []*VariableDeclaration
	if p.peek().Type != RPAREN {
		for {
			param, err := p.parseParameter()
			if err != nil {
				return nil, err
			}
			params = append(params, param)

			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	loc := p.loc(typTok).Span(p.loc(nameTok))
	if nameTok.Lexeme == "main" {
		if len(params) > 0 {
			return nil, syntaxErrorf(params[0].Loc(), "main cannot have parameters")
		}
		return NewMainFunctionDefinition(typ, body, loc), nil
	}
	return NewFunctionDefinition(nameTok.Lexeme, typ, params, body, loc)
}

// parseParameter consumes one parameter declaration. Pointer types are
// legal here and nowhere else.
func (p *Parser) parseParameter() (*VariableDeclaration, error) {
	typ, typTok, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if typ.Equal(voidType) {
		return nil, syntaxErrorf(p.loc(typTok), "a parameter cannot have type \"void\"")
	}

	if p.peek().Type == STAR {
		p.advance()
		typ = PointerType{Elem: typ.(ValueType)}
	}

	nameTok, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	return NewVariableDeclaration(nameTok.Lexeme, typ, p.loc(typTok).Span(p.loc(nameTok))), nil
}

func (p *Parser) parseBlock() (*StatementBlock, error) {
	open, err := p.expect(LBRACE)
	if err != nil {
		return nil, err
	}
	var statements []Statement
	for p.peek().Type != RBRACE && p.peek().Type != EOF {
		stmts, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmts...)
	}
	closing, err := p.expect(RBRACE)
	if err != nil {
		return nil, err
	}
	return NewStatementBlock(statements, p.loc(open).Span(p.loc(closing))), nil
}

// parseBody consumes either a braced block or a single statement promoted
// to a block of one.
func (p *Parser) parseBody() (*StatementBlock, error) {
	if p.peek().Type == LBRACE {
		return p.parseBlock()
	}
	tok := p.peek()
	stmts, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return NewStatementBlock(stmts, p.loc(tok)), nil
}

// parseStatement returns one or more statements: declarations with an
// initializer desugar into a declaration plus an assignment.
func (p *Parser) parseStatement() ([]Statement, error) {
	tok := p.peek()
	switch tok.Type {
	case INT, CHAR, VOID:
		return p.parseVariableDeclaration()

	case LBRACE:
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return []Statement{block}, nil

	case IF:
		s, err := p.parseIf()
		if err != nil {
			return nil, err
		}
		return []Statement{s}, nil

	case WHILE:
		s, err := p.parseWhile()
		if err != nil {
			return nil, err
		}
		return []Statement{s}, nil

	case FOR:
		s, err := p.parseFor()
		if err != nil {
			return nil, err
		}
		return []Statement{s}, nil

	case SWITCH:
		s, err := p.parseSwitch()
		if err != nil {
			return nil, err
		}
		return []Statement{s}, nil

	case BREAK:
		p.advance()
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		return []Statement{NewBreakStatement(p.loc(tok))}, nil

	case CONTINUE:
		p.advance()
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		return []Statement{NewContinueStatement(p.loc(tok))}, nil

	case RETURN:
		p.advance()
		var exp Expression
		if p.peek().Type != SEMICOLON {
			e, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			exp = e
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		return []Statement{NewReturnStatement(exp, p.loc(tok))}, nil

	default:
		exp, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		return []Statement{NewExpressionStatement(exp)}, nil
	}
}

// parseVariableDeclaration consumes "type name [size]? (= expr)? ;" and
// desugars any initializer into a separate assignment statement.
func (p *Parser) parseVariableDeclaration() ([]Statement, error) {
	stmts, err := p.parseVariableDeclarationClause()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return stmts, nil
}

// parseVariableDeclarationClause is the declaration without its trailing
// semicolon, shared with the for-initializer.
func (p *Parser) parseVariableDeclarationClause() ([]Statement, error) {
	typ, typTok, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if typ.Equal(voidType) {
		return nil, syntaxErrorf(p.loc(typTok), "a variable cannot have type \"void\"")
	}
	nameTok, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}

	if p.peek().Type == LBRACKET {
		arrayType, err := p.parseArraySuffix(typ.(ValueType))
		if err != nil {
			return nil, err
		}
		typ = arrayType
	}

	loc := p.loc(typTok).Span(p.loc(nameTok))
	decl := NewVariableDeclaration(nameTok.Lexeme, typ, loc)
	stmts := []Statement{decl}

	if p.peek().Type == ASSIGN {
		assignTok := p.advance()
		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		if isArrayType(typ) {
			return nil, syntaxErrorf(p.loc(assignTok), "a local array cannot have an initializer")
		}
		target := NewVariableExpr(nameTok.Lexeme, p.loc(nameTok))
		stmts = append(stmts, NewExpressionStatement(NewAssignmentExpr(target, value)))
	}
	return stmts, nil
}

func (p *Parser) parseIf() (*IfElseStatement, error) {
	ifTok := p.advance()
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	condition, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}

	thenBlock, err := p.parseBody()
	if err != nil {
		return nil, err
	}

	elseBlock := NewStatementBlock(nil, p.loc(ifTok))
	if p.peek().Type == ELSE {
		p.advance()
		elseBlock, err = p.parseBody()
		if err != nil {
			return nil, err
		}
	}
	return NewIfElseStatement(condition, thenBlock, elseBlock, p.loc(ifTok)), nil
}

func (p *Parser) parseWhile() (*WhileStatement, error) {
	whileTok := p.advance()
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	condition, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return NewWhileStatement(condition, body, p.loc(whileTok)), nil
}

func (p *Parser) parseFor() (*ForStatement, error) {
	forTok := p.advance()
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}

	var initializer []Statement
	if p.peek().Type != SEMICOLON {
		if isTypeToken(p.peek().Type) {
			stmts, err := p.parseVariableDeclarationClause()
			if err != nil {
				return nil, err
			}
			initializer = stmts
		} else {
			for {
				exp, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				initializer = append(initializer, NewExpressionStatement(exp))
				if p.peek().Type != COMMA {
					break
				}
				p.advance()
			}
		}
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}

	condition, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}

	step, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return NewForStatement(initializer, condition, NewExpressionStatement(step), body, p.loc(forTok)), nil
}

func (p *Parser) parseSwitch() (*SwitchStatement, error) {
	switchTok := p.advance()
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	scrutinee, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(LBRACE); err != nil {
		return nil, err
	}

	s := NewSwitchStatement(p.loc(switchTok))
	s.SetExpression(scrutinee)

	for p.peek().Type != RBRACE && p.peek().Type != EOF {
		switch tok := p.peek(); tok.Type {
		case CASE:
			p.advance()
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			colon, err := p.expect(COLON)
			if err != nil {
				return nil, err
			}
			if err := s.AddCase(value, p.loc(tok).Span(p.loc(colon))); err != nil {
				return nil, err
			}

		case DEFAULT:
			p.advance()
			colon, err := p.expect(COLON)
			if err != nil {
				return nil, err
			}
			if err := s.AddDefaultCase(p.loc(tok).Span(p.loc(colon))); err != nil {
				return nil, err
			}

		default:
			stmts, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			for _, stmt := range stmts {
				if err := s.AddStatement(stmt); err != nil {
					return nil, err
				}
			}
		}
	}
	if _, err := p.expect(RBRACE); err != nil {
		return nil, err
	}
	return s, nil
}

//  Expressions

func (p *Parser) parseExpression() (Expression, error) {
	return p.parseAssignment()
}

// parseAssignment handles right-associative assignment to an l-value.
func (p *Parser) parseAssignment() (Expression, error) {
	left, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != ASSIGN {
		return left, nil
	}

	assignTok := p.advance()
	lvalue, ok := left.(LValue)
	if !ok {
		return nil, syntaxErrorf(p.loc(assignTok), "expression is not assignable")
	}
	value, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return NewAssignmentExpr(lvalue, value), nil
}

func (p *Parser) parseLogicalOr() (Expression, error) {
	exp, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == OR_LOGICAL {
		p.advance()
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		exp = NewBinaryLogical("||", exp, right)
	}
	return exp, nil
}

func (p *Parser) parseLogicalAnd() (Expression, error) {
	exp, err := p.parseBitwiseOr()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == AND_LOGICAL {
		p.advance()
		right, err := p.parseBitwiseOr()
		if err != nil {
			return nil, err
		}
		exp = NewBinaryLogical("&&", exp, right)
	}
	return exp, nil
}

func (p *Parser) parseBitwiseOr() (Expression, error) {
	exp, err := p.parseBitwiseXor()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == PIPE {
		p.advance()
		right, err := p.parseBitwiseXor()
		if err != nil {
			return nil, err
		}
		exp = NewBinaryIntegral("|", exp, right)
	}
	return exp, nil
}

func (p *Parser) parseBitwiseXor() (Expression, error) {
	exp, err := p.parseBitwiseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == CARET {
		p.advance()
		right, err := p.parseBitwiseAnd()
		if err != nil {
			return nil, err
		}
		exp = NewBinaryIntegral("^", exp, right)
	}
	return exp, nil
}

func (p *Parser) parseBitwiseAnd() (Expression, error) {
	exp, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == AND {
		p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		exp = NewBinaryIntegral("&", exp, right)
	}
	return exp, nil
}

func (p *Parser) parseEquality() (Expression, error) {
	exp, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == EQUALS || p.peek().Type == NOT_EQ {
		op := p.advance().Lexeme
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		exp = NewRelational(op, exp, right)
	}
	return exp, nil
}

func (p *Parser) parseRelational() (Expression, error) {
	exp, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		tt := p.peek().Type
		if tt != LESS && tt != GREATER && tt != LESS_EQ && tt != GREATER_EQ {
			break
		}
		op := p.advance().Lexeme
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		exp = NewRelational(op, exp, right)
	}
	return exp, nil
}

func (p *Parser) parseAdditive() (Expression, error) {
	exp, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == PLUS || p.peek().Type == MINUS {
		op := p.advance().Lexeme
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		exp = NewBinaryIntegral(op, exp, right)
	}
	return exp, nil
}

func (p *Parser) parseMultiplicative() (Expression, error) {
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == STAR || p.peek().Type == SLASH {
		op := p.advance().Lexeme
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		exp = NewBinaryIntegral(op, exp, right)
	}
	return exp, nil
}

func (p *Parser) parseUnary() (Expression, error) {
	switch tok := p.peek(); tok.Type {
	case PLUS, MINUS, TILDE:
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return NewUnaryIntegral(tok.Lexeme, right, p.loc(tok)), nil

	case NOT:
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return NewUnaryLogical("!", right, p.loc(tok)), nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expression, error) {
	tok := p.advance()
	switch tok.Type {
	case INTEGER:
		value, err := strconv.ParseInt(tok.Lexeme, 0, 64)
		if err != nil {
			return nil, syntaxErrorf(p.loc(tok), "invalid integer literal %q", tok.Lexeme)
		}
		return NewConstant(int32(value), p.loc(tok)), nil

	case LPAREN:
		exp, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return exp, nil

	case IDENTIFIER:
		switch p.peek().Type {
		case LBRACKET:
			p.advance()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			closing, err := p.expect(RBRACKET)
			if err != nil {
				return nil, err
			}
			return NewArrayAccess(tok.Lexeme, index, p.loc(tok).Span(p.loc(closing))), nil

		case LPAREN:
			p.advance()
			var args []Expression
			if p.peek().Type != RPAREN {
				for {
					arg, err := p.parseExpression()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if p.peek().Type != COMMA {
						break
					}
					p.advance()
				}
			}
			closing, err := p.expect(RPAREN)
			if err != nil {
				return nil, err
			}
			return NewFunctionCall(tok.Lexeme, args, p.loc(tok).Span(p.loc(closing)))
		}
		return NewVariableExpr(tok.Lexeme, p.loc(tok)), nil
	}
	return nil, syntaxErrorf(p.loc(tok), "unexpected token %s (%q)", tok.Type, tok.Lexeme)
}
