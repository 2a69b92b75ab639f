package compiler

import (
	"fmt"

	"github.com/chazu/wisp/bytecode"
)

// This file is wisp's single-pass Pratt compiler: there is no separate
// AST stage. Each parse function both consumes tokens and emits bytecode
// directly into the chunk under construction. chazu-maggie's own
// compiler/parser.go builds a full Smalltalk AST first and lowers it in
// a later codegen pass (compiler/codegen.go); that two-pass shape doesn't
// fit a single-pass compiler, so only its token-stream plumbing
// (advance/consume/check/match, panic-mode error recovery) is carried
// over — grounded on compiler/parser.go's same-named methods — while the
// Pratt table and code emission are written fresh for the Lox grammar.

type Precedence int

const (
	PrecNone       Precedence = iota
	PrecAssignment            // =
	PrecOr                    // or
	PrecAnd                   // and
	PrecEquality              // == !=
	PrecComparison            // < > <= >=
	PrecTerm                  // + -
	PrecFactor                // * /
	PrecUnary                 // ! -
	PrecCall                  // . ()
	PrecPrimary
)

type parseFn func(p *Parser, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

var rules map[TokenType]parseRule

func init() {
	rules = map[TokenType]parseRule{
		TokenLeftParen:    {(*Parser).grouping, (*Parser).call, PrecCall},
		TokenDot:          {nil, (*Parser).dot, PrecCall},
		TokenMinus:        {(*Parser).unary, (*Parser).binary, PrecTerm},
		TokenPlus:         {nil, (*Parser).binary, PrecTerm},
		TokenSlash:        {nil, (*Parser).binary, PrecFactor},
		TokenStar:         {nil, (*Parser).binary, PrecFactor},
		TokenBang:         {(*Parser).unary, nil, PrecNone},
		TokenBangEqual:    {nil, (*Parser).binary, PrecEquality},
		TokenEqualEqual:   {nil, (*Parser).binary, PrecEquality},
		TokenGreater:      {nil, (*Parser).binary, PrecComparison},
		TokenGreaterEqual: {nil, (*Parser).binary, PrecComparison},
		TokenLess:         {nil, (*Parser).binary, PrecComparison},
		TokenLessEqual:    {nil, (*Parser).binary, PrecComparison},
		TokenIdentifier:   {(*Parser).variable, nil, PrecNone},
		TokenString:       {(*Parser).string_, nil, PrecNone},
		TokenNumber:       {(*Parser).number, nil, PrecNone},
		TokenAnd:          {nil, (*Parser).and_, PrecAnd},
		TokenOr:           {nil, (*Parser).or_, PrecOr},
		TokenFalse:        {(*Parser).literal, nil, PrecNone},
		TokenNil:          {(*Parser).literal, nil, PrecNone},
		TokenTrue:         {(*Parser).literal, nil, PrecNone},
		TokenThis:         {(*Parser).this_, nil, PrecNone},
		TokenSuper:        {(*Parser).super_, nil, PrecNone},
	}
}

func (p *Parser) ruleFor(t TokenType) parseRule {
	if r, ok := rules[t]; ok {
		return r
	}
	return parseRule{nil, nil, PrecNone}
}

type funcType int

const (
	typeFunction funcType = iota
	typeInitializer
	typeMethod
	typeScript
)

type local struct {
	name       string
	depth      int
	isCaptured bool
}

type upvalueRef struct {
	index   byte
	isLocal bool
}

// fnCompiler tracks per-function compile state, chained through
// `enclosing`: one instance per function body currently being compiled,
// with its own locals array, scope depth, and upvalue list.
type fnCompiler struct {
	enclosing  *fnCompiler
	function   *bytecode.Obj
	kind       funcType
	locals     []local
	scopeDepth int
	upvalues   []upvalueRef
}

type classCompiler struct {
	enclosing *classCompiler
}

// Parser is the single compilation session: scanner plus Pratt state
// plus the chain of in-progress function compilers.
type Parser struct {
	scanner *Scanner
	strings *bytecode.Table

	current  Token
	previous Token

	hadError  bool
	panicMode bool
	errors    []error

	fc *fnCompiler
	cc *classCompiler
}

// Compile compiles source into a top-level function Obj (a script body
// with arity 0), wrapping every identifier and string literal in the
// supplied intern table so that globals and field names compare equal by
// identity at runtime.
func Compile(source string, strings *bytecode.Table) (*bytecode.Obj, []error) {
	p := &Parser{scanner: NewScanner(source), strings: strings}
	p.fc = &fnCompiler{function: bytecode.NewFunctionObj(), kind: typeScript}
	p.fc.locals = append(p.fc.locals, local{name: "", depth: 0})

	p.advance()
	for !p.matchTok(TokenEOF) {
		p.declaration()
	}
	fn := p.endCompiler()
	if p.hadError {
		return nil, p.errors
	}
	return fn, nil
}

// ---- token stream plumbing, grounded on compiler/parser.go's own shape ----

func (p *Parser) advance() {
	p.previous = p.current
	for {
		p.current = p.scanner.Next()
		if p.current.Type != TokenError {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *Parser) check(t TokenType) bool { return p.current.Type == t }

func (p *Parser) matchTok(t TokenType) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) consume(t TokenType, msg string) {
	if p.current.Type == t {
		p.advance()
		return
	}
	p.errorAtCurrent(msg)
}

func (p *Parser) errorAtCurrent(msg string) { p.errorAt(p.current, msg) }
func (p *Parser) error(msg string)          { p.errorAt(p.previous, msg) }

func (p *Parser) errorAt(tok Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	where := ""
	switch tok.Type {
	case TokenEOF:
		where = " at end"
	case TokenError:
	default:
		where = fmt.Sprintf(" at '%s'", tok.Lexeme)
	}
	p.errors = append(p.errors, &CompileError{Line: tok.Line, Where: where, Message: msg})
	p.hadError = true
}

// synchronize skips tokens until it reaches something that plausibly
// starts a new statement, so one mistake doesn't cascade into a wall of
// spurious diagnostics.
func (p *Parser) synchronize() {
	p.panicMode = false
	for p.current.Type != TokenEOF {
		if p.previous.Type == TokenSemicolon {
			return
		}
		switch p.current.Type {
		case TokenClass, TokenFun, TokenVar, TokenFor, TokenIf, TokenWhile, TokenPrint, TokenReturn:
			return
		}
		p.advance()
	}
}

// ---- emission helpers ----

func (p *Parser) currentChunk() *bytecode.Chunk { return p.fc.function.AsFunction().Chunk }

func (p *Parser) emitByte(b byte)           { p.currentChunk().Write(b, p.previous.Line) }
func (p *Parser) emitOp(op bytecode.Opcode) { p.currentChunk().WriteOpcode(op, p.previous.Line) }
func (p *Parser) emitOpByte(op bytecode.Opcode, b byte) {
	p.emitOp(op)
	p.emitByte(b)
}

func (p *Parser) emitConstant(v bytecode.Value) {
	idx, err := p.currentChunk().AddConstant(v)
	if err != nil {
		p.error(err.Error())
		return
	}
	p.emitOpByte(bytecode.OpConstant, byte(idx))
}

func (p *Parser) emitJump(op bytecode.Opcode) int {
	return p.currentChunk().EmitJump(op, p.previous.Line)
}

func (p *Parser) patchJump(offset int) {
	if err := p.currentChunk().PatchJump(offset); err != nil {
		p.error(err.Error())
	}
}

func (p *Parser) emitLoop(loopStart int) {
	if err := p.currentChunk().EmitLoop(loopStart, p.previous.Line); err != nil {
		p.error(err.Error())
	}
}

func (p *Parser) emitReturn() {
	if p.fc.kind == typeInitializer {
		p.emitOpByte(bytecode.OpGetLocal, 0)
	} else {
		p.emitOp(bytecode.OpNil)
	}
	p.emitOp(bytecode.OpReturn)
}

func (p *Parser) endCompiler() *bytecode.Obj {
	p.emitReturn()
	fn := p.fc.function
	p.fc = p.fc.enclosing
	return fn
}

func (p *Parser) beginScope() { p.fc.scopeDepth++ }

func (p *Parser) endScope() {
	p.fc.scopeDepth--
	for len(p.fc.locals) > 0 && p.fc.locals[len(p.fc.locals)-1].depth > p.fc.scopeDepth {
		last := p.fc.locals[len(p.fc.locals)-1]
		if last.isCaptured {
			p.emitOp(bytecode.OpCloseUpvalue)
		} else {
			p.emitOp(bytecode.OpPop)
		}
		p.fc.locals = p.fc.locals[:len(p.fc.locals)-1]
	}
}

// ---- declarations & statements ----

func (p *Parser) declaration() {
	switch {
	case p.matchTok(TokenClass):
		p.classDeclaration()
	case p.matchTok(TokenFun):
		p.funDeclaration()
	case p.matchTok(TokenVar):
		p.varDeclaration()
	default:
		p.statement()
	}
	if p.panicMode {
		p.synchronize()
	}
}

func (p *Parser) identifierConstant(name string) int {
	obj := bytecode.Intern(p.strings, name)
	idx, err := p.currentChunk().AddConstant(bytecode.FromObj(obj))
	if err != nil {
		p.error(err.Error())
	}
	return idx
}

func (p *Parser) varDeclaration() {
	global := p.parseVariable("expect variable name")
	if p.matchTok(TokenEqual) {
		p.expression()
	} else {
		p.emitOp(bytecode.OpNil)
	}
	p.consume(TokenSemicolon, "expect ';' after variable declaration")
	p.defineVariable(global)
}

func (p *Parser) parseVariable(msg string) int {
	p.consume(TokenIdentifier, msg)
	p.declareVariable()
	if p.fc.scopeDepth > 0 {
		return -1
	}
	return p.identifierConstant(p.previous.Lexeme)
}

func (p *Parser) declareVariable() {
	if p.fc.scopeDepth == 0 {
		return
	}
	name := p.previous.Lexeme
	for i := len(p.fc.locals) - 1; i >= 0; i-- {
		l := p.fc.locals[i]
		if l.depth != -1 && l.depth < p.fc.scopeDepth {
			break
		}
		if l.name == name {
			p.error("already a variable with this name in this scope")
		}
	}
	p.addLocal(name)
}

func (p *Parser) addLocal(name string) {
	if len(p.fc.locals) >= 256 {
		p.error("too many local variables in function")
		return
	}
	p.fc.locals = append(p.fc.locals, local{name: name, depth: -1})
}

func (p *Parser) markInitialized() {
	if p.fc.scopeDepth == 0 {
		return
	}
	p.fc.locals[len(p.fc.locals)-1].depth = p.fc.scopeDepth
}

func (p *Parser) defineVariable(global int) {
	if p.fc.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitOpByte(bytecode.OpDefineGlobal, byte(global))
}

func (p *Parser) funDeclaration() {
	global := p.parseVariable("expect function name")
	p.markInitialized()
	p.function(typeFunction)
	p.defineVariable(global)
}

func (p *Parser) function(kind funcType) {
	enclosing := p.fc
	fn := bytecode.NewFunctionObj()
	fn.AsFunction().Name = p.previous.Lexeme
	p.fc = &fnCompiler{enclosing: enclosing, function: fn, kind: kind}
	slot0Name := ""
	if kind == typeMethod || kind == typeInitializer {
		slot0Name = "this"
	}
	p.fc.locals = append(p.fc.locals, local{name: slot0Name, depth: 0})
	p.fc.scopeDepth = 0
	p.beginScope()

	p.consume(TokenLeftParen, "expect '(' after function name")
	if !p.check(TokenRightParen) {
		for {
			fd := p.fc.function.AsFunction()
			fd.Arity++
			if fd.Arity > 255 {
				p.errorAtCurrent("can't have more than 255 parameters")
			}
			paramConst := p.parseVariable("expect parameter name")
			p.defineVariable(paramConst)
			if !p.matchTok(TokenComma) {
				break
			}
		}
	}
	p.consume(TokenRightParen, "expect ')' after parameters")
	p.consume(TokenLeftBrace, "expect '{' before function body")
	p.block()

	childUpvalues := p.fc.upvalues
	childFn := p.endCompiler()
	childFn.AsFunction().UpvalueCount = len(childUpvalues)

	idx, err := p.currentChunk().AddConstant(bytecode.FromObj(childFn))
	if err != nil {
		p.error(err.Error())
		return
	}
	p.emitOpByte(bytecode.OpClosure, byte(idx))
	for _, uv := range childUpvalues {
		isLocalByte := byte(0)
		if uv.isLocal {
			isLocalByte = 1
		}
		p.emitByte(isLocalByte)
		p.emitByte(uv.index)
	}
}

func (p *Parser) classDeclaration() {
	p.consume(TokenIdentifier, "expect class name")
	nameTok := p.previous
	nameConst := p.identifierConstant(nameTok.Lexeme)
	p.declareVariable()
	p.emitOpByte(bytecode.OpClass, byte(nameConst))
	p.defineVariable(nameConst)

	p.cc = &classCompiler{enclosing: p.cc}

	p.namedVariable(nameTok, false)
	p.consume(TokenLeftBrace, "expect '{' before class body")
	for !p.check(TokenRightBrace) && !p.check(TokenEOF) {
		p.method()
	}
	p.consume(TokenRightBrace, "expect '}' after class body")
	p.emitOp(bytecode.OpPop) // pop the class reference pushed for method binding

	p.cc = p.cc.enclosing
}

func (p *Parser) method() {
	p.consume(TokenIdentifier, "expect method name")
	nameConst := p.identifierConstant(p.previous.Lexeme)
	kind := typeMethod
	if p.previous.Lexeme == "init" {
		kind = typeInitializer
	}
	p.function(kind)
	p.emitOpByte(bytecode.OpMethod, byte(nameConst))
}

func (p *Parser) statement() {
	switch {
	case p.matchTok(TokenPrint):
		p.printStatement()
	case p.matchTok(TokenIf):
		p.ifStatement()
	case p.matchTok(TokenReturn):
		p.returnStatement()
	case p.matchTok(TokenWhile):
		p.whileStatement()
	case p.matchTok(TokenFor):
		p.forStatement()
	case p.matchTok(TokenLeftBrace):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

func (p *Parser) block() {
	for !p.check(TokenRightBrace) && !p.check(TokenEOF) {
		p.declaration()
	}
	p.consume(TokenRightBrace, "expect '}' after block")
}

func (p *Parser) printStatement() {
	p.expression()
	p.consume(TokenSemicolon, "expect ';' after value")
	p.emitOp(bytecode.OpPrint)
}

func (p *Parser) expressionStatement() {
	p.expression()
	p.consume(TokenSemicolon, "expect ';' after expression")
	p.emitOp(bytecode.OpPop)
}

func (p *Parser) returnStatement() {
	if p.fc.kind == typeScript {
		p.error("can't return from top-level code")
	}
	if p.matchTok(TokenSemicolon) {
		p.emitReturn()
		return
	}
	if p.fc.kind == typeInitializer {
		p.error("can't return a value from an initializer")
	}
	p.expression()
	p.consume(TokenSemicolon, "expect ';' after return value")
	p.emitOp(bytecode.OpReturn)
}

func (p *Parser) ifStatement() {
	p.consume(TokenLeftParen, "expect '(' after 'if'")
	p.expression()
	p.consume(TokenRightParen, "expect ')' after condition")

	thenJump := p.emitJump(bytecode.OpJumpIfFalse)
	p.emitOp(bytecode.OpPop)
	p.statement()

	elseJump := p.emitJump(bytecode.OpJump)
	p.patchJump(thenJump)
	p.emitOp(bytecode.OpPop)

	if p.matchTok(TokenElse) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *Parser) whileStatement() {
	loopStart := p.currentChunk().CodeLen()
	p.consume(TokenLeftParen, "expect '(' after 'while'")
	p.expression()
	p.consume(TokenRightParen, "expect ')' after condition")

	exitJump := p.emitJump(bytecode.OpJumpIfFalse)
	p.emitOp(bytecode.OpPop)
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitOp(bytecode.OpPop)
}

func (p *Parser) forStatement() {
	p.beginScope()
	p.consume(TokenLeftParen, "expect '(' after 'for'")

	if p.matchTok(TokenSemicolon) {
		// no initializer
	} else if p.matchTok(TokenVar) {
		p.varDeclaration()
	} else {
		p.expressionStatement()
	}

	loopStart := p.currentChunk().CodeLen()
	exitJump := -1
	if !p.matchTok(TokenSemicolon) {
		p.expression()
		p.consume(TokenSemicolon, "expect ';' after loop condition")
		exitJump = p.emitJump(bytecode.OpJumpIfFalse)
		p.emitOp(bytecode.OpPop)
	}

	if !p.matchTok(TokenRightParen) {
		bodyJump := p.emitJump(bytecode.OpJump)
		incrementStart := p.currentChunk().CodeLen()
		p.expression()
		p.emitOp(bytecode.OpPop)
		p.consume(TokenRightParen, "expect ')' after for clauses")

		p.emitLoop(loopStart)
		loopStart = incrementStart
		p.patchJump(bodyJump)
	}

	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOp(bytecode.OpPop)
	}
	p.endScope()
}

// ---- Pratt expression parsing ----

func (p *Parser) expression() { p.parsePrecedence(PrecAssignment) }

func (p *Parser) parsePrecedence(prec Precedence) {
	p.advance()
	rule := p.ruleFor(p.previous.Type)
	if rule.prefix == nil {
		p.error("expect expression")
		return
	}
	canAssign := prec <= PrecAssignment
	rule.prefix(p, canAssign)

	for prec <= p.ruleFor(p.current.Type).precedence {
		p.advance()
		infix := p.ruleFor(p.previous.Type).infix
		infix(p, canAssign)
	}
}

func (p *Parser) number(canAssign bool) {
	v, err := ParseNumberLiteral(p.previous.Lexeme)
	if err != nil {
		p.error("invalid number literal")
		return
	}
	p.emitConstant(bytecode.Number(v))
}

func (p *Parser) string_(canAssign bool) {
	raw := p.previous.Lexeme[1 : len(p.previous.Lexeme)-1]
	obj := bytecode.Intern(p.strings, raw)
	p.emitConstant(bytecode.FromObj(obj))
}

func (p *Parser) literal(canAssign bool) {
	switch p.previous.Type {
	case TokenFalse:
		p.emitOp(bytecode.OpFalse)
	case TokenTrue:
		p.emitOp(bytecode.OpTrue)
	case TokenNil:
		p.emitOp(bytecode.OpNil)
	}
}

func (p *Parser) grouping(canAssign bool) {
	p.expression()
	p.consume(TokenRightParen, "expect ')' after expression")
}

func (p *Parser) unary(canAssign bool) {
	opType := p.previous.Type
	p.parsePrecedence(PrecUnary)
	switch opType {
	case TokenBang:
		p.emitOp(bytecode.OpNot)
	case TokenMinus:
		p.emitOp(bytecode.OpNegate)
	}
}

func (p *Parser) binary(canAssign bool) {
	opType := p.previous.Type
	rule := p.ruleFor(opType)
	p.parsePrecedence(rule.precedence + 1)
	switch opType {
	case TokenBangEqual:
		p.emitOp(bytecode.OpEqual)
		p.emitOp(bytecode.OpNot)
	case TokenEqualEqual:
		p.emitOp(bytecode.OpEqual)
	case TokenGreater:
		p.emitOp(bytecode.OpGreater)
	case TokenGreaterEqual:
		p.emitOp(bytecode.OpLess)
		p.emitOp(bytecode.OpNot)
	case TokenLess:
		p.emitOp(bytecode.OpLess)
	case TokenLessEqual:
		p.emitOp(bytecode.OpGreater)
		p.emitOp(bytecode.OpNot)
	case TokenPlus:
		p.emitOp(bytecode.OpAdd)
	case TokenMinus:
		p.emitOp(bytecode.OpSubtract)
	case TokenStar:
		p.emitOp(bytecode.OpMultiply)
	case TokenSlash:
		p.emitOp(bytecode.OpDivide)
	}
}

func (p *Parser) and_(canAssign bool) {
	endJump := p.emitJump(bytecode.OpJumpIfFalse)
	p.emitOp(bytecode.OpPop)
	p.parsePrecedence(PrecAnd)
	p.patchJump(endJump)
}

func (p *Parser) or_(canAssign bool) {
	elseJump := p.emitJump(bytecode.OpJumpIfFalse)
	endJump := p.emitJump(bytecode.OpJump)
	p.patchJump(elseJump)
	p.emitOp(bytecode.OpPop)
	p.parsePrecedence(PrecOr)
	p.patchJump(endJump)
}

func (p *Parser) call(canAssign bool) {
	argc := p.argumentList()
	p.emitOpByte(bytecode.OpCall, byte(argc))
}

func (p *Parser) argumentList() int {
	argc := 0
	if !p.check(TokenRightParen) {
		for {
			p.expression()
			if argc == 255 {
				p.error("can't have more than 255 arguments")
			}
			argc++
			if !p.matchTok(TokenComma) {
				break
			}
		}
	}
	p.consume(TokenRightParen, "expect ')' after arguments")
	return argc
}

func (p *Parser) dot(canAssign bool) {
	p.consume(TokenIdentifier, "expect property name after '.'")
	nameConst := p.identifierConstant(p.previous.Lexeme)

	if canAssign && p.matchTok(TokenEqual) {
		p.expression()
		p.emitOpByte(bytecode.OpSetProperty, byte(nameConst))
	} else if p.matchTok(TokenLeftParen) {
		argc := p.argumentList()
		p.emitOpByte(bytecode.OpInvoke, byte(nameConst))
		p.emitByte(byte(argc))
	} else {
		p.emitOpByte(bytecode.OpGetProperty, byte(nameConst))
	}
}

func (p *Parser) variable(canAssign bool) {
	p.namedVariable(p.previous, canAssign)
}

func (p *Parser) this_(canAssign bool) {
	if p.cc == nil {
		p.error("can't use 'this' outside of a class")
		return
	}
	p.variable(false)
}

// super_ reports a dedicated compile error for 'super' and consumes a
// following '.name' so the rest of the expression still parses; wisp
// drops inheritance from the language surface (spec's own guidance on
// the superclass open question), so there is never a superclass to
// resolve a super-call against.
func (p *Parser) super_(canAssign bool) {
	p.error("'super' is not supported: wisp classes do not support inheritance")
	if p.matchTok(TokenDot) {
		p.consume(TokenIdentifier, "expect superclass method name")
	}
}

func (p *Parser) namedVariable(name Token, canAssign bool) {
	getOp, setOp := bytecode.OpGetGlobal, bytecode.OpSetGlobal
	var arg int

	if idx := p.resolveLocal(p.fc, name.Lexeme); idx != -1 {
		arg = idx
		getOp, setOp = bytecode.OpGetLocal, bytecode.OpSetLocal
	} else if idx := p.resolveUpvalue(p.fc, name.Lexeme); idx != -1 {
		arg = idx
		getOp, setOp = bytecode.OpGetUpvalue, bytecode.OpSetUpvalue
	} else {
		arg = p.identifierConstant(name.Lexeme)
	}

	if canAssign && p.matchTok(TokenEqual) {
		p.expression()
		p.emitOpByte(setOp, byte(arg))
	} else {
		p.emitOpByte(getOp, byte(arg))
	}
}

func (p *Parser) resolveLocal(fc *fnCompiler, name string) int {
	for i := len(fc.locals) - 1; i >= 0; i-- {
		if fc.locals[i].name == name {
			if fc.locals[i].depth == -1 {
				p.error("can't read local variable in its own initializer")
			}
			return i
		}
	}
	return -1
}

func (p *Parser) resolveUpvalue(fc *fnCompiler, name string) int {
	if fc.enclosing == nil {
		return -1
	}
	if idx := p.resolveLocal(fc.enclosing, name); idx != -1 {
		fc.enclosing.locals[idx].isCaptured = true
		return p.addUpvalue(fc, byte(idx), true)
	}
	if idx := p.resolveUpvalue(fc.enclosing, name); idx != -1 {
		return p.addUpvalue(fc, byte(idx), false)
	}
	return -1
}

func (p *Parser) addUpvalue(fc *fnCompiler, index byte, isLocal bool) int {
	for i, uv := range fc.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(fc.upvalues) >= 256 {
		p.error("too many closure variables in function")
		return 0
	}
	fc.upvalues = append(fc.upvalues, upvalueRef{index: index, isLocal: isLocal})
	return len(fc.upvalues) - 1
}
