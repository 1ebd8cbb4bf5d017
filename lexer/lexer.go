// Package lexer turns source text into the flat token stream the
// parser consumes, tracking string-literal boundaries (double-quote
// state, escapes, backtick raw-command spans) byte by byte so `{expr}`
// interpolations can be tokenized in place.
package lexer

import (
	"fmt"
	"strings"

	"github.com/amberc/amberc/diag"
)

// Kind enumerates every token kind the parser needs.
type Kind int

const (
	EOF Kind = iota
	Ident
	IntNum
	FloatNum
	TextStart // opening quote of a text literal; followed by TextChunk*/TextEnd
	TextChunk
	TextInterpStart // `{` opening an interpolation inside a text literal
	TextInterpEnd
	TextEnd
	RawCommandStart // opening backtick
	RawCommandChunk
	RawCommandInterpStart
	RawCommandInterpEnd
	RawCommandEnd
	Comment
	DocComment

	// keywords
	KwLet
	KwConst
	KwPub
	KwIf
	KwElse
	KwElsif
	KwFor
	KwIn
	KwThen
	KwWhile
	KwLoop
	KwFun
	KwMain
	KwTest
	KwReturn
	KwFail
	KwBreak
	KwContinue
	KwImport
	KwAs
	KwIs
	KwAnd
	KwOr
	KwNot
	KwTrue
	KwFalse
	KwNull
	KwStatus
	KwLen
	KwNameof
	KwTrust
	KwSilent
	KwSuppress
	KwSudo
	KwFailed
	KwSucceeded
	KwExited

	// builtins
	KwCd
	KwCp
	KwMv
	KwRm
	KwLs
	KwTouch
	KwEcho
	KwSleep
	KwWait
	KwPid
	KwPwd
	KwClear
	KwDisown
	KwExit

	// type keywords
	TypeText
	TypeBool
	TypeNum
	TypeInt
	TypeNull

	// punctuation/operators
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Colon
	Dot
	DotDot
	DotDotEq
	DotDotLt
	Question
	Assign
	Plus
	Minus
	Star
	Slash
	Percent
	PlusAssign
	MinusAssign
	StarAssign
	SlashAssign
	PercentAssign
	Eq
	Neq
	Lt
	Le
	Gt
	Ge
	Pipe
)

var keywords = map[string]Kind{
	"let": KwLet, "const": KwConst, "pub": KwPub, "if": KwIf, "else": KwElse,
	"elsif": KwElsif, "for": KwFor, "in": KwIn, "then": KwThen, "while": KwWhile, "loop": KwLoop,
	"fun": KwFun, "main": KwMain, "test": KwTest, "return": KwReturn, "fail": KwFail,
	"break": KwBreak, "continue": KwContinue, "import": KwImport, "as": KwAs,
	"is": KwIs, "and": KwAnd, "or": KwOr, "not": KwNot, "true": KwTrue, "false": KwFalse,
	"null": KwNull, "status": KwStatus, "len": KwLen, "nameof": KwNameof,
	"trust": KwTrust, "silent": KwSilent, "suppress": KwSuppress, "sudo": KwSudo,
	"failed": KwFailed, "succeeded": KwSucceeded, "exited": KwExited,
	"cd": KwCd, "cp": KwCp, "mv": KwMv, "rm": KwRm, "ls": KwLs, "touch": KwTouch,
	"echo": KwEcho, "sleep": KwSleep, "wait": KwWait, "pid": KwPid, "pwd": KwPwd,
	"clear": KwClear, "disown": KwDisown, "exit": KwExit,
	"Text": TypeText, "Bool": TypeBool, "Num": TypeNum, "Int": TypeInt, "Null": TypeNull,
}

// Token is one lexical unit.
type Token struct {
	Kind  Kind
	Text  string
	Pos   diag.Position
}

// Lexer scans src byte by byte, tracking double-quote and backtick
// string-boundary state plus brace depth for `{expr}` interpolation
// inside text/command literals.
type Lexer struct {
	src      string
	filename string
	pos      int
	line     int
	col      int
}

// New returns a Lexer over src from filename (used in diagnostics).
func New(filename, src string) *Lexer {
	return &Lexer{src: src, filename: filename, line: 1, col: 1}
}

func (l *Lexer) position() diag.Position {
	return diag.Position{Filename: l.filename, Line: l.line, Column: l.col}
}

func (l *Lexer) peekByte() (byte, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos], true
}

func (l *Lexer) advance() (byte, bool) {
	ch, ok := l.peekByte()
	if !ok {
		return 0, false
	}
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch, true
}

func (l *Lexer) lookingAt(s string) bool {
	return strings.HasPrefix(l.src[l.pos:], s)
}

// Tokenize runs the whole scan, returning the token stream or the
// first lexical error encountered.
func (l *Lexer) Tokenize() ([]Token, error) {
	var toks []Token
	for {
		l.skipSpaceOutsideComment()
		ch, ok := l.peekByte()
		if !ok {
			toks = append(toks, Token{Kind: EOF, Pos: l.position()})
			return toks, nil
		}
		pos := l.position()

		switch {
		case l.lookingAt("///"):
			toks = append(toks, l.scanLineComment(DocComment, "///"))
			continue
		case l.lookingAt("//"):
			toks = append(toks, l.scanLineComment(Comment, "//"))
			continue
		case ch == '"':
			more, err := l.scanTextLiteral()
			if err != nil {
				return nil, err
			}
			toks = append(toks, more...)
			continue
		case ch == '`':
			more, err := l.scanRawCommand()
			if err != nil {
				return nil, err
			}
			toks = append(toks, more...)
			continue
		case isDigit(ch):
			toks = append(toks, l.scanNumber())
			continue
		case isIdentStart(ch):
			toks = append(toks, l.scanIdent())
			continue
		}

		tok, err := l.scanOperator(pos)
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
	}
}

func (l *Lexer) skipSpaceOutsideComment() {
	for {
		ch, ok := l.peekByte()
		if !ok {
			return
		}
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			l.advance()
			continue
		}
		return
	}
}

func (l *Lexer) scanLineComment(kind Kind, prefix string) Token {
	pos := l.position()
	for i := 0; i < len(prefix); i++ {
		l.advance()
	}
	start := l.pos
	for {
		ch, ok := l.peekByte()
		if !ok || ch == '\n' {
			break
		}
		l.advance()
	}
	return Token{Kind: kind, Text: strings.TrimSpace(l.src[start:l.pos]), Pos: pos}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }
func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
func isIdentCont(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }

func (l *Lexer) scanNumber() Token {
	pos := l.position()
	start := l.pos
	isFloat := false
	for {
		ch, ok := l.peekByte()
		if !ok {
			break
		}
		if isDigit(ch) {
			l.advance()
			continue
		}
		if ch == '.' && !isFloat && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]) {
			isFloat = true
			l.advance()
			continue
		}
		break
	}
	text := l.src[start:l.pos]
	if isFloat {
		return Token{Kind: FloatNum, Text: text, Pos: pos}
	}
	return Token{Kind: IntNum, Text: text, Pos: pos}
}

func (l *Lexer) scanIdent() Token {
	pos := l.position()
	start := l.pos
	for {
		ch, ok := l.peekByte()
		if !ok || !isIdentCont(ch) {
			break
		}
		l.advance()
	}
	text := l.src[start:l.pos]
	if kw, ok := keywords[text]; ok {
		return Token{Kind: kw, Text: text, Pos: pos}
	}
	return Token{Kind: Ident, Text: text, Pos: pos}
}

// scanTextLiteral consumes a whole `"…{expr}…"` literal, recursively
// tokenizing each interpolation's expression (which may itself contain
// nested text/raw-command literals, parens, etc.) one byte at a time
// rather than pre-slicing the literal. Returns the full token run:
// TextStart, (TextChunk | TextInterpStart normal-tokens* TextInterpEnd)*,
// TextEnd.
func (l *Lexer) scanTextLiteral() ([]Token, error) {
	startPos := l.position()
	l.advance() // consume opening quote
	toks := []Token{{Kind: TextStart, Pos: startPos}}
	for {
		part, err := l.scanTextChunk()
		if err != nil {
			return nil, err
		}
		toks = append(toks, part)
		if part.Kind == TextEnd {
			return toks, nil
		}
		// part.Kind == TextInterpStart: tokenize the embedded
		// expression until the matching top-level '}'.
		inner, err := l.tokenizeUntilBrace()
		if err != nil {
			return nil, err
		}
		toks = append(toks, inner...)
		toks = append(toks, l.scanTextInterpEnd())
	}
}

// tokenizeUntilBrace scans ordinary tokens until a '}' is seen at
// brace depth 0 (the '}' itself is not consumed or included).
func (l *Lexer) tokenizeUntilBrace() ([]Token, error) {
	var toks []Token
	depth := 0
	for {
		l.skipSpaceOutsideComment()
		ch, ok := l.peekByte()
		if !ok {
			return nil, fmt.Errorf("%s: unterminated interpolation", l.position())
		}
		if ch == '}' && depth == 0 {
			return toks, nil
		}
		pos := l.position()
		switch {
		case l.lookingAt("///"):
			toks = append(toks, l.scanLineComment(DocComment, "///"))
		case l.lookingAt("//"):
			toks = append(toks, l.scanLineComment(Comment, "//"))
		case ch == '"':
			more, err := l.scanTextLiteral()
			if err != nil {
				return nil, err
			}
			toks = append(toks, more...)
		case ch == '`':
			more, err := l.scanRawCommand()
			if err != nil {
				return nil, err
			}
			toks = append(toks, more...)
		case isDigit(ch):
			toks = append(toks, l.scanNumber())
		case isIdentStart(ch):
			toks = append(toks, l.scanIdent())
		default:
			if ch == '{' {
				depth++
			} else if ch == '}' {
				depth--
			}
			tok, err := l.scanOperator(pos)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
		}
	}
}

// scanTextChunk reads literal text up to the next unescaped `"`, `{`,
// or EOF, unescaping \\, \", \n, \t along the way. Returns TextEnd if
// the closing quote was reached, TextInterpStart if a `{` was reached
// (already consumed), or TextChunk otherwise.
func (l *Lexer) scanTextChunk() (Token, error) {
	pos := l.position()
	var sb strings.Builder
	for {
		ch, ok := l.peekByte()
		if !ok {
			return Token{}, fmt.Errorf("%s: unterminated text literal", pos)
		}
		if ch == '"' {
			l.advance()
			return Token{Kind: TextEnd, Text: sb.String(), Pos: pos}, nil
		}
		if ch == '{' {
			l.advance()
			return Token{Kind: TextInterpStart, Text: sb.String(), Pos: pos}, nil
		}
		if ch == '\\' {
			l.advance()
			esc, ok := l.advance()
			if !ok {
				return Token{}, fmt.Errorf("%s: unterminated escape", pos)
			}
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '"':
				sb.WriteByte('"')
			case '{':
				sb.WriteByte('{')
			case '\\':
				sb.WriteByte('\\')
			default:
				sb.WriteByte(esc)
			}
			continue
		}
		l.advance()
		sb.WriteByte(ch)
	}
}

// scanTextInterpEnd consumes the `}` that closes a text interpolation.
func (l *Lexer) scanTextInterpEnd() Token {
	pos := l.position()
	l.advance() // consume '}'
	return Token{Kind: TextInterpEnd, Pos: pos}
}

// scanRawCommand mirrors scanTextLiteral for backtick raw-command
// literals: `{expr}` interpolation is supported identically, but no
// escape processing is applied to the literal text (it reaches the
// shell close to verbatim).
func (l *Lexer) scanRawCommand() ([]Token, error) {
	startPos := l.position()
	l.advance() // consume opening backtick
	toks := []Token{{Kind: RawCommandStart, Pos: startPos}}
	for {
		part, err := l.scanRawCommandChunk()
		if err != nil {
			return nil, err
		}
		toks = append(toks, part)
		if part.Kind == RawCommandEnd {
			return toks, nil
		}
		inner, err := l.tokenizeUntilBrace()
		if err != nil {
			return nil, err
		}
		toks = append(toks, inner...)
		pos := l.position()
		l.advance() // consume '}'
		toks = append(toks, Token{Kind: RawCommandInterpEnd, Pos: pos})
	}
}

func (l *Lexer) scanRawCommandChunk() (Token, error) {
	pos := l.position()
	start := l.pos
	for {
		ch, ok := l.peekByte()
		if !ok {
			return Token{}, fmt.Errorf("%s: unterminated raw command literal", pos)
		}
		if ch == '`' {
			text := l.src[start:l.pos]
			l.advance()
			return Token{Kind: RawCommandEnd, Text: text, Pos: pos}, nil
		}
		if ch == '{' {
			text := l.src[start:l.pos]
			l.advance()
			return Token{Kind: RawCommandInterpStart, Text: text, Pos: pos}, nil
		}
		l.advance()
	}
}

type opEntry struct {
	text string
	kind Kind
}

var multiByteOps = []opEntry{
	{"..=", DotDotEq},
	{"..<", DotDotLt},
	{"..", DotDot},
	{"==", Eq},
	{"!=", Neq},
	{"<=", Le},
	{">=", Ge},
	{"+=", PlusAssign},
	{"-=", MinusAssign},
	{"*=", StarAssign},
	{"/=", SlashAssign},
	{"%=", PercentAssign},
}

var singleByteOps = map[byte]Kind{
	'(': LParen, ')': RParen, '{': LBrace, '}': RBrace,
	'[': LBracket, ']': RBracket, ',': Comma, ':': Colon,
	'.': Dot, '?': Question, '=': Assign, '+': Plus, '-': Minus,
	'*': Star, '/': Slash, '%': Percent, '<': Lt, '>': Gt, '|': Pipe,
}

func (l *Lexer) scanOperator(pos diag.Position) (Token, error) {
	for _, op := range multiByteOps {
		if l.lookingAt(op.text) {
			for range op.text {
				l.advance()
			}
			return Token{Kind: op.kind, Text: op.text, Pos: pos}, nil
		}
	}
	ch, _ := l.peekByte()
	if kind, ok := singleByteOps[ch]; ok {
		l.advance()
		return Token{Kind: kind, Text: string(ch), Pos: pos}, nil
	}
	return Token{}, fmt.Errorf("%s: unexpected character %q", pos, ch)
}
