// Package blocklang implements AutoDrone's family-1 surface syntax lexer:
// the indentation-free, keyword/block family where blocks are introduced
// by a trailing ':' and closed with 'end', and comments begin with '#'.
package blocklang

import (
	"fmt"
	"strings"

	"github.com/dronelab/autodrone/internal/lang/token"
)

// Error is a LexError: UnexpectedChar or UnterminatedString, each carrying
// position and an optional hint.
type Error struct {
	Kind    string // "UnexpectedChar" | "UnterminatedString"
	Message string
	Line    int
	Column  int
	Hint    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at line %d, column %d: %s", e.Kind, e.Line, e.Column, e.Message)
}

var keywords = map[string]token.Kind{
	"if":      token.KW_IF,
	"elif":    token.KW_ELIF,
	"else":    token.KW_ELSE,
	"end":     token.KW_END,
	"loop":    token.KW_LOOP,
	"while":   token.KW_WHILE,
	"move":    token.KW_MOVE,
	"turn":    token.KW_TURN,
	"collect": token.KW_COLLECT,
	"wait":    token.KW_WAIT,
	"log":     token.KW_LOG,
	"forward": token.KW_FORWARD,
	"back":    token.KW_BACK,
	"left":    token.KW_LEFT,
	"right":   token.KW_RIGHT,
	"and":     token.KW_AND,
	"or":      token.KW_OR,
	"not":     token.KW_NOT,
	"true":    token.KW_TRUE,
	"false":   token.KW_FALSE,
}

// Lexer scans family-1 source text into a token stream.
type Lexer struct {
	src  []rune
	pos  int
	line int
	col  int
}

// New creates a Lexer over src.
func New(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1, col: 1}
}

// Lex scans the entire input and returns its token stream, collapsing
// adjacent NEWLINE tokens and always emitting a terminal EOF.
func Lex(src string) ([]token.Token, error) {
	l := New(src)
	var tokens []token.Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == token.NEWLINE && l.lastWasNewline(tokens) {
			continue
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens, nil
}

func (l *Lexer) lastWasNewline(tokens []token.Token) bool {
	if len(tokens) == 0 {
		return false
	}
	return tokens[len(tokens)-1].Kind == token.NEWLINE
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(offset int) rune {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *Lexer) advance() rune {
	ch := l.src[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

func (l *Lexer) next() (token.Token, error) {
	l.skipWhitespaceAndComments()

	startLine, startCol := l.line, l.col

	if l.atEnd() {
		return token.Token{Kind: token.EOF, Line: startLine, Column: startCol}, nil
	}

	ch := l.peek()

	switch {
	case ch == '\n':
		l.advance()
		return token.Token{Kind: token.NEWLINE, Line: startLine, Column: startCol}, nil
	case ch == ':':
		l.advance()
		return token.Token{Kind: token.COLON, Value: ":", Line: startLine, Column: startCol}, nil
	case ch == '(':
		l.advance()
		return token.Token{Kind: token.LPAREN, Value: "(", Line: startLine, Column: startCol}, nil
	case ch == ')':
		l.advance()
		return token.Token{Kind: token.RPAREN, Value: ")", Line: startLine, Column: startCol}, nil
	case ch == ',':
		l.advance()
		return token.Token{Kind: token.COMMA, Value: ",", Line: startLine, Column: startCol}, nil
	case ch == '.':
		l.advance()
		return token.Token{Kind: token.DOT, Value: ".", Line: startLine, Column: startCol}, nil
	case ch == '+':
		l.advance()
		return token.Token{Kind: token.PLUS, Value: "+", Line: startLine, Column: startCol}, nil
	case ch == '-':
		l.advance()
		return token.Token{Kind: token.MINUS, Value: "-", Line: startLine, Column: startCol}, nil
	case ch == '=':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return token.Token{Kind: token.EQ, Value: "==", Line: startLine, Column: startCol}, nil
		}
		return l.errUnexpected('=', startLine, startCol)
	case ch == '!':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return token.Token{Kind: token.NEQ, Value: "!=", Line: startLine, Column: startCol}, nil
		}
		return l.errUnexpected('!', startLine, startCol)
	case ch == '<':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return token.Token{Kind: token.LTE, Value: "<=", Line: startLine, Column: startCol}, nil
		}
		return token.Token{Kind: token.LT, Value: "<", Line: startLine, Column: startCol}, nil
	case ch == '>':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return token.Token{Kind: token.GTE, Value: ">=", Line: startLine, Column: startCol}, nil
		}
		return token.Token{Kind: token.GT, Value: ">", Line: startLine, Column: startCol}, nil
	case ch == '"' || ch == '\'':
		return l.lexString(ch, startLine, startCol)
	case isDigit(ch):
		return l.lexNumber(startLine, startCol)
	case isIdentStart(ch):
		return l.lexIdentifier(startLine, startCol)
	default:
		l.advance()
		return l.errUnexpected(ch, startLine, startCol)
	}
}

func (l *Lexer) errUnexpected(ch rune, line, col int) (token.Token, error) {
	return token.Token{}, &Error{
		Kind:    "UnexpectedChar",
		Message: fmt.Sprintf("unexpected character %q", ch),
		Line:    line,
		Column:  col,
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.atEnd() {
		ch := l.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r':
			l.advance()
		case ch == '#':
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) lexString(quote rune, line, col int) (token.Token, error) {
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.atEnd() {
			return token.Token{}, &Error{
				Kind:    "UnterminatedString",
				Message: "string literal not closed before end of input",
				Line:    line,
				Column:  col,
			}
		}
		ch := l.peek()
		if ch == quote {
			l.advance()
			break
		}
		if ch == '\n' {
			return token.Token{}, &Error{
				Kind:    "UnterminatedString",
				Message: "string literal not closed before end of line",
				Line:    line,
				Column:  col,
			}
		}
		if ch == '\\' {
			l.advance()
			esc := l.peek()
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '\\':
				sb.WriteRune('\\')
			case '"':
				sb.WriteRune('"')
			case '\'':
				sb.WriteRune('\'')
			default:
				sb.WriteRune(esc)
			}
			l.advance()
			continue
		}
		sb.WriteRune(ch)
		l.advance()
	}
	return token.Token{Kind: token.STRING, Value: sb.String(), Line: line, Column: col}, nil
}

func (l *Lexer) lexNumber(line, col int) (token.Token, error) {
	var sb strings.Builder
	for isDigit(l.peek()) {
		sb.WriteRune(l.advance())
	}
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		sb.WriteRune(l.advance())
		for isDigit(l.peek()) {
			sb.WriteRune(l.advance())
		}
	}
	return token.Token{Kind: token.NUMBER, Value: sb.String(), Line: line, Column: col}, nil
}

func (l *Lexer) lexIdentifier(line, col int) (token.Token, error) {
	var sb strings.Builder
	for isIdentPart(l.peek()) {
		sb.WriteRune(l.advance())
	}
	raw := sb.String()
	lowered := strings.ToLower(raw)
	if kind, ok := keywords[lowered]; ok {
		return token.Token{Kind: kind, Value: lowered, Line: line, Column: col}, nil
	}
	return token.Token{Kind: token.IDENTIFIER, Value: raw, Line: line, Column: col}, nil
}

func isDigit(ch rune) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}
