package bracelang

import (
	"testing"

	"github.com/dronelab/autodrone/internal/lang/token"
)

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func equalKinds(t *testing.T, got []token.Kind, want []token.Kind) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestLexCallStatement(t *testing.T) {
	tokens, err := Lex("move_forward();")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	equalKinds(t, kinds(tokens), []token.Kind{
		token.KW_MOVE, token.LPAREN, token.RPAREN, token.SEMICOLON, token.EOF,
	})
	if tokens[0].Value != "move_forward" {
		t.Fatalf("expected surface spelling preserved in Value, got %q", tokens[0].Value)
	}
}

func TestLexCollapsesAdjacentNewlines(t *testing.T) {
	tokens, err := Lex("collect();\n\n\nwait(1);\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	equalKinds(t, kinds(tokens), []token.Kind{
		token.KW_COLLECT, token.LPAREN, token.RPAREN, token.SEMICOLON, token.NEWLINE,
		token.KW_WAIT, token.LPAREN, token.NUMBER, token.RPAREN, token.SEMICOLON, token.NEWLINE,
		token.EOF,
	})
}

func TestLexLineComment(t *testing.T) {
	tokens, err := Lex("collect(); // pick it up\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	equalKinds(t, kinds(tokens), []token.Kind{
		token.KW_COLLECT, token.LPAREN, token.RPAREN, token.SEMICOLON, token.NEWLINE, token.EOF,
	})
}

func TestLexBlockComment(t *testing.T) {
	tokens, err := Lex("/* this is\n a multi-line comment */ collect();")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	equalKinds(t, kinds(tokens), []token.Kind{
		token.KW_COLLECT, token.LPAREN, token.RPAREN, token.SEMICOLON, token.EOF,
	})
}

func TestLexLogicalOperators(t *testing.T) {
	tokens, err := Lex("while (energy > 10 && x < 5 || !done) {}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := kinds(tokens)
	want := []token.Kind{
		token.KW_WHILE, token.LPAREN, token.IDENTIFIER, token.GT, token.NUMBER,
		token.KW_AND, token.IDENTIFIER, token.LT, token.NUMBER,
		token.KW_OR, token.KW_NOT, token.IDENTIFIER, token.RPAREN,
		token.LBRACE, token.RBRACE, token.EOF,
	}
	equalKinds(t, got, want)
}

func TestLexIncrementAndComparison(t *testing.T) {
	tokens, err := Lex("for (int i = 0; i < 3; i++) {}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := kinds(tokens)
	want := []token.Kind{
		token.KW_FOR, token.LPAREN, token.KW_INT, token.IDENTIFIER, token.ASSIGN, token.NUMBER, token.SEMICOLON,
		token.IDENTIFIER, token.LT, token.NUMBER, token.SEMICOLON,
		token.IDENTIFIER, token.INCR, token.RPAREN, token.LBRACE, token.RBRACE, token.EOF,
	}
	equalKinds(t, got, want)
}

func TestLexUnterminatedStringFails(t *testing.T) {
	_, err := Lex(`log("never closed);`)
	if err == nil {
		t.Fatal("expected UnterminatedString error")
	}
	lexErr, ok := err.(*Error)
	if !ok || lexErr.Kind != "UnterminatedString" {
		t.Fatalf("expected UnterminatedString error, got %v", err)
	}
}

func TestLexUnexpectedCharFails(t *testing.T) {
	_, err := Lex("collect(~);")
	if err == nil {
		t.Fatal("expected UnexpectedChar error")
	}
	lexErr, ok := err.(*Error)
	if !ok || lexErr.Kind != "UnexpectedChar" {
		t.Fatalf("expected UnexpectedChar error, got %v", err)
	}
}

func TestLexLoneAmpersandFails(t *testing.T) {
	_, err := Lex("if (a & b) {}")
	if err == nil {
		t.Fatal("expected UnexpectedChar error for lone '&'")
	}
}

func TestLexAlwaysEndsWithEOF(t *testing.T) {
	tokens, err := Lex("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	equalKinds(t, kinds(tokens), []token.Kind{token.EOF})
}

func TestLexDeterministic(t *testing.T) {
	src := "while (energy > 0) {\n  move_forward();\n}\n"
	a, errA := Lex(src)
	b, errB := Lex(src)
	if errA != nil || errB != nil {
		t.Fatalf("unexpected errors: %v %v", errA, errB)
	}
	equalKinds(t, kinds(a), kinds(b))
}
