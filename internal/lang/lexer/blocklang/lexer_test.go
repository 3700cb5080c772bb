package blocklang

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

func TestLexSimpleStatement(t *testing.T) {
	tokens, err := Lex("move forward")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	equalKinds(t, kinds(tokens), []token.Kind{token.KW_MOVE, token.KW_FORWARD, token.EOF})
}

func TestLexCollapsesAdjacentNewlines(t *testing.T) {
	tokens, err := Lex("move forward\n\n\nturn left\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	equalKinds(t, kinds(tokens), []token.Kind{
		token.KW_MOVE, token.KW_FORWARD, token.NEWLINE,
		token.KW_TURN, token.KW_LEFT, token.NEWLINE, token.EOF,
	})
}

func TestLexAlwaysEndsWithEOF(t *testing.T) {
	tokens, err := Lex("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	equalKinds(t, kinds(tokens), []token.Kind{token.EOF})
}

func TestLexSkipsComments(t *testing.T) {
	tokens, err := Lex("# a whole comment line\nmove forward # trailing comment\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	equalKinds(t, kinds(tokens), []token.Kind{
		token.NEWLINE, token.KW_MOVE, token.KW_FORWARD, token.NEWLINE, token.EOF,
	})
}

func TestLexNumberAndString(t *testing.T) {
	tokens, err := Lex(`wait 12.5 log "hi \"there\""`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[1].Kind != token.NUMBER || tokens[1].Value != "12.5" {
		t.Fatalf("expected NUMBER 12.5, got %+v", tokens[1])
	}
	if tokens[3].Kind != token.STRING || tokens[3].Value != `hi "there"` {
		t.Fatalf("expected escaped STRING, got %+v", tokens[3])
	}
}

func TestLexKeywordLookupIsCaseInsensitive(t *testing.T) {
	tokens, err := Lex("MOVE Forward")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	equalKinds(t, kinds(tokens), []token.Kind{token.KW_MOVE, token.KW_FORWARD, token.EOF})
}

func TestLexIdentifierIsNotAKeyword(t *testing.T) {
	tokens, err := Lex("energy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Kind != token.IDENTIFIER || tokens[0].Value != "energy" {
		t.Fatalf("expected IDENTIFIER energy, got %+v", tokens[0])
	}
}

func TestLexUnterminatedStringFails(t *testing.T) {
	_, err := Lex(`log "never closed`)
	if err == nil {
		t.Fatal("expected UnterminatedString error")
	}
	lexErr, ok := err.(*Error)
	if !ok || lexErr.Kind != "UnterminatedString" {
		t.Fatalf("expected UnterminatedString error, got %v", err)
	}
}

func TestLexUnterminatedStringAcrossNewlineFails(t *testing.T) {
	_, err := Lex("log \"abc\nend\"")
	if err == nil {
		t.Fatal("expected UnterminatedString error")
	}
}

func TestLexUnexpectedCharFails(t *testing.T) {
	_, err := Lex("move @ forward")
	if err == nil {
		t.Fatal("expected UnexpectedChar error")
	}
	lexErr, ok := err.(*Error)
	if !ok || lexErr.Kind != "UnexpectedChar" {
		t.Fatalf("expected UnexpectedChar error, got %v", err)
	}
}

func TestLexTracksLineAndColumn(t *testing.T) {
	tokens, err := Lex("move forward\nturn left")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// turn should be on line 2, column 1.
	var turnTok token.Token
	for _, tok := range tokens {
		if tok.Kind == token.KW_TURN {
			turnTok = tok
		}
	}
	if turnTok.Line != 2 || turnTok.Column != 1 {
		t.Fatalf("expected turn at line 2 col 1, got line %d col %d", turnTok.Line, turnTok.Column)
	}
}

func TestLexOperators(t *testing.T) {
	tokens, err := Lex("if energy >= 10 and x <= 5 or not y == 1 != 2:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := kinds(tokens)
	want := []token.Kind{
		token.KW_IF, token.IDENTIFIER, token.GTE, token.NUMBER,
		token.KW_AND, token.IDENTIFIER, token.LTE, token.NUMBER,
		token.KW_OR, token.KW_NOT, token.IDENTIFIER, token.EQ, token.NUMBER,
		token.NEQ, token.NUMBER, token.COLON, token.EOF,
	}
	equalKinds(t, got, want)
}

func TestLexDeterministic(t *testing.T) {
	src := "loop 3:\n  move forward\n  turn left\nend\n"
	a, errA := Lex(src)
	b, errB := Lex(src)
	if errA != nil || errB != nil {
		t.Fatalf("unexpected errors: %v %v", errA, errB)
	}
	equalKinds(t, kinds(a), kinds(b))
}
