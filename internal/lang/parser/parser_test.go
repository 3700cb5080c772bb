package parser

import (
	"strings"
	"testing"

	"github.com/dronelab/autodrone/internal/lang/ast"
	"github.com/dronelab/autodrone/internal/lang/lexer/blocklang"
	"github.com/dronelab/autodrone/internal/lang/lexer/bracelang"
)

func parseBlock(t *testing.T, src string) (*ast.Program, []Warning) {
	t.Helper()
	tokens, err := blocklang.Lex(src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, warnings, err := ParseBlockLang(tokens)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog, warnings
}

func parseBrace(t *testing.T, src string) (*ast.Program, []Warning) {
	t.Helper()
	tokens, err := bracelang.Lex(src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, warnings, err := ParseBraceLang(tokens)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog, warnings
}

func TestParseBlockLoopAndMove(t *testing.T) {
	prog, warnings := parseBlock(t, "loop 3:\n  move forward\nend\n")
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if len(prog.Body) != 1 {
		t.Fatalf("expected one statement, got %d", len(prog.Body))
	}
	loop, ok := prog.Body[0].(*ast.Loop)
	if !ok {
		t.Fatalf("expected *ast.Loop, got %T", prog.Body[0])
	}
	if loop.Count != 3 {
		t.Fatalf("expected count 3, got %d", loop.Count)
	}
	if len(loop.Body.Statements) != 1 {
		t.Fatalf("expected one body statement, got %d", len(loop.Body.Statements))
	}
	if _, ok := loop.Body.Statements[0].(*ast.Move); !ok {
		t.Fatalf("expected *ast.Move, got %T", loop.Body.Statements[0])
	}
}

func TestParseBraceForLowersToLoop(t *testing.T) {
	prog, _ := parseBrace(t, "for (int i = 0; i < 3; i++) { move_forward(); }")
	loop, ok := prog.Body[0].(*ast.Loop)
	if !ok {
		t.Fatalf("expected *ast.Loop, got %T", prog.Body[0])
	}
	if loop.Count != 3 {
		t.Fatalf("expected count 3, got %d", loop.Count)
	}
}

func TestBothFamiliesAgreeOnShape(t *testing.T) {
	blockProg, _ := parseBlock(t, "loop 3:\n  move forward\nend\n")
	braceProg, _ := parseBrace(t, "for (int i = 0; i < 3; i++) { move_forward(); }")

	bLoop := blockProg.Body[0].(*ast.Loop)
	cLoop := braceProg.Body[0].(*ast.Loop)
	if bLoop.Count != cLoop.Count {
		t.Fatalf("loop counts differ: %d vs %d", bLoop.Count, cLoop.Count)
	}
	bMove := bLoop.Body.Statements[0].(*ast.Move)
	cMove := cLoop.Body.Statements[0].(*ast.Move)
	if bMove.Dir != cMove.Dir {
		t.Fatalf("move directions differ: %v vs %v", bMove.Dir, cMove.Dir)
	}
}

func TestParseBlockIfElifElse(t *testing.T) {
	prog, _ := parseBlock(t, "if energy > 10:\n  move forward\nelif energy > 5:\n  turn left\nelse:\n  wait 1\nend\n")
	ifStmt, ok := prog.Body[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", prog.Body[0])
	}
	elif, ok := ifStmt.Alternate.(*ast.If)
	if !ok {
		t.Fatalf("expected elif to be nested *ast.If, got %T", ifStmt.Alternate)
	}
	elseBlock, ok := elif.Alternate.(*ast.Block)
	if !ok {
		t.Fatalf("expected else to be *ast.Block, got %T", elif.Alternate)
	}
	if _, ok := elseBlock.Statements[0].(*ast.Wait); !ok {
		t.Fatalf("expected *ast.Wait in else block, got %T", elseBlock.Statements[0])
	}
}

func TestParseBraceIfElseIfChain(t *testing.T) {
	prog, _ := parseBrace(t, "if (energy > 10) { move_forward(); } else if (energy > 5) { turn_left(); } else { wait(1); }")
	ifStmt := prog.Body[0].(*ast.If)
	elif, ok := ifStmt.Alternate.(*ast.If)
	if !ok {
		t.Fatalf("expected else-if to be nested *ast.If, got %T", ifStmt.Alternate)
	}
	if _, ok := elif.Alternate.(*ast.Block); !ok {
		t.Fatalf("expected trailing else to be *ast.Block, got %T", elif.Alternate)
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	prog, _ := parseBlock(t, "log 1 + 2 == 3 and not false or true\n")
	logStmt := prog.Body[0].(*ast.Log)
	// Top-level op should be 'or' (weakest), binding the 'and' clause on
	// the left and 'true' on the right.
	or, ok := logStmt.Expr.(*ast.Binary)
	if !ok || or.Op != ast.OpOr {
		t.Fatalf("expected top-level 'or', got %+v", logStmt.Expr)
	}
	and, ok := or.Left.(*ast.Binary)
	if !ok || and.Op != ast.OpAnd {
		t.Fatalf("expected 'and' on the left of 'or', got %+v", or.Left)
	}
	eq, ok := and.Left.(*ast.Binary)
	if !ok || eq.Op != ast.OpEq {
		t.Fatalf("expected '==' inside 'and', got %+v", and.Left)
	}
	add, ok := eq.Left.(*ast.Binary)
	if !ok || add.Op != ast.OpAdd {
		t.Fatalf("expected '+' binding tighter than '==', got %+v", eq.Left)
	}
}

func TestParseCallAndMemberPostfixChain(t *testing.T) {
	prog, _ := parseBlock(t, "if scan() == \"crystal\":\n  move forward\nend\n")
	ifStmt := prog.Body[0].(*ast.If)
	eq := ifStmt.Cond.(*ast.Binary)
	call, ok := eq.Left.(*ast.Call)
	if !ok {
		t.Fatalf("expected *ast.Call, got %T", eq.Left)
	}
	if call.Callee.Name != "scan" {
		t.Fatalf("expected callee 'scan', got %q", call.Callee.Name)
	}
}

func TestParseMemberAccess(t *testing.T) {
	prog, _ := parseBlock(t, "log inventory.crystal\n")
	logStmt := prog.Body[0].(*ast.Log)
	member, ok := logStmt.Expr.(*ast.Member)
	if !ok {
		t.Fatalf("expected *ast.Member, got %T", logStmt.Expr)
	}
	if member.Property != "crystal" {
		t.Fatalf("expected property 'crystal', got %q", member.Property)
	}
}

func TestParseLoopZeroWarns(t *testing.T) {
	_, warnings := parseBlock(t, "loop 0:\n  move forward\nend\n")
	if !hasWarningContaining(warnings, "never execute") {
		t.Fatalf("expected a never-execute warning, got %v", warnings)
	}
}

func TestParseLoopNegativeWarns(t *testing.T) {
	_, warnings := parseBlock(t, "loop -1:\n  move forward\nend\n")
	if !hasWarningContaining(warnings, "never execute") {
		t.Fatalf("expected a never-execute warning, got %v", warnings)
	}
}

func TestParseLargeLoopWarns(t *testing.T) {
	_, warnings := parseBlock(t, "loop 1001:\n  move forward\nend\n")
	if !hasWarningContaining(warnings, "performance") {
		t.Fatalf("expected a performance warning, got %v", warnings)
	}
}

func TestParseUnknownIdentifierWarns(t *testing.T) {
	_, warnings := parseBlock(t, "log mystery\n")
	if !hasWarningContaining(warnings, "Unknown variable or function") {
		t.Fatalf("expected unknown-identifier warning, got %v", warnings)
	}
}

func TestParseKnownIdentifierDoesNotWarn(t *testing.T) {
	_, warnings := parseBlock(t, "log energy\n")
	if hasWarningContaining(warnings, "Unknown variable or function") {
		t.Fatalf("did not expect unknown-identifier warning, got %v", warnings)
	}
}

func TestParseWhileTrueFollowedByStatementWarnsUnreachable(t *testing.T) {
	_, warnings := parseBlock(t, "while true:\n  move forward\nend\nturn left\n")
	if !hasWarningContaining(warnings, "unreachable") {
		t.Fatalf("expected unreachable-code warning, got %v", warnings)
	}
}

func TestParseWhileTrueAloneDoesNotWarnUnreachable(t *testing.T) {
	_, warnings := parseBlock(t, "while true:\n  move forward\nend\n")
	if hasWarningContaining(warnings, "unreachable") {
		t.Fatalf("did not expect unreachable-code warning, got %v", warnings)
	}
}

func TestParseBraceWhileTrueFollowedByStatementWarnsUnreachable(t *testing.T) {
	_, warnings := parseBrace(t, "while (true) { move_forward(); } turn_left();")
	if !hasWarningContaining(warnings, "unreachable") {
		t.Fatalf("expected unreachable-code warning, got %v", warnings)
	}
}

func TestParseUnexpectedEndIsFatal(t *testing.T) {
	tokens, err := blocklang.Lex("end\n")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	_, _, err = ParseBlockLang(tokens)
	if err == nil {
		t.Fatal("expected a fatal parse error for stray 'end'")
	}
	if !strings.Contains(err.Error(), "unmatched") {
		t.Fatalf("expected hint about unmatched blocks, got %v", err)
	}
}

func TestParseMissingEndIsFatal(t *testing.T) {
	tokens, err := blocklang.Lex("loop 3:\n  move forward\n")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	_, _, err = ParseBlockLang(tokens)
	if err == nil {
		t.Fatal("expected a fatal parse error for missing 'end'")
	}
}

func TestParseBadDirectionAfterMoveIsFatal(t *testing.T) {
	tokens, err := blocklang.Lex("move sideways\n")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	_, _, err = ParseBlockLang(tokens)
	if err == nil {
		t.Fatal("expected a fatal parse error for an invalid move direction")
	}
}

func TestParseMissingLoopCountIsFatal(t *testing.T) {
	tokens, err := blocklang.Lex("loop:\n  move forward\nend\n")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	_, _, err = ParseBlockLang(tokens)
	if err == nil {
		t.Fatal("expected a fatal parse error for a missing loop count")
	}
}

func TestParseMissingPropertyAfterDotIsFatal(t *testing.T) {
	tokens, err := blocklang.Lex("log inventory.\n")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	_, _, err = ParseBlockLang(tokens)
	if err == nil {
		t.Fatal("expected a fatal parse error for a missing property name")
	}
}

func hasWarningContaining(warnings []Warning, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w.Message, substr) {
			return true
		}
	}
	return false
}
