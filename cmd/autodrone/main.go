// Command autodrone is a standalone CLI that lexes, parses, compiles, and
// runs a drone script against a level JSON file end to end, without going
// through the HTTP/MCP server. It exists mainly as a fast local iteration
// loop for level and script authors.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dronelab/autodrone/internal/lang/ast"
	"github.com/dronelab/autodrone/internal/lang/lexer/blocklang"
	"github.com/dronelab/autodrone/internal/lang/lexer/bracelang"
	"github.com/dronelab/autodrone/internal/lang/parser"
	"github.com/dronelab/autodrone/internal/lang/vm"
	"github.com/dronelab/autodrone/internal/runservice"
)

func main() {
	cmd := &cli.Command{
		Name:  "autodrone",
		Usage: "lex, parse, compile, and run drone scripts against level files",
		Commands: []*cli.Command{
			tokensCommand(),
			astCommand(),
			runCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func syntaxFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "syntax",
		Value: "block",
		Usage: "surface syntax: block or brace",
	}
}

func lexSource(source, syntax string) ([]byte, error) {
	var tokens interface{}
	var err error
	switch syntax {
	case "brace":
		tokens, err = bracelang.Lex(source)
	default:
		tokens, err = blocklang.Lex(source)
	}
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(tokens, "", "  ")
}

func tokensCommand() *cli.Command {
	return &cli.Command{
		Name:      "tokens",
		Usage:     "print the token stream for a script file",
		ArgsUsage: "<script-file>",
		Flags:     []cli.Flag{syntaxFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return fmt.Errorf("missing script file argument")
			}
			source, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read script file: %w", err)
			}

			data, err := lexSource(string(source), cmd.String("syntax"))
			if err != nil {
				return fmt.Errorf("lex failed: %w", err)
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func parseSource(source, syntax string) (*ast.Program, []parser.Warning, error) {
	switch syntax {
	case "brace":
		tokens, err := bracelang.Lex(source)
		if err != nil {
			return nil, nil, err
		}
		return parser.ParseBraceLang(tokens)
	default:
		tokens, err := blocklang.Lex(source)
		if err != nil {
			return nil, nil, err
		}
		return parser.ParseBlockLang(tokens)
	}
}

func astCommand() *cli.Command {
	return &cli.Command{
		Name:      "ast",
		Usage:     "print the parsed AST for a script file",
		ArgsUsage: "<script-file>",
		Flags:     []cli.Flag{syntaxFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return fmt.Errorf("missing script file argument")
			}
			source, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read script file: %w", err)
			}

			prog, warnings, err := parseSource(string(source), cmd.String("syntax"))
			if err != nil {
				return fmt.Errorf("parse failed: %w", err)
			}
			for _, w := range warnings {
				fmt.Fprintf(os.Stderr, "warning: line %d: %s\n", w.Line, w.Message)
			}

			data, err := json.MarshalIndent(prog, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal AST: %w", err)
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "compile a script and run it to completion against a level",
		ArgsUsage: "<script-file>",
		Flags: []cli.Flag{
			syntaxFlag(),
			&cli.StringFlag{
				Name:     "level",
				Usage:    "name of the level file (without .json) under --levels-dir",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "levels-dir",
				Value: "levels",
				Usage: "directory containing level JSON files",
			},
			&cli.IntFlag{
				Name:  "max-ticks",
				Value: 10000,
				Usage: "maximum ticks to run before giving up",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return fmt.Errorf("missing script file argument")
			}
			source, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read script file: %w", err)
			}

			svc := runservice.New(cmd.String("levels-dir"))
			summary, err := svc.CreateRun(ctx, cmd.String("level"), string(source), runservice.Syntax(cmd.String("syntax")))
			if err != nil {
				return fmt.Errorf("failed to create run: %w", err)
			}
			for _, w := range summary.Warnings {
				fmt.Fprintln(os.Stderr, "warning:", w)
			}

			final, err := svc.RunToCompletion(ctx, summary.ID, cmd.Int("max-ticks"))
			if err != nil {
				return fmt.Errorf("run failed: %w", err)
			}

			fmt.Printf("state: %s\nworld status: %s\n", final.VMState, final.WorldStatus)
			fmt.Printf("position: (%d, %d) facing %s\n", final.X, final.Y, final.Facing)
			fmt.Printf("energy: %d\n", final.Energy)
			fmt.Printf("instructions executed: %d\n", final.InstructionCount)
			if len(final.Inventory) > 0 {
				fmt.Println("inventory:")
				for name, count := range final.Inventory {
					fmt.Printf("  %s: %d\n", name, count)
				}
			}

			result, err := svc.Score(ctx, summary.ID)
			if err != nil {
				return fmt.Errorf("failed to score run: %w", err)
			}
			fmt.Printf("score: %d (%d stars)\n", result.Score, result.Stars)
			for _, s := range result.Suggestions {
				fmt.Println("suggestion:", s)
			}

			if final.VMState == vm.Errored {
				os.Exit(1)
			}
			return nil
		},
	}
}
