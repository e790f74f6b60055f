package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/zizixmas/bmb/internal/diagnostics"
	"github.com/zizixmas/bmb/internal/errors"
	"github.com/zizixmas/bmb/internal/lexer"
	"github.com/zizixmas/bmb/internal/parser"
	"github.com/zizixmas/bmb/internal/types"
	"github.com/zizixmas/bmb/internal/verify"
)

const replCommands = ":help :quit :q :exit :verify :reset"

// runREPL starts an interactive session: each entry is a declaration
// (typically one `fn` with its contracts) checked as soon as its
// braces balance, with an optional :verify pass against the SMT
// solver. There is no evaluator — the core never executes BMB, it only
// checks it (§C, Non-goals).
func runREPL() {
	fmt.Printf("%s v%s - contract-checking session\n", bold("bmbc"), Version)
	fmt.Println("Type a declaration, :verify to also run the solver, :help for commands, :quit to exit.")
	fmt.Println()

	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	historyFile := filepath.Join(os.TempDir(), ".bmbc_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	line.SetCompleter(func(text string) (c []string) {
		if !strings.HasPrefix(text, ":") {
			return nil
		}
		for _, cmd := range strings.Fields(replCommands) {
			if strings.HasPrefix(cmd, text) {
				c = append(c, cmd)
			}
		}
		return c
	})

	verifyNext := false
	var buf []string
	depth := 0

	for {
		prompt := "bmb> "
		if depth > 0 {
			prompt = "...> "
		}
		input, err := line.Prompt(prompt)
		if err == io.EOF {
			fmt.Println(green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			continue
		}

		if depth > 0 && strings.TrimSpace(input) == ":reset" {
			buf, depth = nil, 0
			continue
		}
		if depth == 0 {
			trimmed := strings.TrimSpace(input)
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, ":") {
				line.AppendHistory(trimmed)
				switch trimmed {
				case ":quit", ":q", ":exit":
					fmt.Println(green("Goodbye!"))
					goto done
				case ":help":
					printReplHelp()
				case ":verify":
					verifyNext = !verifyNext
					fmt.Printf("verify-on-check: %v\n", verifyNext)
				case ":reset":
					buf, depth = nil, 0
				default:
					fmt.Printf("unknown command %q, type :help\n", trimmed)
				}
				continue
			}
		}

		buf = append(buf, input)
		depth += strings.Count(input, "{") - strings.Count(input, "}")
		if depth > 0 {
			continue
		}
		if depth < 0 {
			depth = 0
		}

		src := strings.Join(buf, "\n")
		buf = nil
		line.AppendHistory(src)
		checkSnippet(src, verifyNext)
	}

done:
	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

func printReplHelp() {
	fmt.Println("Commands:")
	fmt.Println("  :help     show this help")
	fmt.Println("  :verify   toggle running the SMT solver after each check")
	fmt.Println("  :reset    discard the line currently being entered")
	fmt.Println("  :quit     exit the session")
}

func checkSnippet(src string, runVerify bool) {
	src = string(lexer.Normalize([]byte(src)))

	logger := diagnostics.NewLogger(os.Stdout, diagnostics.ModeHuman)
	logger.AddSource("<repl>", src)

	l := lexer.New(src, "<repl>")
	p := parser.New(l, "<repl>")
	prog := p.ParseProgram()
	if perr := p.Err(); perr != nil {
		logger.Report(&errors.Report{
			Schema:  errors.ErrorV1,
			Code:    errors.PAR001,
			Phase:   "parse",
			Message: perr.Error(),
			Span:    &perr.Span,
		})
		return
	}

	chk := types.CheckProgram(prog)
	for _, diag := range chk.Diagnostics {
		logger.Report(diag.Report())
	}
	reportExhaustiveness(logger, chk, prog)
	if len(chk.Diagnostics) == 0 {
		reportMirInvariants(logger, chk, prog)
	}
	if logger.HasErrors() {
		return
	}

	fnDefs := collectFnDefs(prog)
	if len(fnDefs) == 0 {
		fmt.Printf("%s checked\n", green("✓"))
		return
	}
	if !runVerify {
		fmt.Printf("%s type-checked %d function(s)\n", green("✓"), len(fnDefs))
		return
	}

	verifier, err := verify.NewVerifier(chk, "", 5, false)
	if err != nil {
		fmt.Printf("%s no solver available: %v\n", yellow("⚠"), err)
		return
	}
	report := verifier.VerifyProgram(fnDefs)
	printProgramReport("<repl>", report)
}
