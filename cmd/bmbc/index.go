package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zizixmas/bmb/internal/config"
	"github.com/zizixmas/bmb/internal/index"
	"github.com/zizixmas/bmb/internal/lexer"
	"github.com/zizixmas/bmb/internal/parser"
)

// cmdIndex parses every .bmb file under project's include roots and
// writes the .bmb/index/*.json artifacts (§6).
func cmdIndex(project *config.Project) int {
	files, err := collectBmbFiles(project.IncludeRoots)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		return 1
	}

	projectName := filepath.Base(mustGetwd())
	gen := index.New(projectName, Version)

	for _, f := range files {
		src := readSource(f)
		l := lexer.New(src, f)
		p := parser.New(l, f)
		prog := p.ParseProgram()
		if perr := p.Err(); perr != nil {
			fmt.Fprintf(os.Stderr, "%s: %s: %v\n", red("Error"), f, perr)
			return 1
		}
		gen.IndexFile(f, src, prog)
	}

	idx := gen.Generate()
	if err := index.Write(project.IndexDir, idx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		return 1
	}

	fmt.Printf("%s wrote index for %d file(s) to %s\n", green("✓"), idx.Manifest.Files, project.IndexDir)
	return 0
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
