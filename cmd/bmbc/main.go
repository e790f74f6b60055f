// Command bmbc is the BMB compiler-core driver: lex/parse/typecheck a
// project (check), run its contract goals through an SMT solver
// (verify), emit the AI-queryable index artifacts (index), or start an
// interactive line-reader session over the core (repl).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/zizixmas/bmb/internal/config"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "print version information")
		helpFlag    = flag.Bool("help", false, "show help")
		jsonFlag    = flag.Bool("json", false, "emit machine-readable diagnostics")
		strictFlag  = flag.Bool("strict", false, "treat Unknown verification outcomes as failures")
		configPath  = flag.String("config", "bmb.yaml", "project config file")
		solverPath  = flag.String("solver", "", "preferred SMT solver binary")
		timeout     = flag.Int("timeout", 0, "per-goal solver timeout in seconds (0 = use config)")
	)

	flag.Parse()

	if *versionFlag {
		printVersion()
		return
	}
	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	project, err := config.LoadProject(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
	if *solverPath != "" {
		project.Solver.Path = *solverPath
	}
	if *timeout > 0 {
		project.Solver.TimeoutSeconds = *timeout
	}
	if *strictFlag {
		project.Strict = true
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "check":
		if len(args) == 0 {
			args = project.IncludeRoots
		}
		os.Exit(cmdCheck(args, *jsonFlag))

	case "verify":
		if len(args) == 0 {
			args = project.IncludeRoots
		}
		os.Exit(cmdVerify(args, project, *jsonFlag))

	case "index":
		os.Exit(cmdIndex(project))

	case "repl":
		runREPL()

	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), command)
		printHelp()
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("bmbc %s\n", bold(Version))
	if Commit != "unknown" {
		fmt.Printf("Commit: %s\n", Commit)
	}
	if BuildTime != "unknown" {
		fmt.Printf("Built:  %s\n", BuildTime)
	}
}

func printHelp() {
	fmt.Println(bold("bmbc - BMB compiler core"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  bmbc <command> [paths...]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  %s [paths]    Lex, parse, type-check and check exhaustiveness\n", cyan("check"))
	fmt.Printf("  %s [paths]   Run check, then verify every contract goal via the SMT solver\n", cyan("verify"))
	fmt.Printf("  %s             Write .bmb/index/*.json artifacts for the project\n", cyan("index"))
	fmt.Printf("  %s              Start an interactive contract-checking session\n", cyan("repl"))
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --version        Print version information")
	fmt.Println("  --help           Show this help message")
	fmt.Println("  --json           Emit machine-readable diagnostics")
	fmt.Println("  --strict         Treat Unknown verification outcomes as failures")
	fmt.Println("  --config <path>  Project config file (default bmb.yaml)")
	fmt.Println("  --solver <path>  Preferred SMT solver binary")
	fmt.Println("  --timeout <n>    Per-goal solver timeout in seconds")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Printf("  %s\n", cyan("bmbc check src/"))
	fmt.Printf("  %s\n", cyan("bmbc verify src/account.bmb --strict"))
	fmt.Printf("  %s\n", cyan("bmbc index"))
}
