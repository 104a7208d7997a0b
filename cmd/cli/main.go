// Command schemafuzz derives boundary and negative test variations for
// the requests of a Postman collection from the constraints declared in
// the OpenAPI document it was generated from.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/waftester/schemafuzz/pkg/defaults"
	"github.com/waftester/schemafuzz/pkg/ui"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run dispatches a subcommand and returns its exit code.
func run(args []string, stdout io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return defaults.ExitUserError
	}

	switch args[0] {
	case "generate", "gen":
		return runGenerate(args[1:], stdout)
	case "analyze", "catalogue":
		return runAnalyze(args[1:], stdout)
	case "dynvars", "placeholders":
		return runDynvars(args[1:], stdout)
	case "init":
		return runInit(args[1:], stdout)
	case "-v", "--version", "version":
		fmt.Fprintf(stdout, "%s %s (%s, %s)\n", defaults.ToolName, ui.Version, ui.Commit, ui.BuildDate)
		return defaults.ExitSuccess
	case "-h", "--help", "help":
		printUsage(stdout)
		return defaults.ExitSuccess
	default:
		ui.PrintError(fmt.Sprintf("unknown command %q", args[0]))
		printUsage(stdout)
		return defaults.ExitUserError
	}
}

func printUsage(w io.Writer) {
	ui.PrintBanner()

	fmt.Fprintln(w, ui.SectionStyle.Render("COMMANDS"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s  %s\n", ui.StatValueStyle.Render("generate"), "Write fuzzed variations of a collection into a Variations folder")
	fmt.Fprintf(w, "  %s  %s\n", ui.StatValueStyle.Render("analyze "), "List the fuzzable constraints of every operation")
	fmt.Fprintf(w, "  %s  %s\n", ui.StatValueStyle.Render("dynvars "), "List the {{$generator}} placeholders the fuzzer understands")
	fmt.Fprintf(w, "  %s  %s\n", ui.StatValueStyle.Render("init    "), "Write a starter variation file")
	fmt.Fprintf(w, "  %s  %s\n", ui.StatValueStyle.Render("version "), "Print version information")
	fmt.Fprintln(w)

	fmt.Fprintln(w, ui.SectionStyle.Render("EXAMPLES"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "    %s\n", ui.ConfigValueStyle.Render(defaults.ToolName+" init -o fuzz.yaml"))
	fmt.Fprintf(w, "    %s\n", ui.ConfigValueStyle.Render(defaults.ToolName+" generate -spec api.yaml -collection api.json -config fuzz.yaml"))
	fmt.Fprintf(w, "    %s\n", ui.ConfigValueStyle.Render(defaults.ToolName+" generate -s api.yaml -c api.json -config fuzz.yaml -operation POST::/pets -format markdown -report fuzz.md"))
	fmt.Fprintf(w, "    %s\n", ui.ConfigValueStyle.Render(defaults.ToolName+" analyze -spec api.yaml -json"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", ui.HelpStyle.Render("Run '"+defaults.ToolName+" <command> -h' for the flags of a command."))
}
