package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: textflow <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run        Run a pipeline over input")
	fmt.Fprintln(w, "  validate   Check a pipeline without running it")
	fmt.Fprintln(w, "  commands   List available pipeline commands")
	fmt.Fprintln(w, "  serve      Serve the HTTP API")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'textflow help <command>' for details on a specific command.")
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Settings:")
	fmt.Fprintln(w, "  -c, --config <name>       Settings file name or path")
	fmt.Fprintln(w, "      --log-level <s>       Log level: debug, info, warn, error")
	fmt.Fprintln(w, "      --log-json            Log as JSON")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables TEXTFLOW_<SECTION>__<KEY> override the settings file,")
	fmt.Fprintln(w, "e.g. TEXTFLOW_HTTP__TIMEOUT=10s. A .env file in the working directory is loaded.")
}

func printPipelineFlags(w io.Writer) {
	fmt.Fprintln(w, "Pipeline:")
	fmt.Fprintln(w, "  -p, --pipeline <path>     Pipeline definition file (YAML)")
	fmt.Fprintln(w, "  -C, --command <line>      Command line, e.g. 'wrap tag=p class=\"a b\"'")
	fmt.Fprintln(w, "                            Repeatable; runs after --pipeline commands")
	fmt.Fprintln(w)
}

// printRunUsage prints usage for the run command.
func printRunUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: textflow run [flags] [input|-]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run a pipeline over input and write the final text.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Input file, or - for stdin (default: pipeline input, piped stdin)")
	fmt.Fprintln(w)
	printPipelineFlags(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default stdout)")
	fmt.Fprintln(w, "  -t, --content-type <s>    Input content type")
	fmt.Fprintln(w, "      --source <s>          Input source locator")
	fmt.Fprintln(w, "  -u, --url <url>           Fetch input with a leading http command")
	fmt.Fprintln(w, "      --templates <path>    HTML document for templateSelector")
	fmt.Fprintln(w, "      --browser             Enable headless browser for http render=true")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Diagnostics:")
	fmt.Fprintln(w, "  -d, --debug               Engine debug logging")
	fmt.Fprintln(w, "      --history             Print execution history to stderr")
	fmt.Fprintln(w, "      --debug-report <path> Write an HTML history report")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printValidateUsage prints usage for the validate command.
func printValidateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: textflow validate [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print every problem in a pipeline without running it. Exits 2 if any.")
	fmt.Fprintln(w)
	printPipelineFlags(w)
	printCommonFlags(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: textflow serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve the HTTP API:")
	fmt.Fprintln(w, "  POST /v1/execute   Run a pipeline: {input, contentType, source, commands}")
	fmt.Fprintln(w, "  POST /v1/validate  Validate commands")
	fmt.Fprintln(w, "  GET  /v1/commands  List commands")
	fmt.Fprintln(w, "  GET  /healthz      Liveness")
	fmt.Fprintln(w, "  GET  /metrics      Prometheus metrics")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <addr>         Listen address (default :8080)")
	fmt.Fprintln(w, "      --templates <path>    HTML document for templateSelector")
	fmt.Fprintln(w, "      --browser             Enable headless browser for http render=true")
	fmt.Fprintln(w, "      --trace               Export OpenTelemetry spans to stderr")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "run":
		printRunUsage(env.Stdout)
	case "validate":
		printValidateUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "commands":
		fmt.Fprintln(env.Stdout, "Usage: textflow commands")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "List pipeline commands with their arguments and content types.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: textflow version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: textflow help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
