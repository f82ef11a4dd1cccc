package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: linkify <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  parse      Split one message into text and preview segments")
	fmt.Fprintln(w, "  batch      Parse JSON-lines messages in parallel")
	fmt.Fprintln(w, "  serve      Run the HTTP API")
	fmt.Fprintln(w, "  config     Print or check the effective configuration")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'linkify help <command>' for details on a specific command.")
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Site:")
	fmt.Fprintln(w, "  -d, --domain <host>       Site domain (default: sirened.com)")
	fmt.Fprintln(w, "      --alias <host>        Extra site domain, repeatable")
	fmt.Fprintln(w, "      --max-size <n>        Largest message scanned for previews, in bytes")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging")
}

// printParseUsage prints usage for the parse command.
func printParseUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: linkify parse [input] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Split a message into text and preview segments. External links are")
	fmt.Fprintln(w, "removed; links to the site's books and shared shelves become previews.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Message file, or - for stdin (default: stdin)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -f, --format <s>          Output format: text, json, html")
	fmt.Fprintln(w, "  -m, --marker <s>          Text preview marker, {kind} and {path} substituted")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: stdout)")
	fmt.Fprintln(w, "  -a, --analyze             Emit segments with stripped and preserved URLs")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printBatchUsage prints usage for the batch command.
func printBatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: linkify batch [input] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Parse one JSON object per line:")
	fmt.Fprintln(w, `  {"id":"c1","message":"check /books/42"}`)
	fmt.Fprintln(w, "and write one result per line, in input order:")
	fmt.Fprintln(w, `  {"id":"c1","line":1,"segments":[...]}`)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    JSON-lines file, or - for stdin (default: stdin)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Batch:")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: stdout)")
	fmt.Fprintln(w, "  -a, --analyze             Include stripped and preserved URLs")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: linkify serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the HTTP API:")
	fmt.Fprintln(w, "  POST /api/v1/segments     {\"message\": \"...\"} -> segments")
	fmt.Fprintln(w, "  POST /api/v1/analyze      segments plus stripped and preserved URLs")
	fmt.Fprintln(w, "  POST /api/v1/render       ?format=html|text|json")
	fmt.Fprintln(w, "  GET  /api/v1/health")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "      --addr <host:port>    Listen address (default: :8080)")
	fmt.Fprintln(w, "  -m, --marker <s>          Text preview marker for /render")
	fmt.Fprintln(w, "      --max-body <n>        Request body limit in bytes")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: linkify config [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the effective configuration as YAML after applying the config")
	fmt.Fprintln(w, "file and LINKIFY_* environment variables.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --check               Validate only")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Print nothing on success")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "parse":
		printParseUsage(env.Stdout)
	case "batch":
		printBatchUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: linkify version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: linkify help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
