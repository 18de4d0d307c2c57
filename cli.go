package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

func showUsage() {
	fmt.Fprintf(os.Stderr, `MINIMUM - a small interpreted language

Usage:
    minimum <file> [-c] [-l] [-p] [-f] [-a]
    minimum <command> [arguments]

Commands:
    run <file>      Run a .min file (same as "minimum <file>")
    check <file>    Parse a .min file without running it
    fmt <file>      Print a .min file in canonical form
    eval <code>     Run inline MINIMUM code
    help            Show this help message

Environment:
    MINIMUM_LIBRARY_ROOT    directory of script libraries (default "libraries")
    MINIMUM_LIBRARY_CACHE   compiled script libraries to keep (default 32)
    MINIMUM_MAX_DEPTH       maximum nesting of function calls (default 10000)
    MINIMUM_API_SIGNAL      line written before input in API mode (default "API_MODE")
    MINIMUM_TRACE           print every function call to stderr

Examples:
    minimum examples/hello.min
    minimum examples/hello.min -p
    minimum eval 'use io
start main
out | "hi"
end'

Use "minimum run -h" for more information about the flags.
`)
}

// runOptions are the flags of the run command.
type runOptions struct {
	echoSource bool
	echoTokens bool
	echoTree   bool
	echoFormat bool
	apiMode    bool
}

func (o runOptions) echoes() bool {
	return o.echoSource || o.echoTokens || o.echoTree || o.echoFormat
}

func runFlags(name string, opts *runOptions) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.BoolVar(&opts.echoSource, "c", false, "Echo the source with line numbers")
	fs.BoolVar(&opts.echoTokens, "l", false, "Echo the tokens of every line")
	fs.BoolVar(&opts.echoTree, "p", false, "Echo the parsed tree as an s-expression")
	fs.BoolVar(&opts.echoFormat, "f", false, "Echo the program in canonical form")
	fs.BoolVar(&opts.apiMode, "a", false, "API mode: signal on stdout before reading input")
	return fs
}

// parseInterleaved parses flags that may come before or after the single
// positional argument.
func parseInterleaved(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() == 0 {
		return "", errors.New("expected exactly one argument")
	}
	arg := fs.Arg(0)
	if err := fs.Parse(fs.Args()[1:]); err != nil {
		return "", err
	}
	if fs.NArg() != 0 {
		return "", errors.New("expected exactly one argument")
	}
	return arg, nil
}

func runCommand(args []string) {
	var opts runOptions
	fs := runFlags("run", &opts)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: minimum run <file> [-c] [-l] [-p] [-f] [-a]\n")
		fmt.Fprintf(os.Stderr, "Run a .min file\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	filename, err := parseInterleaved(fs, args)
	if err != nil {
		showUsage()
		os.Exit(1)
	}
	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file %s: %v\n\n", filename, err)
		showUsage()
		os.Exit(1)
	}

	exitOn(execute(string(src), opts, LoadConfig(), os.Stdin, os.Stdout, os.Stderr))
}

func evalCommand(args []string) {
	var opts runOptions
	fs := runFlags("eval", &opts)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: minimum eval [-c] [-l] [-p] [-f] [-a] <code>\n")
		fmt.Fprintf(os.Stderr, "Run inline MINIMUM code\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	code, err := parseInterleaved(fs, args)
	if err != nil {
		fs.Usage()
		os.Exit(1)
	}
	exitOn(execute(code, opts, LoadConfig(), os.Stdin, os.Stdout, os.Stderr))
}

func checkCommand(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Print the parsed tree")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: minimum check [-v] <file>\n")
		fmt.Fprintf(os.Stderr, "Parse a .min file without running it\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	filename, err := parseInterleaved(fs, args)
	if err != nil {
		fs.Usage()
		os.Exit(1)
	}
	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file %s: %v\n", filename, err)
		os.Exit(1)
	}

	prog, err := ParseSource(string(src))
	exitOn(err)
	fmt.Printf("%s: no errors found\n", filename)
	if *verbose {
		fmt.Printf("AST: %s\n", ToSExpr(prog))
	}
}

func fmtCommand(args []string) {
	fs := flag.NewFlagSet("fmt", flag.ExitOnError)
	write := fs.Bool("w", false, "Write the result back to the file")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: minimum fmt [-w] <file>\n")
		fmt.Fprintf(os.Stderr, "Print a .min file in canonical form\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	filename, err := parseInterleaved(fs, args)
	if err != nil {
		fs.Usage()
		os.Exit(1)
	}
	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file %s: %v\n", filename, err)
		os.Exit(1)
	}

	prog, err := ParseSource(string(src))
	exitOn(err)
	out := Format(prog)
	if *write {
		exitOn(os.WriteFile(filename, []byte(out), 0644))
		return
	}
	fmt.Print(out)
}

// execute tokenizes, parses and runs src, echoing the intermediate stages
// the options ask for.
func execute(src string, opts runOptions, cfg Config, stdin io.Reader, stdout, stderr io.Writer) error {
	w := bufio.NewWriter(stdout)
	defer w.Flush()

	if opts.echoSource {
		echoSource(w, src)
	}
	lines, err := Tokenize(src)
	if err != nil {
		return err
	}
	if opts.echoTokens {
		echoTokens(w, lines)
	}
	prog, err := Parse(lines)
	if err != nil {
		return err
	}
	if opts.echoTree {
		fmt.Fprintln(w, ToSExpr(prog))
	}
	if opts.echoFormat {
		fmt.Fprint(w, Format(prog))
	}
	if opts.echoes() {
		fmt.Fprintln(w, "Produced output:")
	}

	scripts, err := NewScriptLoader(cfg.LibraryRoot, cfg.LibraryCache)
	if err != nil {
		return err
	}
	host := &Host{
		Stdin:   bufio.NewReader(stdin),
		Stdout:  w,
		APIMode: opts.apiMode,
		Signal:  cfg.APISignal,
	}
	interpOpts := []Option{WithMaxDepth(cfg.MaxDepth)}
	if cfg.Trace {
		interpOpts = append(interpOpts, WithTrace(stderr))
	}
	return NewInterpreter(NewRegistry(host, scripts), interpOpts...).Run(prog)
}

func echoSource(w io.Writer, src string) {
	lines := strings.Split(strings.TrimRight(src, "\n"), "\n")
	width := len(strconv.Itoa(len(lines)))
	for i, l := range lines {
		fmt.Fprintf(w, "%*d | %s\n", width, i+1, l)
	}
}

func echoTokens(w io.Writer, lines []Line) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Line", "Kind", "Value"})
	table.SetAutoFormatHeaders(false)
	for _, l := range lines {
		for _, t := range l.Tokens {
			table.Append([]string{strconv.Itoa(l.Number), string(t.Kind), t.Literal()})
		}
	}
	table.Render()
}

func reportError(w io.Writer, err error) {
	color.New(color.FgRed, color.Bold).Fprint(w, "error: ")
	fmt.Fprintln(w, err)
}

func exitOn(err error) {
	if err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "run":
		runCommand(args)
	case "eval":
		evalCommand(args)
	case "check":
		checkCommand(args)
	case "fmt":
		fmtCommand(args)
	case "help", "-h", "--help":
		showUsage()
	default:
		runCommand(os.Args[1:])
	}
}
