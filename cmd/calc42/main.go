// calc42 - an RPN calculator shell around the calc42 execution core
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"golang.org/x/term"

	"github.com/chazu/calc42/core"
	"github.com/chazu/calc42/host"
	"github.com/chazu/calc42/manifest"
	"github.com/chazu/calc42/pkg/bytecode"
)

const historyFile = ".calc42_history"

func main() {
	configDir := flag.String("config", "", "Directory holding calc42.toml (default: search upwards from the working directory)")
	exprs := flag.String("e", "", "Execute instructions separated by ';' and print the stack")
	runFile := flag.String("run", "", "Run a program listing")
	disasm := flag.String("d", "", "Disassemble a program listing")
	list := flag.Bool("list", false, "List the command table")
	verbosity := flag.Int("v", -1, "Log verbosity (overrides calc42.toml)")
	logFile := flag.String("log", "", "Log file (overrides calc42.toml)")
	bigStack := flag.Bool("big", false, "Use the big stack")
	stateFile := flag.String("state", "", "Load the machine state from this file and save it on exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: calc42 [options]\n\n")
		fmt.Fprintf(os.Stderr, "Starts an interactive RPN session, or runs instructions and programs.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  calc42                      # Interactive session\n")
		fmt.Fprintf(os.Stderr, "  calc42 -e '2; 3; +'         # Prints X: 5\n")
		fmt.Fprintf(os.Stderr, "  calc42 -run solve.42s       # Run a program\n")
		fmt.Fprintf(os.Stderr, "  calc42 -d solve.42s         # Show its bytes\n")
	}
	flag.Parse()

	if *list {
		listCommands(os.Stdout)
		return
	}
	if *disasm != "" {
		p, err := readProgram(*disasm)
		if err != nil {
			fatal(err)
		}
		fmt.Print(p.DisassembleWithName(filepath.Base(*disasm)))
		return
	}

	m, err := loadManifest(*configDir)
	if err != nil {
		fatal(err)
	}
	if *verbosity >= 0 {
		m.Log.Verbosity = *verbosity
	}
	if *logFile != "" {
		m.Log.File = *logFile
	}
	configureLogging(m.Log)

	settings := m.Settings()
	if *bigStack {
		settings.BigStack = true
	}
	w := host.NewWorker(core.New(settings))
	defer w.Stop()

	if *stateFile != "" {
		if err := loadState(w, *stateFile); err != nil {
			fatal(err)
		}
	}

	code := 0
	switch {
	case *exprs != "":
		code = runLines(w, strings.Split(*exprs, ";"))
	case *runFile != "":
		code = runProgram(w, m, *runFile)
	case term.IsTerminal(int(os.Stdin.Fd())):
		code = repl(w)
	default:
		code = batch(w, os.Stdin)
	}

	if *stateFile != "" {
		if err := saveState(w, *stateFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
			code = 1
		}
	}
	if code != 0 {
		w.Stop()
		os.Exit(code)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func loadManifest(dir string) (*manifest.Manifest, error) {
	if dir != "" {
		return manifest.Load(dir)
	}
	m, err := manifest.FindAndLoad(".")
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = manifest.Default()
	}
	return m, nil
}

func configureLogging(cfg manifest.LogConfig) {
	var path *string
	if cfg.File != "" {
		path = &cfg.File
	}
	commonlog.Configure(cfg.Verbosity, path)
}

// ---------------------------------------------------------------------------
// Execution
// ---------------------------------------------------------------------------

// interruptible returns a context cancelled by the first SIGINT. Later
// signals are left to the default handler.
func interruptible() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	go func() {
		select {
		case <-sigc:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(sigc)
		cancel()
	}
}

func runLines(w *host.Worker, lines []string) int {
	ctx, stop := interruptible()
	defer stop()
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if err := w.SubmitLine(ctx, l); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", strings.TrimSpace(l), err)
			return 1
		}
	}
	printStack(w, 1)
	return 0
}

func runProgram(w *host.Worker, m *manifest.Manifest, name string) int {
	path := name
	if _, err := os.Stat(path); err != nil {
		found, ferr := m.FindProgram(name)
		if ferr != nil {
			fmt.Fprintf(os.Stderr, "cannot find %s: %v\n", name, ferr)
			return 1
		}
		path = found
	}
	p, err := readProgram(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	ctx, stop := interruptible()
	defer stop()
	if err := w.Run(ctx, p); err != nil {
		fmt.Fprintln(os.Stderr, err)
		printStack(w, 4)
		return 1
	}
	printStack(w, 4)
	return 0
}

func readProgram(path string) (*bytecode.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	defer f.Close()
	p, err := bytecode.ReadListing(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// printStack prints the lowest n levels, X last.
func printStack(w *host.Worker, n int) {
	lines, err := w.Stack(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for _, l := range lines {
		fmt.Println(l)
	}
}

// ---------------------------------------------------------------------------
// Interactive session
// ---------------------------------------------------------------------------

func repl(w *host.Worker) int {
	fmt.Println("calc42 - type :help for session commands, :quit to exit")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(completeCommand)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	for {
		line, err := ln.Prompt("> ")
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		if strings.HasPrefix(line, ":") {
			if quit := sessionCommand(w, line); quit {
				return 0
			}
			continue
		}
		execLine(w, line)
	}
}

// batch reads instructions from a non-terminal input, printing X after
// each one.
func batch(w *host.Worker, r io.Reader) int {
	sc := bufio.NewScanner(r)
	code := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if !execLine(w, line) {
			code = 1
		}
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return code
}

func execLine(w *host.Worker, line string) bool {
	ctx, stop := interruptible()
	defer stop()
	if err := w.SubmitLine(ctx, line); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}
	printStack(w, 1)
	return true
}

func sessionCommand(w *host.Worker, line string) (quit bool) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(cmd) {
	case ":quit", ":q":
		return true
	case ":stack", ":s":
		printStack(w, 1<<30)
	case ":clear":
		if err := w.Do(context.Background(), func(m *core.Machine) error {
			m.Reset()
			return nil
		}); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	case ":run":
		p, err := readProgram(arg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			break
		}
		ctx, stop := interruptible()
		if err := w.Run(ctx, p); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		printStack(w, 1)
	case ":dis":
		p, err := readProgram(arg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			break
		}
		fmt.Print(p.DisassembleWithName(filepath.Base(arg)))
	case ":save":
		if err := saveState(w, arg); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	case ":load":
		if err := loadState(w, arg); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		printStack(w, 1)
	case ":commands":
		listCommands(os.Stdout)
	case ":help":
		fmt.Println(`  :stack          show the whole stack
  :clear          reset stack, registers and variables
  :run FILE       run a program listing
  :dis FILE       disassemble a program listing
  :save FILE      save the machine state
  :load FILE      restore a saved machine state
  :commands       list the command table
  :quit           leave`)
	default:
		fmt.Println("unknown command. Type :help for the list.")
	}
	return false
}

func completeCommand(line string) []string {
	upper := strings.ToUpper(line)
	var out []string
	for _, op := range bytecode.AllOpcodes() {
		if op.IsLiteral() {
			continue
		}
		if strings.HasPrefix(op.String(), upper) {
			out = append(out, op.String())
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// State files
// ---------------------------------------------------------------------------

func saveState(w *host.Worker, path string) error {
	if path == "" {
		return errors.New("no state file given")
	}
	data, err := w.Snapshot(context.Background())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

func loadState(w *host.Worker, path string) error {
	if path == "" {
		return errors.New("no state file given")
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	return w.Restore(context.Background(), data)
}
