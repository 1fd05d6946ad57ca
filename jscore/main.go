package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"runtime/pprof"
	"strings"

	"github.com/docopt/docopt-go"
	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/TruptiM18/jscore"
	"github.com/TruptiM18/jscore/scenario"
)

const usage = `jscore

Usage:
  jscore run [-v] [--config=FILE] [--run=PATTERN] [--cpuprofile=FILE] SCENARIO...
  jscore repl [-v] [--config=FILE]
  jscore version
  jscore -h | --help

Arguments:
  SCENARIO  YAML file with one or more scenario documents.

Options:
  -v, --verbose        Log collection cycles and failing steps.
  --config=FILE        Runtime config (lenient_assignment, gc, log).
  --run=PATTERN        Only run scenarios whose name matches PATTERN.
  --cpuprofile=FILE    Write a CPU profile to FILE.
  -h, --help           Show this screen.
`

var p = message.NewPrinter(language.English)

type command struct {
	Run        bool
	Repl       bool
	Version    bool
	Verbose    bool
	Config     string
	Pattern    string
	CPUProfile string
	Scenarios  []string
}

func parseCommand(opts docopt.Opts) command {
	var c command
	c.Run, _ = opts.Bool("run")
	c.Repl, _ = opts.Bool("repl")
	c.Version, _ = opts.Bool("version")
	c.Verbose, _ = opts.Bool("--verbose")
	c.Config, _ = opts.String("--config")
	c.Pattern, _ = opts.String("--run")
	c.CPUProfile, _ = opts.String("--cpuprofile")
	c.Scenarios, _ = opts["SCENARIO"].([]string)
	return c
}

func (c *command) setup() ([]jscore.Option, *slog.Logger, error) {
	var cfg jscore.Config
	if c.Config != "" {
		var err error
		if cfg, err = jscore.LoadConfig(c.Config); err != nil {
			return nil, nil, err
		}
	}
	level := cfg.LogLevel()
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return cfg.Options(), logger, nil
}

func run(ctx context.Context, c *command) (failed int, err error) {
	opts, logger, err := c.setup()
	if err != nil {
		return 0, err
	}
	var list []*scenario.Scenario
	for _, file := range c.Scenarios {
		l, err := scenario.LoadFile(file)
		if err != nil {
			return 0, err
		}
		list = append(list, l...)
	}
	if list, err = scenario.Filter(list, c.Pattern); err != nil {
		return 0, err
	}

	rn := &scenario.Runner{Options: opts, Logger: logger}
	var passed, skipped, steps int
	for _, sc := range list {
		res, err := rn.Run(ctx, sc)
		if err != nil {
			return failed, err
		}
		steps += res.Executed
		label := sc.Name
		if sc.File != "" {
			label = filepath.Base(sc.File) + ": " + sc.Name
		}
		switch {
		case res.Skipped:
			skipped++
			p.Printf("SKIP  %s (requires %s)\n", label, sc.Requires)
		case res.Passed():
			passed++
			p.Printf("ok    %s (%d steps, %d objects live, %v)\n", label, res.Executed, res.Heap.Objects, res.Duration)
		default:
			failed++
			p.Printf("FAIL  %s\n      %v\n", label, res.Err)
		}
	}
	p.Printf("\n%d scenarios, %d passed, %d failed, %d skipped, %d steps\n", len(list), passed, failed, skipped, steps)
	return failed, nil
}

// stepReader yields one line of input at a time.
type stepReader interface {
	Prompt(prompt string) (string, error)
	Close() error
}

type linerReader struct {
	*liner.State
}

func (l linerReader) Prompt(prompt string) (string, error) {
	line, err := l.State.Prompt(prompt)
	if err == nil && strings.TrimSpace(line) != "" {
		l.AppendHistory(line)
	}
	return line, err
}

type plainReader struct {
	s *bufio.Scanner
}

func (r plainReader) Prompt(string) (string, error) {
	if !r.s.Scan() {
		if err := r.s.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.s.Text(), nil
}

func (r plainReader) Close() error {
	return nil
}

func newStepReader() stepReader {
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		l := liner.NewLiner()
		l.SetCtrlCAborts(true)
		return linerReader{l}
	}
	return plainReader{bufio.NewScanner(os.Stdin)}
}

func repl(ctx context.Context, c *command) error {
	opts, logger, err := c.setup()
	if err != nil {
		return err
	}
	host := scenario.NewHost(append(opts, jscore.WithLogger(logger))...)
	in := newStepReader()
	defer in.Close()

	for ctx.Err() == nil {
		line, err := in.Prompt("> ")
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}
		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "labels":
			fmt.Println(strings.Join(host.Labels(), " "))
			continue
		case "stats":
			hs := host.Runtime().HeapStats()
			p.Printf("%d objects, %d environments, %d allocated since last cycle, %d cycles\n",
				hs.Objects, hs.Environments, hs.Allocated, hs.Cycles)
			continue
		}
		st, err := scenario.ParseStep(line)
		if err != nil {
			fmt.Println(err)
			continue
		}
		if err := host.Exec(st); err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Println("ok")
	}
	return ctx.Err()
}

func main() {
	os.Exit(runMain(os.Args[1:]))
}

// runMain returns the process exit code so that deferred cleanup, the CPU
// profile included, runs before the process exits.
func runMain(args []string) int {
	defer func() {
		if x := recover(); x != nil {
			debug.PrintStack()
			panic(x)
		}
	}()
	opts, err := docopt.ParseArgs(usage, args, "")
	if err != nil {
		// Error in the usage doc.
		panic(err.Error())
	}
	c := parseCommand(opts)

	if c.CPUProfile != "" {
		f, err := os.Create(c.CPUProfile)
		if err != nil {
			fmt.Println(err)
			return 64
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Println(err)
			return 64
		}
		defer pprof.StopCPUProfile()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case c.Version:
		fmt.Println("jscore", jscore.Version)
	case c.Repl:
		if err := repl(ctx, &c); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Println(err)
			return 64
		}
	case c.Run:
		failed, err := run(ctx, &c)
		if err != nil {
			fmt.Println(err)
			return 64
		}
		if failed > 0 {
			return 1
		}
	}
	return 0
}
