package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/deosjr/grove/lisp"
	"github.com/deosjr/grove/prelude"
)

const (
	historyFile = ".grove_history"
	promptMain  = "> "
	promptCont  = ". "
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg := lisp.DefaultConfig()
	if *configPath != "" {
		c, err := lisp.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		cfg = c
	}
	l, err := newLisp(cfg, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if flag.NArg() < 1 {
		startREPL(l)
		return
	}
	os.Exit(runFile(l, flag.Arg(0), os.Stdout, os.Stderr))
}

func newLisp(cfg lisp.Config, out io.Writer) (lisp.Lisp, error) {
	l := lisp.New(cfg)
	// output is the front end's business, the core has no I/O
	l.Env.AddBuiltin("print", func(args []lisp.Value) lisp.Value {
		s := make([]string, len(args))
		for i, a := range args {
			if str, ok := lisp.AsString(a); ok {
				s[i] = str
				continue
			}
			s[i] = a.String()
		}
		fmt.Fprintln(out, strings.Join(s, " "))
		return lisp.Nil{}
	})
	if cfg.Prelude {
		if err := prelude.Load(l); err != nil {
			return l, fmt.Errorf("loading prelude: %w", err)
		}
	}
	return l, nil
}

// runFile evaluates every top-level form in filename and stops at the
// first one that evaluates to an error.
func runFile(l lisp.Lisp, filename string, stdout, stderr io.Writer) int {
	b, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	for _, tree := range l.Parse(string(b)) {
		v := l.Evaluator.EvaluateTree(tree, l.Env)
		if err, ok := v.(*lisp.Error); ok {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	return 0
}

func startREPL(l lisp.Lisp) {
	fmt.Println("grove REPL. Ctrl+D or :quit exits.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

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

	reader := l.Reader()
	for {
		src, ok := readForm(ln, reader)
		if !ok {
			fmt.Println()
			return
		}
		switch strings.TrimSpace(src) {
		case "":
			continue
		case ":quit":
			return
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		for _, v := range l.Eval(src) {
			fmt.Println(v)
		}
	}
}

// readForm keeps prompting while the input leaves a list open.
func readForm(ln *liner.State, reader lisp.Reader) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !lisp.Incomplete(reader.Tokenize(b.String())) {
			return b.String(), true
		}
	}
}
