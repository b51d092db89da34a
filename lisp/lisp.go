package lisp

// Lisp bundles a reader, an evaluator and one module environment.
type Lisp struct {
	Env       *Env
	Evaluator *Evaluator
	reader    Reader
}

func New(cfg Config) Lisp {
	ev := NewEvaluator()
	ev.DotSigil = cfg.DotSigil
	return Lisp{
		Env:       GlobalEnv(cfg.Module),
		Evaluator: ev,
		reader:    Reader{Module: cfg.Module, KeywordPrefix: cfg.KeywordPrefix},
	}
}

// Reader returns the reader configured for this Lisp.
func (l Lisp) Reader() Reader {
	return l.reader
}

// Parse reads and builds src without evaluating it.
func (l Lisp) Parse(src string) Forest {
	return Build(l.Env.Module, l.reader.Tokenize(src))
}

// Eval evaluates every top-level form of src, returning one value each.
func (l Lisp) Eval(src string) []Value {
	return l.Evaluator.Evaluate(l.Parse(src), l.Env)
}

// Load evaluates src into the environment, stopping at the first form
// that evaluates to an error.
func (l Lisp) Load(src string) error {
	for _, tree := range l.Parse(src) {
		if err, ok := l.Evaluator.EvaluateTree(tree, l.Env).(*Error); ok {
			return err
		}
	}
	return nil
}
