// Package transform adds constructor metadata to the classes of a program.
//
// Every named class declaration or expression gains two static getters:
//
//	static get [Symbol.for("___CTOR_ARGS___")]() { return ["Foo", "Bar"]; }
//	static get [Symbol.for("___CTOR_NAME___")]() { return "Sample"; }
//
// The first lists the simple named types annotating the constructor
// parameters, the second the class name. Anonymous classes are left alone.
package transform

import (
	"os"

	"github.com/coreoz/ctormeta/internal/ast"
	"github.com/coreoz/ctormeta/internal/config"
	"github.com/coreoz/ctormeta/internal/logger"
	"github.com/coreoz/ctormeta/internal/metadata"
)

// Option configures a Visitor.
type Option func(*Visitor)

// WithLogger sends class reports to l instead of a stdout logger. Debug
// renderings only appear when l is enabled for debug.
func WithLogger(l logger.Logger) Option {
	return func(v *Visitor) {
		v.reporter.log = l
	}
}

// WithFile records path as the File of every collected class.
func WithFile(path string) Option {
	return func(v *Visitor) {
		v.file = path
	}
}

// Visitor is an ast.Visitor that processes every class it meets. It does not
// descend into a class once matched, so nested classes are not processed.
type Visitor struct {
	file     string
	reporter reporter
	classes  []metadata.Class
}

// New returns a visitor for one pass. cfg is read, never modified.
func New(cfg config.Config, opts ...Option) *Visitor {
	v := &Visitor{reporter: reporter{level: cfg.Log}}
	for _, opt := range opts {
		opt(v)
	}
	if v.reporter.log == nil && cfg.Log.Enabled() {
		v.reporter.log = logger.NewLogger(&logger.Config{
			Level:  LoggerLevel(cfg.Log),
			Output: os.Stdout,
		})
	}
	return v
}

// Visit implements ast.Visitor.
func (v *Visitor) Visit(node ast.Node) ast.Visitor {
	if node == nil {
		return nil
	}
	ident, class, ok := ast.ClassOf(node)
	if !ok {
		return v
	}
	if ident != nil && class != nil {
		v.classes = append(v.classes, v.processClass(ident.Name, class))
	}
	return nil
}

// Classes returns the metadata of the classes processed so far, in visit order.
func (v *Visitor) Classes() []metadata.Class {
	return v.classes
}

// Run processes prog in place and returns the metadata of every processed class.
func Run(prog *ast.Program, cfg config.Config, opts ...Option) []metadata.Class {
	v := New(cfg, opts...)
	if prog != nil {
		ast.Walk(v, prog)
	}
	return v.Classes()
}

// LoggerLevel maps a pass log level onto the logger verbosity that shows
// every line the pass prints at that level.
func LoggerLevel(l config.LogLevel) logger.Level {
	if l == config.LogDebug {
		return logger.DebugLevel
	}
	return logger.InfoLevel
}
