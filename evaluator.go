package riftplot

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"go.uber.org/zap"
	"go.uber.org/zap/zapio"
)

// PlotPackage is the import path of the builder API inside scene source.
const PlotPackage = "riftplot/plot"

// allowedImports are the only packages scene source may import.
var allowedImports = map[string]bool{
	"math":      true,
	PlotPackage: true,
}

// scenePrelude wraps a function-body source. mathbox is the root Builder.
const scenePrelude = `package main

import (
	"math"
	"riftplot/plot"
)

var _ = math.Pi

func main() {
	mathbox := plot.Root()
	_ = mathbox
`

var preludeLines = strings.Count(scenePrelude, "\n")

// EvaluatorStats counts evaluations since the evaluator was created.
type EvaluatorStats struct {
	Evaluations  int
	Failures     int
	LastDuration time.Duration
}

// Evaluator runs scene source against a SceneGraph. Each call tears the
// scene down, interprets the source with a builder-only capability set, and
// commits the new generation when the source succeeds.
//
// Scene source is either the body of a function, with `mathbox` in scope, or
// a complete `package main` file that obtains the root with plot.Root().
// Only "math" and "riftplot/plot" can be imported and go statements are
// rejected. Non-terminating source blocks the caller.
type Evaluator struct {
	graph  *SceneGraph
	logger *zap.Logger
	stats  EvaluatorStats
}

// NewEvaluator creates an evaluator bound to graph.
func NewEvaluator(graph *SceneGraph, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{graph: graph, logger: logger}
}

// Stats returns evaluation counters.
func (e *Evaluator) Stats() EvaluatorStats {
	return e.stats
}

// Check parses and validates source without touching the scene.
func (e *Evaluator) Check(source string) error {
	if _, offset, err := prepareSource(source); err != nil {
		return &EvaluationError{Line: sourceLine(err, offset), Err: err}
	}
	return nil
}

// Evaluate replaces the scene with the one described by source.
//
// The previous scene is always removed first. On success every cartesian
// node receives AxisCorrection as its rotation and the generation is
// committed. On failure the partially built generation is discarded, the
// scene is left empty, and an *EvaluationError is returned.
func (e *Evaluator) Evaluate(source string) error {
	start := time.Now()
	evalID := uuid.NewString()

	removed, _ := e.graph.RemoveAll("*")
	root := e.graph.beginGeneration()
	gen := e.graph.Generation()
	log := e.logger.With(zap.String("eval_id", evalID), zap.Uint64("generation", gen))
	log.Debug("scene torn down", zap.Int("removed", removed))

	e.stats.Evaluations++
	defer func() { e.stats.LastDuration = time.Since(start) }()

	fail := func(err error, offset int) error {
		discarded := e.graph.discard()
		e.stats.Failures++
		line := sourceLine(err, offset)
		log.Warn("evaluation failed",
			zap.Error(err),
			zap.Int("line", line),
			zap.Int("discarded", discarded),
		)
		return &EvaluationError{EvalID: evalID, Generation: gen, Line: line, Err: err}
	}

	program, offset, err := prepareSource(source)
	if err != nil {
		return fail(err, offset)
	}
	if err := e.run(program, root, log); err != nil {
		return fail(err, offset)
	}
	if err := root.Err(); err != nil {
		return fail(err, 0)
	}

	cartesians, _ := e.graph.Select("cartesian")
	for _, n := range cartesians.Nodes() {
		n.Rotation = AxisCorrection
		n.MarkDirty()
	}
	e.graph.Commit()

	log.Info("scene evaluated",
		zap.Int("nodes", e.graph.NodeCount()),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// run interprets program in a fresh interpreter that can only see math and
// the plot package. Panics escaping the interpreter are recovered.
func (e *Evaluator) run(program string, root *Builder, log *zap.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
		}
	}()

	out := &zapio.Writer{Log: log.Named("scene"), Level: zap.InfoLevel}
	defer out.Close()

	in := interp.New(interp.Options{Stdout: out, Stderr: out})
	if err := in.Use(interp.Exports{"math/math": stdlib.Symbols["math/math"]}); err != nil {
		return fmt.Errorf("load math symbols: %w", err)
	}
	if err := in.Use(plotSymbols(root)); err != nil {
		return fmt.Errorf("load plot symbols: %w", err)
	}
	_, err = in.Eval(program)
	return err
}

// plotSymbols exports the builder API as package riftplot/plot. Root is bound
// to this evaluation's root builder.
func plotSymbols(root *Builder) interp.Exports {
	return interp.Exports{
		PlotPackage + "/plot": {
			"Root":      reflect.ValueOf(func() *Builder { return root }),
			"Builder":   reflect.ValueOf((*Builder)(nil)),
			"Selection": reflect.ValueOf((*Selection)(nil)),
			"Props":     reflect.ValueOf((*Props)(nil)),
			"Color":     reflect.ValueOf((*Color)(nil)),
			"Range":     reflect.ValueOf((*Range)(nil)),
		},
	}
}

// prepareSource wraps a function body in the scene prelude, or accepts a full
// package main file, then rejects forbidden imports and go statements. It
// returns the program and the number of prelude lines before user line 1.
func prepareSource(source string) (string, int, error) {
	program, offset := source, 0
	if !isPackageFile(source) {
		program = scenePrelude + source + "\n}\n"
		offset = preludeLines
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "scene.go", program, 0)
	if err != nil {
		return "", offset, err
	}
	for _, imp := range file.Imports {
		path, _ := strconv.Unquote(imp.Path.Value)
		if !allowedImports[path] {
			pos := fset.Position(imp.Pos())
			return "", offset, fmt.Errorf("%d:%d: %w %q", pos.Line, pos.Column, ErrForbiddenImport, path)
		}
	}
	var goErr error
	ast.Inspect(file, func(n ast.Node) bool {
		if g, ok := n.(*ast.GoStmt); ok && goErr == nil {
			pos := fset.Position(g.Pos())
			goErr = fmt.Errorf("%d:%d: %w", pos.Line, pos.Column, ErrGoroutine)
		}
		return goErr == nil
	})
	if goErr != nil {
		return "", offset, goErr
	}
	return program, offset, nil
}

func isPackageFile(source string) bool {
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		return strings.HasPrefix(line, "package ")
	}
	return false
}

var positionRE = regexp.MustCompile(`(?:^|[^\d])(\d+):(\d+):`)

// sourceLine returns the user-source line err points at. Lines inside the
// prelude, and errors without a position, map to 0.
func sourceLine(err error, offset int) int {
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		return userLine(list[0].Pos.Line, offset)
	}
	m := positionRE.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	line, _ := strconv.Atoi(m[1])
	return userLine(line, offset)
}

func userLine(line, offset int) int {
	if line <= offset {
		return 0
	}
	return line - offset
}
