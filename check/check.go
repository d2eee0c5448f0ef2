// Copyright © 2024 The ELPS authors

// Package check runs the semantic phases of the SPL front end over a syntax
// tree and collects their diagnostics into a Report.
//
// Each check is a Phase that receives a Pass. Phases run in order and share
// the results of earlier phases through the Pass. The first phase that
// reports an error stops the run: later phases are recorded as skipped, so
// a program is never type checked against a broken scope tree.
package check

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/luthersystems/splcheck/analysis"
	"github.com/luthersystems/splcheck/ast"
	"github.com/luthersystems/splcheck/diagnostic"
	"github.com/luthersystems/splcheck/typecheck"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer spans are created with.
const TracerName = "github.com/luthersystems/splcheck/check"

// Phase defines a single semantic pass.
type Phase struct {
	// Name is a short identifier (e.g. "scope"). Spans are named
	// "splcheck.<Name>".
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Run executes the phase. Problems with the program are reported through
	// the pass; a returned error means the phase itself could not run.
	Run func(pass *Pass) error
}

// Pass provides context to a running phase.
type Pass struct {
	// Phase is the currently running phase.
	Phase *Phase

	Context context.Context
	Tree    *ast.Tree
	Logger  logrus.FieldLogger

	// Semantics is set by the scope phase.
	Semantics *analysis.Result
	// Types is set by the types phase.
	Types *typecheck.Result

	diagnostics []diagnostic.Diagnostic
}

// Report records diagnostics found by the running phase.
func (p *Pass) Report(diags ...diagnostic.Diagnostic) {
	p.diagnostics = append(p.diagnostics, diags...)
}

// PhaseResult summarizes one phase of a run.
type PhaseResult struct {
	Name        string                  `json:"name"`
	Skipped     bool                    `json:"skipped,omitempty"`
	OK          bool                    `json:"ok"`
	Diagnostics []diagnostic.Diagnostic `json:"-"`
	Duration    time.Duration           `json:"duration_ns"`
}

// Report is the outcome of checking one program.
type Report struct {
	// File is the name the tree was read from, if known.
	File        string                  `json:"file,omitempty"`
	Semantics   *analysis.Result        `json:"-"`
	Types       *typecheck.Result       `json:"-"`
	Phases      []PhaseResult           `json:"phases"`
	Diagnostics []diagnostic.Diagnostic `json:"diagnostics"`
	OK          bool                    `json:"ok"`
}

// Verdict values.
const (
	Accepted = "accepted"
	Rejected = "rejected"
)

// Verdict returns Accepted or Rejected.
func (r *Report) Verdict() string {
	if r.OK {
		return Accepted
	}
	return Rejected
}

// FormatJSON writes r as indented JSON.
func (r *Report) FormatJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	cp := *r
	if cp.Diagnostics == nil {
		cp.Diagnostics = []diagnostic.Diagnostic{}
	}
	return enc.Encode(struct {
		*Report
		Verdict string `json:"verdict"`
	}{&cp, r.Verdict()})
}

// Checker runs a set of phases over syntax trees.
type Checker struct {
	// Phases run in order. Nil means DefaultPhases.
	Phases []*Phase

	// Logger receives debug traces from every phase. Nil discards them.
	Logger logrus.FieldLogger

	// TracerProvider creates phase spans. Nil means the global provider.
	TracerProvider trace.TracerProvider
}

func (c *Checker) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func (c *Checker) tracer() trace.Tracer {
	tp := c.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(TracerName)
}

// Check runs the phases over tree. Program errors are returned in the
// report; the error result is reserved for cancellation and for phases that
// could not run.
func (c *Checker) Check(ctx context.Context, tree *ast.Tree) (*Report, error) {
	phases := c.Phases
	if phases == nil {
		phases = DefaultPhases()
	}
	report := &Report{File: tree.Root.Pos.File}
	log := c.logger()
	if report.File != "" {
		log = log.WithField("file", report.File)
	}

	tracer := c.tracer()
	ctx, span := tracer.Start(ctx, "splcheck.check")
	defer span.End()
	if report.File != "" {
		span.SetAttributes(semconv.CodeFilepath(report.File))
	}

	pass := &Pass{Context: ctx, Tree: tree}
	failed := false
	for _, ph := range phases {
		if failed {
			report.Phases = append(report.Phases, PhaseResult{Name: ph.Name, Skipped: true})
			log.WithField("phase", ph.Name).Debug("phase skipped")
			continue
		}
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		pass.Phase = ph
		pass.Logger = log.WithField("phase", ph.Name)
		pass.diagnostics = nil
		res, err := runPhase(ctx, tracer, pass)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("phase %s: %w", ph.Name, err)
		}
		report.Phases = append(report.Phases, res)
		report.Diagnostics = append(report.Diagnostics, res.Diagnostics...)
		failed = !res.OK
	}
	report.Semantics = pass.Semantics
	report.Types = pass.Types
	report.OK = !failed

	span.SetAttributes(
		attribute.String("splcheck.verdict", report.Verdict()),
		attribute.Int("splcheck.diagnostics", len(report.Diagnostics)),
	)
	recordReport(ctx, report)
	log.WithFields(logrus.Fields{
		"verdict":     report.Verdict(),
		"diagnostics": len(report.Diagnostics),
	}).Debug("check finished")
	return report, nil
}

func runPhase(ctx context.Context, tracer trace.Tracer, pass *Pass) (PhaseResult, error) {
	ph := pass.Phase
	ctx, span := tracer.Start(ctx, "splcheck."+ph.Name)
	defer span.End()
	pass.Context = ctx

	start := time.Now()
	err := ph.Run(pass)
	res := PhaseResult{
		Name:        ph.Name,
		Diagnostics: pass.diagnostics,
		OK:          err == nil && !diagnostic.HasErrors(pass.diagnostics),
		Duration:    time.Since(start),
	}
	span.SetAttributes(
		attribute.Bool("splcheck.ok", res.OK),
		attribute.Int("splcheck.diagnostics", len(res.Diagnostics)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}
	pass.Logger.WithFields(logrus.Fields{
		"ok":          res.OK,
		"diagnostics": len(res.Diagnostics),
		"duration":    res.Duration,
	}).Debug("phase finished")
	return res, nil
}
