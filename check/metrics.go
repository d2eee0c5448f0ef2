// Copyright © 2024 The ELPS authors

package check

import (
	"context"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

// Measures recorded by Checker.Check.
var (
	MeasurePrograms    = stats.Int64("splcheck/programs", "Programs checked", stats.UnitDimensionless)
	MeasureDiagnostics = stats.Int64("splcheck/diagnostics", "Diagnostics reported", stats.UnitDimensionless)
)

// Tag keys attached to the measures.
var (
	KeyVerdict = tag.MustNewKey("verdict")
	KeyKind    = tag.MustNewKey("kind")
)

// Views aggregating the measures.
var (
	ProgramsView = &view.View{
		Name:        "splcheck/programs",
		Description: "Programs checked, by verdict",
		Measure:     MeasurePrograms,
		TagKeys:     []tag.Key{KeyVerdict},
		Aggregation: view.Count(),
	}
	DiagnosticsView = &view.View{
		Name:        "splcheck/diagnostics",
		Description: "Diagnostics reported, by kind",
		Measure:     MeasureDiagnostics,
		TagKeys:     []tag.Key{KeyKind},
		Aggregation: view.Count(),
	}
)

// RegisterViews installs the checker's views with OpenCensus. Measurements
// are dropped until views are registered.
func RegisterViews() error {
	return view.Register(ProgramsView, DiagnosticsView)
}

// UnregisterViews removes the views installed by RegisterViews.
func UnregisterViews() {
	view.Unregister(ProgramsView, DiagnosticsView)
}

func recordReport(ctx context.Context, r *Report) {
	// Record only fails for invalid tag values; verdicts and kind names are
	// plain ASCII.
	_ = stats.RecordWithTags(ctx,
		[]tag.Mutator{tag.Upsert(KeyVerdict, r.Verdict())},
		MeasurePrograms.M(1))
	for _, d := range r.Diagnostics {
		_ = stats.RecordWithTags(ctx,
			[]tag.Mutator{tag.Upsert(KeyKind, d.Kind.String())},
			MeasureDiagnostics.M(1))
	}
}
