package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"semgraph/internal/diag"
	"semgraph/internal/observ"
	"semgraph/internal/pipeline"
	"semgraph/internal/source"
)

func noColor() bool { return color.NoColor }

func printSummary(out io.Writer, s *session, cached bool) {
	var errs, warns int
	for _, d := range s.Bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	suffix := ""
	if cached {
		suffix = " (cached)"
	}
	units := fmt.Sprintf("%d unit(s)", len(s.Units))
	if errs == 0 {
		fmt.Fprintf(out, "%s %s checked, %d warning(s)%s\n", color.GreenString("ok:"), units, warns, suffix)
		return
	}
	fmt.Fprintf(out, "%s %s checked, %d error(s), %d warning(s)%s\n", color.RedString("failed:"), units, errs, warns, suffix)
}

func printStageTimings(out io.Writer, timings pipeline.Timings) {
	for _, st := range pipeline.Stages {
		if timings.Has(st) {
			fmt.Fprintf(out, "%-26s %8.1f ms\n", st, toMillis(timings.Duration(st)))
		}
	}
	if total := timings.Sum(); total > 0 {
		fmt.Fprintf(out, "%-26s %8.1f ms\n", "total", toMillis(total))
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

type timingPayload struct {
	Kind    string               `json:"kind"`
	Cached  bool                 `json:"cached,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// appendTimingDiagnostic records the timer report as an info diagnostic so
// json and sarif output carry it. The bag grows past its limit if needed.
func appendTimingDiagnostic(bag *diag.Bag, report observ.Report, cached bool) {
	data, err := json.Marshal(timingPayload{Kind: "check", Cached: cached, TotalMS: report.TotalMS, Phases: report.Phases})
	if err != nil {
		return
	}
	d := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, fmt.Sprintf("timings (check): total %.2f ms", report.TotalMS)).
		WithNote(source.Span{}, string(data))
	if bag.Add(d) {
		return
	}
	overflow := diag.NewBag(1)
	overflow.Add(d)
	bag.Merge(overflow)
}
