package ui

import (
	"fmt"
	"time"
)

// RunStats is what the console summary shows after a run.
type RunStats struct {
	Operations int
	Unmatched  int
	Variations int
	Failed     int
	Skipped    int
	ByCategory []CategoryStat
	Output     string
	Duration   time.Duration
}

// CategoryStat counts variations and skips of one category.
type CategoryStat struct {
	Category   string
	Variations int
	Skipped    int
}

// PrintSummary prints the end of run statistics.
func PrintSummary(s RunStats) {
	if IsSilent() {
		return
	}
	PrintSection("Summary")
	stat := func(label string, value any) {
		emit(fmt.Sprintf("  %s %s",
			StatLabelStyle.Width(12).Render(label),
			StatValueStyle.Render(fmt.Sprint(value))))
	}
	stat("Operations", s.Operations)
	if s.Unmatched > 0 {
		stat("Unmatched", s.Unmatched)
	}
	stat("Variations", s.Variations)
	stat("Skipped", s.Skipped)
	if s.Failed > 0 {
		stat("Partial", s.Failed)
	}
	stat("Duration", s.Duration.Round(time.Millisecond))

	if len(s.ByCategory) > 0 {
		emit("")
		for _, c := range s.ByCategory {
			emit(fmt.Sprintf("  %s %4d generated %4d skipped",
				CategoryStyle(c.Category).Width(12).Render(c.Category),
				c.Variations, c.Skipped))
		}
	}

	emit("")
	switch {
	case s.Variations == 0:
		PrintWarning("No variations generated")
	case s.Output != "":
		PrintSuccess(fmt.Sprintf("%d variations written to %s", s.Variations, s.Output))
	default:
		PrintSuccess(fmt.Sprintf("%d variations generated", s.Variations))
	}
}
