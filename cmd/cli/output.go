package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/thereceipt/titlecard-engine/internal/batch"
	"github.com/thereceipt/titlecard-engine/internal/card"
)

func printReport(rep batch.Report) {
	for _, res := range rep.Results {
		line := fmt.Sprintf("%s %s %s",
			statusStyle(res.Status).Render(fmt.Sprintf("%-8s", res.Status)),
			res.ID,
			MutedStyle.Render(res.Output))
		if res.ErrorMsg != "" {
			line += "\n         " + FailedStyle.Render(res.ErrorMsg)
		}
		fmt.Println(line)
	}

	fmt.Println(summaryBox(rep))
}

func summaryBox(rep batch.Report) string {
	s := rep.Summary
	lines := []string{
		TitleStyle.Render(fmt.Sprintf("%d cards in %s", s.Total, rep.FinishedAt.Sub(rep.StartedAt).Round(time.Millisecond))),
		RenderedStyle.Render(fmt.Sprintf("rendered %d", s.Rendered)),
	}
	if s.Skipped > 0 {
		lines = append(lines, SkippedStyle.Render(fmt.Sprintf("skipped  %d", s.Skipped)))
	}
	if s.Failed > 0 {
		lines = append(lines, FailedStyle.Render(fmt.Sprintf("%d of %d cards failed", s.Failed, s.Total)))
		for kind, n := range s.ByKind {
			lines = append(lines, MutedStyle.Render(fmt.Sprintf("  %s: %d", kind, n)))
		}
	}
	return SummaryStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func printVariants(variants []card.Metadata) {
	fmt.Println(TitleStyle.Render("Variants:"))
	for _, m := range variants {
		aliases := ""
		if len(m.Aliases) > 0 {
			aliases = MutedStyle.Render(" (" + strings.Join(m.Aliases, ", ") + ")")
		}
		fmt.Printf("  %s%s%s\n", NameStyle.Render(m.Identifier), m.ArchiveName, aliases)
	}
}

func printError(err error) {
	fmt.Fprintln(os.Stderr, FailedStyle.Render("Error: ")+err.Error())
}
