package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/thereceipt/titlecard-engine/internal/app"
	"github.com/thereceipt/titlecard-engine/internal/batch"
	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

// Messages
type batchStartMsg struct{ total int }
type cardDoneMsg struct {
	done, total int
	res         batch.Result
}
type batchDoneMsg struct{}

// progressModel shows a live bar while a batch renders
type progressModel struct {
	bar      progress.Model
	cancel   context.CancelFunc
	total    int
	done     int
	failed   int
	last     batch.Result
	stopping bool
	finished bool
}

func newProgressModel(cancel context.CancelFunc) progressModel {
	return progressModel{
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(48)),
		cancel: cancel,
	}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			// Cards already dispatched finish; the rest are skipped and
			// the batch reports back through batchDoneMsg.
			m.stopping = true
			m.cancel()
		}

	case tea.WindowSizeMsg:
		m.bar.Width = max(10, min(msg.Width-4, 64))

	case batchStartMsg:
		m.total = msg.total

	case cardDoneMsg:
		m.done, m.total, m.last = msg.done, msg.total, msg.res
		if msg.res.Status == batch.StatusFailed {
			m.failed++
		}
		if m.total > 0 {
			return m, m.bar.SetPercent(float64(m.done) / float64(m.total))
		}

	case batchDoneMsg:
		m.finished = true
		return m, tea.Quit

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.finished {
		return ""
	}

	var b strings.Builder
	title := "Rendering"
	if m.stopping {
		title = "Stopping"
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString(MutedStyle.Render(fmt.Sprintf(" %d/%d cards", m.done, m.total)))
	if m.failed > 0 {
		b.WriteString(" " + FailedStyle.Render(fmt.Sprintf("%d failed", m.failed)))
	}
	b.WriteString("\n" + m.bar.View() + "\n")
	if m.last.Status != "" {
		b.WriteString(statusStyle(m.last.Status).Render(m.last.Status) + " " + MutedStyle.Render(m.last.Output) + "\n")
	}
	return b.String()
}

// progressObserver forwards batch progress into a running program
type progressObserver struct {
	send func(tea.Msg)
}

func (o progressObserver) OnStart(total int) {
	o.send(batchStartMsg{total: total})
}

func (o progressObserver) OnCardDone(done, total int, res batch.Result) {
	o.send(cardDoneMsg{done: done, total: total, res: res})
}

// runWithProgress renders cards behind a progress bar. The report is
// returned once the batch has finished, even if the display stopped early.
func runWithProgress(ctx context.Context, engine *app.App, cards []cardformat.CardSpec) batch.Report {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prog := tea.NewProgram(newProgressModel(cancel))
	reports := make(chan batch.Report, 1)
	go func() {
		obs := batch.Observers{progressObserver{send: prog.Send}, engine.Observer()}
		reports <- engine.Runner.RunWithObserver(ctx, cards, obs)
		prog.Send(batchDoneMsg{})
	}()

	if _, err := prog.Run(); err != nil {
		engine.Logger.Warn("progress display failed", "error", err)
		cancel()
	}
	return <-reports
}
