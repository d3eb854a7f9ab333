package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/thereceipt/titlecard-engine/internal/batch"
	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

// plannedCard pairs a card with the program it would render
type plannedCard struct {
	ID      string `json:"id,omitempty"`
	Variant string `json:"variant"`
	Output  string `json:"output"`
	Program any    `json:"program,omitempty"`
	Error   string `json:"error,omitempty"`
}

// writePlan builds every card without rendering and writes the programs as
// JSON. Cards that fail to build are listed with their error.
func writePlan(ctx context.Context, runner *batch.Runner, cards []cardformat.CardSpec, w io.Writer) error {
	planned := make([]plannedCard, 0, len(cards))
	failed := 0
	for _, spec := range cards {
		entry := plannedCard{ID: spec.ID, Variant: spec.Variant, Output: spec.Output}
		prog, release, err := runner.Build(ctx, spec)
		if err != nil {
			entry.Error = err.Error()
			failed++
		} else {
			entry.Program = prog
			_ = release()
		}
		planned = append(planned, entry)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(planned); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d cards could not be planned", failed, len(cards))
	}
	return nil
}
