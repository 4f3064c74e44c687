// Package chart draws the allocation of a portfolio.
package chart

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/etnz/folio"
	"github.com/wcharczuk/go-chart/v2"
)

// ErrNothingToDraw is returned when no position has a known, positive value.
var ErrNothingToDraw = errors.New("no valued position")

// Slice is one part of the allocation.
type Slice struct {
	Label string
	Value float64
}

// Allocation returns the share of each position with a known, positive
// current value, in the report order. Positions are labelled with their
// product name.
func Allocation(r *folio.Report) []Slice {
	var slices []Slice
	for _, p := range r.Priced() {
		value, _ := p.CurrentValue.Decimal()
		slices = append(slices, Slice{Label: p.Product, Value: value.InexactFloat64()})
	}
	return slices
}

// RenderAllocation renders a PNG pie chart of the allocation of the report.
// Returns raw PNG bytes.
func RenderAllocation(r *folio.Report, width, height int) ([]byte, error) {
	slices := Allocation(r)
	if len(slices) == 0 {
		return nil, ErrNothingToDraw
	}

	values := make([]chart.Value, len(slices))
	for i, s := range slices {
		values[i] = chart.Value{Value: s.Value, Label: s.Label}
	}

	graph := chart.PieChart{
		Title:  "Portfolio Allocation",
		Width:  width,
		Height: height,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.Bytes(), nil
}
