package chart

import (
	"bytes"
	"errors"
	"testing"

	"github.com/etnz/folio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() *folio.Report {
	return &folio.Report{
		Currency: "EUR",
		Positions: []folio.Position{
			{Product: "ASML HOLDING", CurrentValue: folio.N(1100)},
			{Product: "UNPRICED"},
			{Product: "VANGUARD FTSE AW", CurrentValue: folio.N(300.5)},
			{Product: "WORTHLESS", CurrentValue: folio.N(0)},
		},
	}
}

func TestAllocation(t *testing.T) {
	got := Allocation(testReport())
	assert.Equal(t, []Slice{
		{Label: "ASML HOLDING", Value: 1100},
		{Label: "VANGUARD FTSE AW", Value: 300.5},
	}, got)
}

func TestRenderAllocation(t *testing.T) {
	png, err := RenderAllocation(testReport(), 512, 512)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")), "not a PNG")
}

func TestRenderAllocationEmpty(t *testing.T) {
	_, err := RenderAllocation(&folio.Report{}, 512, 512)
	assert.True(t, errors.Is(err, ErrNothingToDraw))
}
