package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressLine(t *testing.T) {
	line := tui.ProgressLine(termenv.Ascii, domain.Progress{Answered: 2, Total: 5, Percentage: 40})
	assert.Equal(t, "[########............] 2/5 (40%)", line)

	assert.Equal(t, "[....................] 0/0 (0%)", tui.ProgressLine(termenv.Ascii, domain.Progress{}))
}

func TestRenderer(t *testing.T) {
	out, err := tui.NewRenderer(60)("**Trip to Denver**")
	require.NoError(t, err)
	assert.Contains(t, out, "Trip to Denver")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|__/")
}
