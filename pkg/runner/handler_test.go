package runner_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ioPipe() (*io.PipeReader, *io.PipeWriter) { return io.Pipe() }

func TestTextHandler_RendersAndShowsProgress(t *testing.T) {
	var out bytes.Buffer
	h := runner.NewTextHandler(strings.NewReader(""), &out,
		runner.WithTextHandlerRenderer(func(md string) (string, error) { return strings.ToUpper(md), nil }),
		runner.WithTextHandlerProgress(func(p domain.Progress) string { return "progress" }))

	require.NoError(t, h.Output(context.Background(), &domain.TurnResponse{
		Message:  "what dates?",
		Question: "dates",
		Progress: domain.Progress{Answered: 1, Total: 5, Percentage: 20},
	}))
	assert.Equal(t, "WHAT DATES?\nprogress\n", out.String())

	out.Reset()
	require.NoError(t, h.Output(context.Background(), &domain.TurnResponse{Message: "done"}))
	assert.Equal(t, "DONE\n", out.String())
}

func TestTextHandler_Input(t *testing.T) {
	var out bytes.Buffer
	h := runner.NewTextHandler(strings.NewReader("  Denver  \n"), &out)
	text, err := h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Denver", text)
	assert.Equal(t, "> ", out.String())

	_, err = h.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestJSONHandler(t *testing.T) {
	in := strings.NewReader("\"trip to Rome\"\n{\"input\":\"next week\"}\nplain text\n")
	var out bytes.Buffer
	h := runner.NewJSONHandler(in, &out)
	ctx := context.Background()

	for _, want := range []string{"trip to Rome", "next week", "plain text"} {
		got, err := h.Input(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := h.Input(ctx)
	assert.ErrorIs(t, err, io.EOF)

	require.NoError(t, h.Output(ctx, &domain.TurnResponse{Message: "hi", Phase: domain.PhaseGathering}))
	require.NoError(t, h.SystemOutput(ctx, "rejected"))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"message":"hi"`)
	assert.JSONEq(t, `{"system":"rejected"}`, lines[1])
}
