package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/runner"
	"github.com/muesli/termenv"
)

// ChatOptions configures an interactive chat.
type ChatOptions struct {
	SessionID string
	JSON      bool
	// Rich enables the banner, Markdown rendering and the progress bar.
	Rich  bool
	Width int
	In    io.Reader
	Out   io.Writer
}

// RunChat runs the chat loop for opts.SessionID until the plan is saved or the input ends.
func RunChat(ctx context.Context, stack *Stack, logger *slog.Logger, opts ChatOptions) error {
	var handler runner.IOHandler
	switch {
	case opts.JSON:
		handler = runner.NewJSONHandler(opts.In, opts.Out)
	case opts.Rich:
		tui.PrintBanner(opts.Out)
		profile := termenv.NewOutput(opts.Out).ColorProfile()
		handler = runner.NewTextHandler(opts.In, opts.Out,
			runner.WithTextHandlerRenderer(tui.NewRenderer(opts.Width)),
			runner.WithTextHandlerProgress(func(p domain.Progress) string {
				return tui.ProgressLine(profile, p)
			}))
	default:
		handler = runner.NewTextHandler(opts.In, opts.Out)
	}

	if !opts.JSON {
		if _, err := stack.Client.Conversation(ctx, opts.SessionID); err == nil {
			printSystemMessage(opts.Out, "Resuming conversation '%s'.", opts.SessionID)
		}
	}

	r := runner.New(stack.Client,
		runner.WithHandler(handler),
		runner.WithLogger(logger),
		runner.WithMaxInputSize(stack.Config.Input.MaxSize))
	return r.Run(ctx, opts.SessionID)
}
