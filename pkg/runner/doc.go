/*
Package runner implements the interactive chat loop on top of a session-backed planner.

The runner reads user input through a pluggable IOHandler, sanitizes it, runs one turn
and presents the reply. It stops when the conversation reaches a terminal phase, when the
input ends or when the user types an exit command.

# Key Components

  - Runner: the loop itself.
  - TextHandler: interactive terminal usage with optional Markdown rendering.
  - JSONHandler: JSON Lines for headless callers.

# Usage

	r := runner.New(client, runner.WithHandler(runner.NewTextHandler(os.Stdin, os.Stdout)))
	if err := r.Run(ctx, "conv-1"); err != nil {
		log.Fatal(err)
	}
*/
package runner
