package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// ListSessions prints stored conversation IDs.
func ListSessions(ctx context.Context, stack *Stack, w io.Writer) error {
	ids, err := stack.Client.Conversations(ctx)
	if err != nil {
		return fmt.Errorf("error listing conversations: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No conversations found.")
		return nil
	}
	fmt.Fprintln(w, "Conversations:")
	for _, id := range ids {
		conv, err := stack.Client.Conversation(ctx, id)
		if err != nil {
			fmt.Fprintf(w, "- %s (unreadable: %v)\n", id, err)
			continue
		}
		fmt.Fprintf(w, "- %s [%s, %s, %s]\n", id, orDash(conv.Domain), conv.Mode, conv.Phase)
	}
	return nil
}

// InspectSession prints a stored conversation as indented JSON.
func InspectSession(ctx context.Context, stack *Stack, id string, w io.Writer) error {
	conv, err := stack.Client.Conversation(ctx, id)
	if err != nil {
		return fmt.Errorf("error loading conversation '%s': %w", id, err)
	}
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// RemoveSessions deletes every id, reporting each, and fails if any removal failed.
func RemoveSessions(ctx context.Context, stack *Stack, ids []string, w io.Writer) error {
	failed := 0
	for _, id := range ids {
		if err := stack.Client.DeleteConversation(ctx, id); err != nil {
			fmt.Fprintf(w, "Error removing '%s': %v\n", id, err)
			failed++
			continue
		}
		fmt.Fprintf(w, "Removed conversation '%s'\n", id)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d removals failed", failed, len(ids))
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
