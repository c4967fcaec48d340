package main

import (
	"os"

	"github.com/aretw0/waypoint/internal/cli"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Plan interactively in the terminal",
	Long: `Starts a planning conversation on stdin/stdout.
Use --session to resume a stored conversation; a new ID is generated otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, logger, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		jsonMode, _ := cmd.Flags().GetBool("json")
		width, _ := cmd.Flags().GetInt("width")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		err = cli.RunChat(ctx, stack, logger, cli.ChatOptions{
			SessionID: sessionID,
			JSON:      jsonMode,
			Rich:      !jsonMode && cli.IsTerminal(os.Stdout),
			Width:     width,
			In:        os.Stdin,
			Out:       os.Stdout,
		})
		if sig := ctx.Signal(); sig != nil {
			logger.Info("Chat interrupted", "signal", sig.String(), "session", sessionID)
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("session", "s", "", "Conversation ID to start or resume")
	chatCmd.Flags().Bool("json", false, "Exchange JSON lines instead of text")
	chatCmd.Flags().String("mode", "", "Question budget for new conversations: quick or smart")
	chatCmd.Flags().String("store", "", "Conversation store backend: memory, file or redis")
	chatCmd.Flags().Int("width", 80, "Word wrap width for rendered plans")
}
