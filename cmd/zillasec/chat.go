package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codelie14/zillasec/internal/models"
)

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask a question about stored analyses",
	Long: `Answers a question using the most recent analyses, or a single analysis
when --analysis is given. Use --history to list previous questions.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if chatHistory {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runChat,
}

var (
	chatAnalysisID string
	chatHistory    bool
	chatLimit      int
)

func init() {
	chatCmd.Flags().StringVar(&chatAnalysisID, "analysis", "", "Answer from this analysis only")
	chatCmd.Flags().BoolVar(&chatHistory, "history", false, "List previous conversations")
	chatCmd.Flags().IntVar(&chatLimit, "limit", 20, "Maximum conversations listed with --history")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if chatHistory {
		history, err := application.ChatService.History(ctx, 0, chatLimit)
		if err != nil {
			return err
		}
		return printJSON(history)
	}

	kind := models.ChatContextDatabase
	if chatAnalysisID != "" {
		kind = models.ChatContextFile
	}

	conversation, err := application.ChatService.Ask(ctx, args[0], kind, chatAnalysisID)
	if err != nil {
		return err
	}
	fmt.Println(conversation.Answer)
	return nil
}
