package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pythonicvarun/anveshak/internal/agent"
	"github.com/pythonicvarun/anveshak/internal/session"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage chat sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved chats, most recent first",
	Run: func(cmd *cobra.Command, args []string) {
		s := getSessions()
		chats := s.List()
		if len(chats) == 0 {
			fmt.Println("No saved chats.")
			return
		}

		activeID, _ := s.Active()
		for _, c := range chats {
			marker := " "
			if c.ID == activeID {
				marker = "*"
			}
			fmt.Printf("%s %s  %-30s  %s\n", marker, c.ID, c.Name, c.UpdatedAt.Format("2006-01-02 15:04"))
		}
	},
}

var sessionsRenameCmd = &cobra.Command{
	Use:   "rename [id] [name]",
	Short: "Rename a chat",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		s := getSessions()
		if err := s.Rename(args[0], args[1]); err != nil {
			fmt.Printf("Failed to rename: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Renamed.")
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a chat",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := getSessions()
		if err := s.Delete(args[0]); err != nil {
			fmt.Printf("Failed to delete: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Deleted.")
	},
}

var sessionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all chats",
	Run: func(cmd *cobra.Command, args []string) {
		s := getSessions()
		if err := s.ClearAll(); err != nil {
			fmt.Printf("Failed to clear: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("All chats deleted.")
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a chat transcript",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := getSessions()
		chat, err := s.Get(args[0])
		if err != nil {
			fmt.Printf("Failed to load chat: %v\n", err)
			os.Exit(1)
		}

		for _, m := range chat.History {
			if m.Role == "system" {
				continue
			}
			fmt.Printf("[%s] %s\n", m.Role, m.Content)
		}
	},
}

func getSessions() *session.Store {
	kv := getKV()
	s, err := session.NewStore(kv, agent.SystemPrompt)
	if err != nil {
		fmt.Printf("Failed to load sessions: %v\n", err)
		os.Exit(1)
	}
	return s
}

func init() {
	RootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsRenameCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsCmd.AddCommand(sessionsClearCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
}
