package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pythonicvarun/anveshak/internal/memory"
)

var memoriesCmd = &cobra.Command{
	Use:   "memories",
	Short: "Manage saved memories",
}

var memoriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved memories",
	Run: func(cmd *cobra.Command, args []string) {
		kv := getKV()
		defer kv.Close()

		entries, err := memory.NewList(kv).All()
		if err != nil {
			fmt.Printf("Failed to load memories: %v\n", err)
			os.Exit(1)
		}
		if len(entries) == 0 {
			fmt.Println("No memories saved.")
			return
		}
		for _, e := range entries {
			fmt.Printf("%s  %s\n", e.Timestamp.Format("2006-01-02"), e.Memory)
		}
	},
}

var memoriesAddCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Save a memory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		kv := getKV()
		defer kv.Close()

		if err := memory.NewList(kv).Add(args[0]); err != nil {
			fmt.Printf("Failed to save memory: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Memory saved.")
	},
}

var memoriesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all memories",
	Run: func(cmd *cobra.Command, args []string) {
		kv := getKV()
		defer kv.Close()

		if err := memory.NewList(kv).Clear(); err != nil {
			fmt.Printf("Failed to clear memories: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("All memories deleted.")
	},
}

func init() {
	RootCmd.AddCommand(memoriesCmd)
	memoriesCmd.AddCommand(memoriesListCmd)
	memoriesCmd.AddCommand(memoriesAddCmd)
	memoriesCmd.AddCommand(memoriesClearCmd)
}
