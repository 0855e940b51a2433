package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pythonicvarun/anveshak/internal/observe"
	"github.com/pythonicvarun/anveshak/internal/ui"
)

var (
	verbose      bool
	jsonLogs     bool
	providerType string
	modelName    string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "anveshak",
	Short: "Tool-using AI chat assistant",
	Long: `Anveshak is a conversational AI assistant with web search, sandboxed
code execution, persistent memories, and multi-session chat history.`,
}

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Chat with the assistant",
	Long: `Start an interactive chat, or send a single message when one is given
on the command line.`,
	Run: func(cmd *cobra.Command, args []string) {
		runChat(strings.Join(args, " "))
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.AddCommand(chatCmd)
	chatCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	chatCmd.Flags().BoolVar(&jsonLogs, "json", false, "JSON log output")
	chatCmd.Flags().StringVarP(&providerType, "provider", "p", "openai", "AI Provider (openai, ollama, stub)")
	chatCmd.Flags().StringVarP(&modelName, "model", "m", "", "Model name (overrides the configured default)")
}

func runChat(oneShot string) {
	var obs *observe.Observer
	if jsonLogs {
		obs = observe.NewJSON(os.Stderr, verbose)
	} else {
		obs = observe.New(os.Stderr, verbose)
	}
	defer obs.Close()

	kv := getKV()
	defer kv.Close()

	console := ui.NewConsole(os.Stdout)
	a, err := buildAgent(kv, obs, console)
	if err != nil {
		obs.Log().Fatal().Err(err).Msg("Failed to initialize agent")
	}
	console.Attach(a.Bus)

	if a.Settings.APIKey == "" && providerType == "openai" {
		fmt.Println("Please set your API key first: anveshak config set apiKey <key>")
		os.Exit(1)
	}
	if a.Settings.Model == "" {
		fmt.Println("Please pick a model first: anveshak config models")
		os.Exit(1)
	}

	ctx := context.Background()

	if oneShot != "" {
		if err := a.Send(ctx, oneShot); err != nil {
			obs.Log().Error().Err(err).Msg("Conversation failed")
			os.Exit(1)
		}
		return
	}

	fmt.Println("Type a message, /new for a new chat, /exit to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "/exit":
			return
		case line == "/new":
			if err := a.Sessions.StartDraft(); err != nil {
				fmt.Printf("Failed to start a new chat: %v\n", err)
			}
			continue
		case line == "/sessions":
			for _, s := range a.Sessions.List() {
				fmt.Printf("%s  %s\n", s.ID, s.Name)
			}
			continue
		case strings.HasPrefix(line, "/switch "):
			id := strings.TrimSpace(strings.TrimPrefix(line, "/switch "))
			if err := a.Sessions.SwitchTo(id); err != nil {
				fmt.Printf("Failed to switch: %v\n", err)
			}
			continue
		}

		if err := a.Send(ctx, line); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}
