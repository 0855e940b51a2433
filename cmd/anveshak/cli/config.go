package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pythonicvarun/anveshak/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		kv := getKV()
		defer kv.Close()

		settings := config.Load(kv)
		switch args[0] {
		case "baseUrl":
			settings.BaseURL = args[1]
		case "apiKey":
			settings.APIKey = args[1]
		case "serperApiKey":
			settings.SerperAPIKey = args[1]
		case "model":
			settings.Model = args[1]
		case "toolsEnabled":
			enabled, err := strconv.ParseBool(args[1])
			if err != nil {
				fmt.Printf("toolsEnabled must be true or false, got %q\n", args[1])
				os.Exit(1)
			}
			settings.ToolsEnabled = enabled
		default:
			fmt.Printf("Unknown key: %s (baseUrl, apiKey, serperApiKey, model, toolsEnabled)\n", args[0])
			os.Exit(1)
		}

		if err := config.Save(kv, settings); err != nil {
			fmt.Printf("Failed to save config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration saved: %s\n", args[0])
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		kv := getKV()
		defer kv.Close()

		settings := config.Load(kv)
		var val string
		switch args[0] {
		case "baseUrl":
			val = settings.BaseURL
		case "apiKey":
			val = settings.APIKey
		case "serperApiKey":
			val = settings.SerperAPIKey
		case "model":
			val = settings.Model
		case "toolsEnabled":
			val = strconv.FormatBool(settings.ToolsEnabled)
		default:
			fmt.Printf("Unknown key: %s\n", args[0])
			os.Exit(1)
		}

		if val == "" {
			fmt.Println("(not set)")
		} else {
			fmt.Println(val)
		}
	},
}

var configModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Fetch the available models and pick a default",
	Run: func(cmd *cobra.Command, args []string) {
		kv := getKV()
		defer kv.Close()

		settings := config.Load(kv)
		p, err := buildProvider(settings)
		if err != nil {
			fmt.Printf("Failed to initialize provider: %v\n", err)
			os.Exit(1)
		}

		if err := config.FetchModels(context.Background(), kv, p, &settings); err != nil {
			fmt.Printf("Failed to fetch models: %v\n", err)
			os.Exit(1)
		}

		for _, m := range settings.Models {
			marker := " "
			if m == settings.Model {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, m)
		}
	},
}

func init() {
	RootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configModelsCmd)
	configModelsCmd.Flags().StringVarP(&providerType, "provider", "p", "openai", "AI Provider (openai, ollama, stub)")
}
