package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Janldeboer/Agentless/config"
	"github.com/Janldeboer/Agentless/jsonfmt"
	"github.com/Janldeboer/Agentless/llm"
)

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "LLM request dispatch and JSON formatting utilities",
		Long: `Agentless wraps two LLM chat completion APIs with retry, backoff,
and request cooldown handling, and ships a small JSON file formatter.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(askCmd())
	cmd.AddCommand(fmtJSONCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func configureLogging(logLevel string) {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func askCmd() *cobra.Command {
	var (
		provider    string
		model       string
		maxTokens   int
		effort      string
		system      string
		promptCache bool
		extractJSON bool
	)

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Send a prompt through one of the dispatchers and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader(slog.Default()).Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			prompt := strings.Join(args, " ")
			ctx := context.Background()

			var content string
			switch provider {
			case "openai":
				content, err = askOpenAI(ctx, cfg, prompt, model, maxTokens, effort, system)
			case "anthropic":
				content, err = askAnthropic(ctx, cfg, prompt, model, maxTokens, promptCache)
			default:
				return fmt.Errorf("unknown provider %q (want openai or anthropic)", provider)
			}
			if err != nil {
				return err
			}

			if extractJSON {
				content = llm.ExtractJSON(content)
			}
			fmt.Println(content)
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "openai", "Provider to dispatch to (openai, anthropic)")
	cmd.Flags().StringVar(&model, "model", "", "Model identifier (default from config)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Response token ceiling (default from config)")
	cmd.Flags().StringVar(&effort, "effort", "", "Reasoning effort hint (openai only)")
	cmd.Flags().StringVar(&system, "system", "", "System message override (openai only)")
	cmd.Flags().BoolVar(&promptCache, "prompt-cache", false, "Mark the first message for prompt caching (anthropic only)")
	cmd.Flags().BoolVar(&extractJSON, "json", false, "Extract the JSON payload from the reply before printing")

	return cmd
}

func askOpenAI(ctx context.Context, cfg *config.Config, prompt, model string, maxTokens int, effort, system string) (string, error) {
	if model == "" {
		model = cfg.OpenAI.Model
	}
	if maxTokens <= 0 {
		maxTokens = cfg.OpenAI.MaxTokens
	}
	if effort == "" {
		effort = cfg.OpenAI.ReasoningEffort
	}
	if system == "" {
		system = llm.DefaultSystemMessage
	}

	// The env override wins over the config file so operators can tune the
	// gate without editing config.
	gate := llm.NewCooldown(cfg.OpenAI.Cooldown())
	if os.Getenv(llm.CooldownEnvVar) != "" {
		gate = llm.CooldownFromEnv()
	}

	client := llm.NewOpenAIClient(
		llm.WithBaseURL(cfg.OpenAI.Endpoint),
		llm.WithMaxRetries(cfg.Retry.MaxRetries),
		llm.WithCooldown(gate),
	)

	request := llm.NewChatGPTConfigFromPrompt(prompt, maxTokens,
		llm.WithModel(model),
		llm.WithReasoningEffort(effort),
		llm.WithSystemMessage(system),
	)

	resp, err := client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", err
	}
	return resp.Content(), nil
}

func askAnthropic(ctx context.Context, cfg *config.Config, prompt, model string, maxTokens int, promptCache bool) (string, error) {
	if model == "" {
		model = cfg.Anthropic.Model
	}
	if maxTokens <= 0 {
		maxTokens = cfg.Anthropic.MaxTokens
	}

	client := llm.NewAnthropicClient(
		llm.WithBaseURL(cfg.Anthropic.Endpoint),
		llm.WithMaxRetries(cfg.Retry.MaxRetries),
		llm.WithTimeout(cfg.Retry.Timeout()),
	)

	request := llm.NewAnthropicConfigFromPrompt(prompt, maxTokens,
		llm.WithAnthropicModel(model),
		llm.WithTemperature(cfg.Anthropic.Temperature),
	)

	resp, err := client.CreateMessage(ctx, request, promptCache)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func fmtJSONCmd() *cobra.Command {
	var (
		recursive bool
		indent    int
	)

	cmd := &cobra.Command{
		Use:   "fmt-json <dir>",
		Short: "Rewrite .json files in place with canonical indentation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := jsonfmt.Run(jsonfmt.Options{
				Dir:       args[0],
				Recursive: recursive,
				Indent:    indent,
			}, slog.Default())
			if summary != nil {
				for _, result := range summary.Results {
					if result.Err != nil {
						fmt.Printf("%-10s %s (%v)\n", result.Status, result.Path, result.Err)
					} else {
						fmt.Printf("%-10s %s\n", result.Status, result.Path)
					}
				}
				fmt.Printf("%d formatted, %d unchanged, %d failed\n",
					summary.Formatted, summary.Unchanged, summary.Failed)
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Include .json files in subdirectories")
	cmd.Flags().IntVar(&indent, "indent", jsonfmt.DefaultIndent, "Indent width in spaces")

	return cmd
}
