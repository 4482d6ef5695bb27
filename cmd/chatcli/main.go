package main

import (
	"fmt"
	"os"

	"chat-cli/internal/app"
	"chat-cli/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

// applyEnvOverrides fills credentials and endpoint from the environment when
// the config file leaves them empty.
func applyEnvOverrides(cfg *app.Config) {
	if cfg.Token == "" {
		cfg.Token = os.Getenv("CHATCLI_TOKEN")
	}
	if v := os.Getenv("CHATCLI_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
}

func main() {
	var (
		configPath string
		baseURL    string
		token      string
		modeFlag   string
	)

	root := &cobra.Command{
		Use:     "chatcli",
		Short:   "Terminal chat client with streaming replies",
		Long:    "chatcli is a terminal chat client. It keeps multiple chats open at once,\nreveals replies as they type out, and can generate images from prompts.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = app.DefaultConfigPath()
			}
			cfg, err := app.LoadConfig(configPath)
			if err != nil {
				return err
			}
			applyEnvOverrides(&cfg)
			if baseURL != "" {
				cfg.BaseURL = baseURL
			}
			if token != "" {
				cfg.Token = token
			}
			if modeFlag != "" {
				mode, ok := app.ParseReplyMode(modeFlag)
				if !ok {
					return fmt.Errorf("invalid --mode %q: want text or image", modeFlag)
				}
				cfg.ReplyMode = string(mode)
			}

			logger := app.NewLogger(app.DefaultLogWriter())
			client := app.NewHTTPClient(cfg.BaseURL, cfg.Token)
			engine := app.NewEngine(cfg, logger, client, app.NoopSpeech{})

			// Prompt recall is best-effort; the chat works without it.
			histRoot := cfg.HistoryRoot
			if histRoot == "" {
				histRoot = app.DefaultHistoryRoot()
			}
			prompts, err := app.NewPromptStore(histRoot)
			if err != nil {
				logger.Error("prompt store unavailable", map[string]interface{}{
					"error": err.Error(),
				})
				prompts = nil
			} else {
				defer prompts.Close()
			}

			p := tea.NewProgram(tui.New(engine, cfg, prompts), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return err
			}
			return nil
		},
	}

	root.Flags().StringVar(&configPath, "config", "", "config file path (default ~/.config/chatcli/config.yaml)")
	root.Flags().StringVar(&baseURL, "base-url", "", "chat backend base URL")
	root.Flags().StringVar(&token, "token", "", "bearer token for the backend")
	root.Flags().StringVar(&modeFlag, "mode", "", "initial reply mode: text|image")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
