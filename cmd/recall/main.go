package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	"github.com/xhad/recall/internal/app"
	"github.com/xhad/recall/pkg/config"
	"github.com/xhad/recall/server"
)

func main() {
	// Missing .env is fine; settings fall back to the environment.
	_ = godotenv.Load()

	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() (*config.Config, bool, error) {
	var (
		configPath string
		serve      bool
		dbURL      string
		model      string
		backend    string
		provider   string
		verbose    bool
	)

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.BoolVar(&serve, "serve", false, "Run the WebSocket server instead of the chat loop")
	flag.StringVar(&dbURL, "db-url", "", "PostgreSQL connection string (pgvector store)")
	flag.StringVar(&model, "model", "", "Chat model to use")
	flag.StringVar(&backend, "backend", "", "LLM backend: openai or demo")
	flag.StringVar(&provider, "embedding", "", "Embedding provider: hash or openai")
	flag.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, false, err
	}

	// Flags override the file and the environment.
	if dbURL != "" {
		cfg.Store.Type = "pgvector"
		cfg.Store.URL = dbURL
	}
	if model != "" {
		cfg.LLM.Model = model
	}
	if backend != "" {
		cfg.LLM.Backend = backend
	}
	if provider != "" {
		cfg.Embedding.Provider = provider
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	return cfg, serve, nil
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run() error {
	cfg, serve, err := parseFlags()
	if err != nil {
		return err
	}

	settings, err := config.LoadSettings(config.DefaultSettingsPath())
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, settings, slog.Default())
	if err != nil {
		return err
	}
	defer a.Close()

	if serve {
		return server.New(a).ListenAndServe(cfg.Server.Addr)
	}

	return chatLoop(ctx, a, settings)
}

func chatLoop(ctx context.Context, a *app.App, settings *config.SettingsStore) error {
	color.Cyan("\nChat with your knowledge base (type 'exit' to quit, '/help' for commands)")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	userPrompt := color.New(color.FgGreen).PrintfFunc()
	assistantPrompt := color.New(color.FgCyan).PrintfFunc()

	for {
		userPrompt("\nYou: ")
		if !scanner.Scan() {
			break
		}

		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if strings.ToLower(query) == "exit" {
			break
		}

		if strings.HasPrefix(query, "/") {
			if err := runCommand(ctx, a, settings, query); err != nil {
				color.Red("Error: %v\n", err)
			}
			continue
		}

		spinner := getSpinner(" Thinking...")
		firstChunk := true

		a.Session.OnFragment = func(fragment string) {
			if firstChunk {
				spinner.Finish()
				firstChunk = false
				fmt.Print("\n")
				assistantPrompt("Assistant: ")
			}
			fmt.Print(fragment)
		}

		_, err := a.Session.Send(ctx, query, nil)
		a.Session.OnFragment = nil

		if firstChunk {
			spinner.Finish()
		}
		fmt.Print("\n")
		if err != nil {
			color.Red("Error: %v\n", err)
		}
	}

	return nil
}

func runCommand(ctx context.Context, a *app.App, settings *config.SettingsStore, line string) error {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/help":
		fmt.Println("  /ingest <file>   add a text file to the knowledge base")
		fmt.Println("  /clear           remove everything from the knowledge base")
		fmt.Println("  /new             start a new conversation")
		fmt.Println("  /list            list conversations")
		fmt.Println("  /switch <id>     switch to a conversation")
		fmt.Println("  /set <key> <v>   store a setting (e.g. OPENAI_API_KEY)")
		fmt.Println("  exit             quit")
		return nil

	case "/ingest":
		if len(args) != 1 {
			return fmt.Errorf("usage: /ingest <file>")
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		spinner := getSpinner(" Indexing...")
		count, err := a.Engine.Ingest(ctx, string(data), map[string]interface{}{
			"source": filepath.Base(args[0]),
		})
		spinner.Finish()
		if err != nil {
			return err
		}
		color.Green("✓ Stored %d chunks from %s\n", count, args[0])
		return nil

	case "/clear":
		if err := a.Engine.Clear(ctx); err != nil {
			return err
		}
		color.Green("✓ Knowledge base cleared\n")
		return nil

	case "/new":
		conv := a.Session.CreateConversation()
		color.Green("✓ Started %s\n", conv.ID)
		return nil

	case "/list":
		for _, conv := range a.Session.Conversations() {
			marker := " "
			if active := a.Session.Active(); active != nil && active.ID == conv.ID {
				marker = "*"
			}
			fmt.Printf("%s %s  %s\n", marker, conv.ID, conv.Title)
		}
		return nil

	case "/switch":
		if len(args) != 1 {
			return fmt.Errorf("usage: /switch <id>")
		}
		return a.Session.SetActive(args[0])

	case "/set":
		if len(args) != 2 {
			return fmt.Errorf("usage: /set <key> <value>")
		}
		settings.Set(args[0], args[1])
		if err := settings.Save(); err != nil {
			return err
		}
		color.Green("✓ Saved\n")
		return nil

	default:
		return fmt.Errorf("unknown command %s", cmd)
	}
}
