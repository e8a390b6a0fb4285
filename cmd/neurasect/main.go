package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/neurasect/tui/internal/app"
	"github.com/neurasect/tui/internal/assets"
	"github.com/neurasect/tui/internal/client"
	"github.com/neurasect/tui/internal/config"
)

func main() {
	cfgPath := flag.String("config", config.DefaultPath(), "Path to the config file")
	serverURL := flag.String("url", "", "Training backend base URL (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}

	if os.Getenv("NEURASECT_DEBUG") != "" {
		f, err := tea.LogToFile("neurasect-debug.log", "debug")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening debug log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	}

	store, err := assets.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening asset store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	httpClient := client.NewHTTPClient(cfg.ServerURL)

	m := app.New(httpClient, store, cfg, *cfgPath)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
