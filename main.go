package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"tkta/config"
	"tkta/orchestrator"
	"tkta/provider"
	"tkta/server"
	"tkta/storage"
	"tkta/tools"
	"tkta/ui"
)

const (
	Version = "v0.1.0"
	License = "Apache-2.0"
)

func main() {
	serve := flag.Bool("serve", false, "run the HTTP relay instead of the terminal UI")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("tkta %s (%s)\n", Version, License)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	config.InitDebugLog(cfg.DataDir())

	providers := provider.InitializeProviders(cfg)
	active, err := provider.ActiveProvider(cfg, providers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *serve {
		srv := server.New(active)
		fmt.Printf("tkta relay listening on %s\n", cfg.HTTPAddr)
		if err := srv.Run(cfg.HTTPAddr); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	repo, err := storage.OpenRepository(cfg.StorageBackend, cfg.DataDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open session storage: %v\n", err)
		os.Exit(1)
	}

	store := storage.NewStore(repo)
	defer store.Close()

	executor := tools.NewExecutor(active)

	app := ui.New(store, active, func(sink func(orchestrator.Event)) *orchestrator.Orchestrator {
		return orchestrator.New(active, executor, store, sink)
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running tkta: %v\n", err)
		os.Exit(1)
	}
}
