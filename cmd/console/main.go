package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/mansion-engine/internal/config"
	"github.com/jwebster45206/mansion-engine/internal/logger"
)

// ConsoleConfig is read from the environment. An empty APIBaseURL runs the
// games API in process.
type ConsoleConfig struct {
	APIBaseURL string        `env:"API_BASE_URL"`
	PlayerName string        `env:"PLAYER_NAME" envDefault:"Player"`
	Timeout    time.Duration `env:"API_TIMEOUT" envDefault:"30s"`
}

func main() {
	cfg := &ConsoleConfig{}
	if err := env.Parse(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read console configuration: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI; the in-process API logs nowhere.
	log := logger.SetupWriter(&config.Config{}, io.Discard)

	var client *apiClient
	if cfg.APIBaseURL == "" {
		local, err := newLocalClient(log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to start in-process game: %v\n", err)
			os.Exit(1)
		}
		client = local
	} else {
		client = newRemoteClient(cfg)
		if !client.testConnection() {
			fmt.Fprintf(os.Stderr, "Could not connect to API at %s. Please ensure the API is running.\nTry: docker-compose up -d\n", cfg.APIBaseURL)
			os.Exit(1)
		}
	}

	p := tea.NewProgram(NewConsoleUI(cfg, client),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
