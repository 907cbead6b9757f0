package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/facplan/internal/config"
	"github.com/rgehrsitz/facplan/internal/logging"
	"github.com/rgehrsitz/facplan/internal/planner"
	"github.com/rgehrsitz/facplan/internal/store"
	"github.com/rgehrsitz/facplan/internal/tui"
)

func main() {
	settings := config.LoadSettings()
	if len(os.Args) > 1 {
		settings.DataFile = os.Args[1]
	}

	// Check if data file exists
	if _, err := os.Stat(settings.DataFile); os.IsNotExist(err) {
		fmt.Printf("Usage: facplan-tui [data-file]\nError: data file not found: %s\n", settings.DataFile)
		os.Exit(1)
	}

	// The alternate screen owns stdout and stderr, so logs only go to a file when DEBUG is set
	var logOut io.Writer = io.Discard
	if os.Getenv("DEBUG") != "" {
		f, err := os.OpenFile("facplan-tui.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Printf("Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
		settings.LogLevel = "debug"
	}
	l := logging.New(logging.Config{Level: settings.LogLevel, Out: logOut})

	dataset, err := config.NewInputParser().LoadFromFile(settings.DataFile)
	if err != nil {
		fmt.Printf("Error loading data: %v\n", err)
		os.Exit(1)
	}
	heuristics, err := config.LoadHeuristics(settings.HeuristicsFile)
	if err != nil {
		fmt.Printf("Error loading heuristics: %v\n", err)
		os.Exit(1)
	}

	var scenarios store.ScenarioStore
	if settings.DBPath != "" {
		db, err := store.OpenSQLStore(settings.DBPath, l)
		if err != nil {
			fmt.Printf("Error opening scenario database: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
		scenarios = db
	}

	p := planner.New(dataset, scenarios, heuristics)
	p.SetLogger(logging.NewAdapter(l, "planner"))

	// Create the application model
	model := tui.NewModel(context.Background(), p, settings.DataFile)

	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse support
	)

	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
