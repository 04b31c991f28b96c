package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amarquez/folio/internal/backend"
	"github.com/amarquez/folio/internal/config"
	"github.com/amarquez/folio/internal/entity"
	"github.com/amarquez/folio/internal/logging"
	"github.com/amarquez/folio/internal/nav"
	"github.com/amarquez/folio/internal/persist"
	"github.com/amarquez/folio/internal/tui"
)

func main() {
	dataDir := flag.String("data-dir", "", "directory for the saved session state")
	endpoint := flag.String("endpoint", "", "document backend base URL (eg. http://localhost:8080)")
	logFile := flag.String("log-file", "", "write structured logs to this file")
	noAltScreen := flag.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	reset := flag.Bool("reset", false, "discard the saved session state and start fresh")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("failed to load config:", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *endpoint != "" {
		cfg.Endpoint = *endpoint
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}

	logger, err := logging.New(cfg.LogFile)
	if err != nil {
		fmt.Println("failed to open log file:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	gateway := persist.NewGateway(persist.NewDiskStore(cfg.DataDir), logger)
	if *reset {
		if err := gateway.Reset(); err != nil {
			fmt.Println("failed to reset saved state:", err)
			os.Exit(1)
		}
	}

	store := entity.NewStore()
	machine := nav.NewMachine(store)
	snapshot := gateway.Load()
	store.Restore(snapshot.Entities)
	machine.RestoreState(snapshot.Nav)

	client := backend.NewHTTPClient(backend.Config{Endpoint: cfg.Endpoint})

	opts := []tea.ProgramOption{}
	if !*noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Store:   store,
			Nav:     machine,
			Gateway: gateway,
			Backend: client,
			Logger:  logger,
		}),
		opts...,
	)

	if _, err := program.Run(); err != nil {
		fmt.Println("program error:", err)
		os.Exit(1)
	}
}
