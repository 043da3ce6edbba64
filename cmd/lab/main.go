package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tatianab/virtual-lab/internal/chem"
	"github.com/tatianab/virtual-lab/internal/config"
	"github.com/tatianab/virtual-lab/internal/models"
	"github.com/tatianab/virtual-lab/internal/narrator"
	"github.com/tatianab/virtual-lab/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	logFile, err := cfg.OpenLog()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log := cfg.NewLogger(logFile)

	data, err := models.LoadLabData(cfg.DataFile)
	if err != nil {
		fmt.Printf("Error loading lab data: %v\n", err)
		os.Exit(1)
	}
	lab := chem.NewLab(data, log)
	log.WithField("chemicals", lab.Registry.Len()).WithField("reactions", lab.Reactions.Len()).Info("lab data loaded")

	narr, closeNarrator, err := narrator.New(ctx, cfg.GeminiAPIKey)
	if err != nil {
		fmt.Printf("Error creating lab assistant: %v\n", err)
		os.Exit(1)
	}
	defer closeNarrator()

	if err := tui.Run(cfg, lab, narr, log); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
