package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tatianab/virtual-lab/internal/chem"
	"github.com/tatianab/virtual-lab/internal/config"
	"github.com/tatianab/virtual-lab/internal/engine"
	"github.com/tatianab/virtual-lab/internal/models"
	"github.com/tatianab/virtual-lab/internal/narrator"
)

// maxTicks bounds one pour; a flask empties in about 120 ticks.
const maxTicks = 600

// printer prints everything the workspace reports.
type printer struct {
	events []engine.ReactionEvent
}

func (p *printer) Announce(message string) {
	fmt.Printf("  [announce] %s\n", message)
}

func (p *printer) SetCursor(engine.Cursor) {}

func (p *printer) ReactionComplete(ev engine.ReactionEvent) {
	p.events = append(p.events, ev)
}

// Usage: simulate_lab [A+B ...]. Without arguments every known mixture is run.
func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := cfg.NewLogger(os.Stderr)

	data, err := models.LoadLabData(cfg.DataFile)
	if err != nil {
		log.Fatalf("Failed to load lab data: %v", err)
	}
	lab := chem.NewLab(data, log)

	narr, closeNarrator, err := narrator.New(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("Failed to create narrator: %v", err)
	}
	defer closeNarrator()

	pairs := os.Args[1:]
	if len(pairs) == 0 {
		for _, rule := range data.Mixtures {
			pairs = append(pairs, strings.Join(rule.Chemicals, "+"))
		}
	}

	opts := engine.DefaultOptions()
	if easing, err := engine.ParseEasing(cfg.Settings.Easing); err == nil {
		opts.Easing = easing
	}
	dt := cfg.TickInterval()

	for i, pair := range pairs {
		selection := strings.Split(pair, "+")
		fmt.Printf("--- Mix %d: %s ---\n", i+1, strings.Join(selection, " + "))

		p := &printer{}
		ws := engine.NewWorkspace(lab, p, log, opts)
		if err := ws.Enter(selection); err != nil {
			fmt.Printf("Cannot mix %s: %v\n\n", pair, err)
			continue
		}

		for _, id := range selection {
			if err := pourOut(ws, id, dt); err != nil {
				fmt.Printf("Pouring %s failed: %v\n", id, err)
			}
		}
		settle(ws, dt, opts.SettleDelay)

		v := ws.Vessel()
		fmt.Printf("Beaker: %.0f%% full, colour %s\n", v.LiquidLevel*100, v.CurrentColor)
		fmt.Println(ws.Describe())
		if len(p.events) == 0 {
			fmt.Println("No reaction.")
		}
		for _, ev := range p.events {
			req := narrator.Request{Result: ev.Result}
			for _, id := range ev.Chemicals {
				name := id
				if c, ok := lab.Registry.Get(id); ok {
					name = c.Name
				}
				req.Chemicals = append(req.Chemicals, name)
			}
			text, err := narrator.WithFallback(ctx, narr, req)
			if err != nil {
				log.WithError(err).Warn("narrator failed, using the built-in description")
			}
			fmt.Printf("Reaction: %s\n", text)
		}
		fmt.Println()
	}
}

// pourOut holds a container at the pour point until it stops pouring.
func pourOut(ws *engine.Workspace, id string, dt time.Duration) error {
	c, ok := ws.Container(id)
	if !ok {
		return engine.ErrNotPlaced
	}
	if err := ws.DragStart(id, c.Position); err != nil {
		return err
	}
	for range maxTicks {
		if err := ws.DragMove(id, engine.PourPoint()); err != nil {
			return err
		}
		ws.Tick(dt)
		c, _ := ws.Container(id)
		if !c.Known || c.Remaining <= engine.MinPourFraction {
			break
		}
		// strips are only dipped
		if c.Kind == models.LitmusStrip && c.Tilt <= engine.DipTilt+0.01 {
			break
		}
	}
	return ws.DragEnd(id)
}

func settle(ws *engine.Workspace, dt, delay time.Duration) {
	for elapsed := time.Duration(0); elapsed <= delay+dt; elapsed += dt {
		ws.Tick(dt)
	}
}
