// Command analyze prints quick, human-readable heuristics about configuration
// files in the project's configs directory. For each configuration it samples
// the deterministic spawn generator around the origin and reports token
// density, the value histogram, the distance to the nearest token, and how
// many merges a win takes.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/geomerge/game/engine"
)

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "Summarize the boards the game configurations produce",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config-dir",
				Value: "configs",
				Usage: "directory containing game configuration files",
			},
			&cli.IntFlag{
				Name:  "radius",
				Value: 30,
				Usage: "window radius in cells sampled around the origin",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return analyzeDir(cmd.String("config-dir"), int(cmd.Int("radius")))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// analyzeDir analyzes every *.json configuration in the directory.
func analyzeDir(configDir string, radius int) error {
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		return fmt.Errorf("failed to find config files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no config files found in %s", configDir)
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		if err := analyzeConfig(file, radius); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}

	return nil
}

// analyzeConfig loads one configuration and prints its board heuristics.
func analyzeConfig(path string, radius int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	fmt.Printf("Name: %s\n", config.Name)
	fmt.Printf("Description: %s\n", config.Description)
	fmt.Printf("Origin: (%.4f, %.4f), tile %g°\n", config.Origin.Lat, config.Origin.Lng, config.TileDegrees)
	fmt.Printf("Interaction Radius: %d cells\n", config.InteractionRadius)
	fmt.Printf("Win Target: %d (%d merges from a %d token)\n",
		config.WinTarget, engine.MergesToWin(engine.LowTokenValue, config.WinTarget), engine.LowTokenValue)

	gen := engine.NewGenerator(&config)
	origin := engine.CellCoord{I: 0, J: 0}

	// Token census in the sampled window
	counts := engine.CountSpawnsInWindow(gen, origin, radius)
	total := 0
	for _, n := range counts {
		total += n
	}
	cells := (2*radius + 1) * (2*radius + 1)

	fmt.Printf("Spawn Probability: %g (observed %.1f%% over %d cells)\n",
		config.SpawnProbability, 100*float64(total)/float64(cells), cells)
	fmt.Printf("Total Tokens: %d\n", total)

	values := make([]engine.TokenValue, 0, len(counts))
	for value := range counts {
		values = append(values, value)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	for _, value := range values {
		fmt.Printf("  Value %d: %d cells\n", value, counts[value])
	}

	if total == 0 {
		fmt.Printf("⚠️  WARNING: no tokens spawn within %d cells of the origin!\n", radius)
		fmt.Printf("   The board is unplayable from the starting position\n")
		return nil
	}

	// Distance to the first pickup
	if cell, dist, found := engine.NearestSpawn(gen, origin, radius); found {
		fmt.Printf("Nearest Token: %s at distance %d\n", cell.Key(), dist)
		if dist <= config.InteractionRadius {
			fmt.Printf("✅ The first token is reachable from the starting cell\n")
		} else {
			fmt.Printf("⚠️  WARNING: the first token takes %d steps to reach (radius %d)\n",
				dist-config.InteractionRadius, config.InteractionRadius)
		}
	}

	return nil
}
