// Command validate provides a small CLI that validates game configuration JSON
// files in the ../configs directory. It checks:
//   - JSON structure and required fields
//   - World geometry (origin coordinates, tile size bounds)
//   - Interaction radius and spawn probability bounds
//   - Win target (power of two, at least the minimum)
//   - Required message templates and their format verbs
//   - Spawn density: the deterministic generator must produce tokens near the
//     origin, or the board is unplayable
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/geomerge/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateConfig loads and validates a single configuration JSON file.
// It runs the engine's structural validation, then a spawn density analysis
// to confirm the configuration produces a playable board.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
	}

	// Density validation - check the generator produces a playable board
	if result.Valid {
		densityResult := validateDensity(&config)
		result.Valid = densityResult.Valid
		result.Errors = append(result.Errors, densityResult.Errors...)
	}

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Origin: (%.4f, %.4f), tile %g°", config.Origin.Lat, config.Origin.Lng, config.TileDegrees))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Interaction radius: %d cells", config.InteractionRadius))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Spawn probability: %g", config.SpawnProbability))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Win target: %d (%d merges from a %d token)",
			config.WinTarget, engine.MergesToWin(engine.LowTokenValue, config.WinTarget), engine.LowTokenValue))
	}

	return result
}

// densitySampleRadius bounds the window sampled around the origin cell.
const densitySampleRadius = 30

// validateDensity samples the deterministic spawn generator around the origin
// cell and reports the token density the configuration produces. A window with
// no spawns at all, or none within the interaction radius of the origin, makes
// the board unplayable from the starting position.
func validateDensity(config *engine.GameConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	gen := engine.NewGenerator(config)
	origin := engine.CellCoord{I: 0, J: 0}

	counts := engine.CountSpawnsInWindow(gen, origin, densitySampleRadius)
	total := 0
	for _, n := range counts {
		total += n
	}

	if total == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Density failure: no tokens spawn within %d cells of the origin", densitySampleRadius))
		return result
	}

	cells := (2*densitySampleRadius + 1) * (2*densitySampleRadius + 1)
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Density: %d tokens in %d cells (%.1f%%)", total, cells, 100*float64(total)/float64(cells)))

	values := make([]engine.TokenValue, 0, len(counts))
	for value := range counts {
		values = append(values, value)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	for _, value := range values {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Value %d: %d cells", value, counts[value]))
	}

	// The first pickup must be within reach of the starting cell
	if _, dist, found := engine.NearestSpawn(gen, origin, densitySampleRadius); found {
		if dist <= config.InteractionRadius {
			result.Errors = append(result.Errors, fmt.Sprintf("✓ Nearest token: %d cells away (within interaction radius %d)", dist, config.InteractionRadius))
		} else {
			result.Errors = append(result.Errors, fmt.Sprintf("✓ Nearest token: %d cells away (%d steps before first pickup)", dist, dist-config.InteractionRadius))
		}
	}

	return result
}

// main scans ../configs for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
