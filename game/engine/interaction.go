package engine

import "fmt"

// ApplyInteraction resolves one interaction attempt against the target cell.
// An empty hand picks up whatever token the cell holds, a held token is
// placed into an empty cell, and two equal tokens merge into the hand at
// double the value. A value mismatch or a cell beyond the interaction radius
// leaves every piece of state unchanged; neither is an error. The range check
// uses the player's position at call time.
func (gs *GameState) ApplyInteraction(target CellCoord, gen *Generator, config *GameConfig) InteractResult {
	playerCell := config.CellAt(gs.PlayerPos)
	if Chebyshev(playerCell, target) > config.InteractionRadius {
		message := fmt.Sprintf("Cell %s is out of range", target.Key())
		if config.Messages.OutOfRange != "" {
			message = config.Messages.OutOfRange
		}
		gs.Message = message
		return InteractResult{
			Outcome:   OutcomeOutOfRange,
			Held:      gs.HeldToken,
			CellValue: gs.TokenAt(target, gen),
			Message:   message,
		}
	}

	cellValue := gs.TokenAt(target, gen)

	var result InteractResult
	switch {
	case gs.HeldToken == NoToken && cellValue == NoToken:
		message := "Nothing here to pick up"
		if config.Messages.NothingHere != "" {
			message = config.Messages.NothingHere
		}
		result = InteractResult{Outcome: OutcomeNoop, Message: message}

	case gs.HeldToken == NoToken:
		gs.HeldToken = cellValue
		gs.SetToken(target, NoToken)
		won := gs.checkWin(config)
		result = InteractResult{
			Outcome: OutcomePickup,
			Changed: true,
			Won:     won,
			Message: fmt.Sprintf(config.Messages.Pickup, cellValue),
		}

	case cellValue == NoToken:
		placed := gs.HeldToken
		gs.SetToken(target, placed)
		gs.HeldToken = NoToken
		gs.checkWin(config)
		message := fmt.Sprintf("Placed your %d token", placed)
		if config.Messages.Place != "" {
			message = fmt.Sprintf(config.Messages.Place, placed)
		}
		result = InteractResult{
			Outcome:   OutcomePlace,
			Changed:   true,
			CellValue: placed,
			Message:   message,
		}

	case cellValue == gs.HeldToken:
		gs.HeldToken = cellValue * 2
		gs.SetToken(target, NoToken)
		won := gs.checkWin(config)
		result = InteractResult{
			Outcome: OutcomeMerge,
			Changed: true,
			Won:     won,
			Message: fmt.Sprintf(config.Messages.Merge, gs.HeldToken),
		}

	default:
		message := fmt.Sprintf("Your %d token doesn't match the %d in that cell", gs.HeldToken, cellValue)
		if config.Messages.Mismatch != "" {
			message = fmt.Sprintf(config.Messages.Mismatch, gs.HeldToken, cellValue)
		}
		result = InteractResult{
			Outcome:   OutcomeMismatch,
			CellValue: cellValue,
			Message:   message,
		}
	}

	result.Held = gs.HeldToken
	if result.Won {
		result.Message = fmt.Sprintf(config.Messages.Win, gs.HeldToken)
	}
	gs.Message = result.Message
	return result
}

// checkWin updates the win latch after a held-token mutation and reports
// whether this mutation newly crossed the win target. The latch re-arms when
// the held value drops below the target, so each crossing notifies exactly
// once while play continues.
func (gs *GameState) checkWin(config *GameConfig) bool {
	if gs.HeldToken >= config.WinTarget {
		if gs.winLatched {
			return false
		}
		gs.winLatched = true
		gs.Victory = true
		return true
	}
	gs.winLatched = false
	return false
}
