package main

import (
	"fmt"
	"log"
	"time"
)

const (
	// Server-side cap on a single bulk-move batch
	maxBulkChunk = 50

	// How many relocation sweeps to try when no matching token is visible
	maxExploreRounds = 24
)

// Planner drives one session to the win target. The winning token is built
// by recursive doubling: a token of value v comes from merging two tokens of
// value v/2, one of which waits in a stash cell while the other is built.
// Values 1 and 2 come straight off the board.
type Planner struct {
	client     *Client
	radius     int // interaction radius
	target     int
	viewRadius int
	maxActions int

	actions int
	verbose bool
	delay   time.Duration

	player   CellCoord
	known    map[CellCoord]int
	reserved map[CellCoord]bool

	exploreDir int
}

func NewPlanner(client *Client, config *GameConfig, viewRadius, maxActions int) *Planner {
	return &Planner{
		client:     client,
		radius:     config.InteractionRadius,
		target:     config.WinTarget,
		viewRadius: viewRadius,
		maxActions: maxActions,
		known:      make(map[CellCoord]int),
		reserved:   make(map[CellCoord]bool),
	}
}

// Play runs the full doubling ladder. Returns true when the session reached
// the win target, false when the action budget ran out.
func (p *Planner) Play() (bool, error) {
	if err := p.scan(); err != nil {
		return false, err
	}

	log.Printf("📊 Planner: target %d needs %d merge levels", p.target, mergeLevels(p.target))

	won, err := p.build(p.target)
	if err != nil {
		if err == errBudget {
			return false, nil
		}
		return false, err
	}
	return won, nil
}

var errBudget = fmt.Errorf("action budget exhausted")

// build leaves a token of the given value in the hand
func (p *Planner) build(value int) (bool, error) {
	if p.actions >= p.maxActions {
		return false, errBudget
	}

	// Spawned tokens cover 1 and 2 directly
	if value <= 2 {
		return p.pickup(value)
	}

	half := value / 2

	won, err := p.build(half)
	if won || err != nil {
		return won, err
	}

	stash, err := p.stash(half)
	if err != nil {
		return false, err
	}

	won, err = p.build(half)
	if won || err != nil {
		return won, err
	}

	return p.mergeAt(stash, value)
}

// pickup finds the nearest spawned token of the given value and takes it
func (p *Planner) pickup(value int) (bool, error) {
	cell, err := p.seek(value)
	if err != nil {
		return false, err
	}
	if err := p.approach(cell); err != nil {
		return false, err
	}

	result, err := p.interact(cell)
	if err != nil {
		return false, err
	}
	if result.Result.Outcome != "pickup" {
		return false, fmt.Errorf("expected pickup at %s, got %s: %s",
			cell.Key(), result.Result.Outcome, result.Result.Message)
	}
	p.known[cell] = 0

	if p.verbose {
		log.Printf("Picked up %d at %s", value, cell.Key())
	}
	return result.Result.Won, nil
}

// stash places the held token into a free cell near the player and reserves
// the cell for the later merge
func (p *Planner) stash(value int) (CellCoord, error) {
	if err := p.scan(); err != nil {
		return CellCoord{}, err
	}

	cell, ok := nearestCell(p.known, p.player, 0, p.radius, p.reserved)
	if !ok {
		return CellCoord{}, fmt.Errorf("no free cell within radius %d of %s", p.radius, p.player.Key())
	}

	result, err := p.interact(cell)
	if err != nil {
		return CellCoord{}, err
	}
	if result.Result.Outcome != "place" {
		return CellCoord{}, fmt.Errorf("expected place at %s, got %s: %s",
			cell.Key(), result.Result.Outcome, result.Result.Message)
	}

	p.known[cell] = value
	p.reserved[cell] = true

	if p.verbose {
		log.Printf("Stashed %d at %s", value, cell.Key())
	}
	return cell, nil
}

// mergeAt walks back to the stash cell and merges the hand into it
func (p *Planner) mergeAt(cell CellCoord, want int) (bool, error) {
	if err := p.approach(cell); err != nil {
		return false, err
	}

	result, err := p.interact(cell)
	if err != nil {
		return false, err
	}
	if result.Result.Outcome != "merge" {
		return false, fmt.Errorf("expected merge at %s, got %s: %s",
			cell.Key(), result.Result.Outcome, result.Result.Message)
	}

	p.known[cell] = 0
	delete(p.reserved, cell)

	if p.verbose {
		log.Printf("Merged into %d at %s", want, cell.Key())
	}
	return result.Result.Won, nil
}

// seek locates the nearest cell holding the wanted value, relocating and
// rescanning when none is visible
func (p *Planner) seek(value int) (CellCoord, error) {
	for round := 0; round <= maxExploreRounds; round++ {
		if err := p.scan(); err != nil {
			return CellCoord{}, err
		}
		if cell, ok := nearestCell(p.known, p.player, value, -1, p.reserved); ok {
			return cell, nil
		}

		// Sweep outward and look again
		dir := exploreDirections[p.exploreDir%len(exploreDirections)]
		p.exploreDir++
		if p.verbose {
			log.Printf("No %d visible from %s, sweeping %s", value, p.player.Key(), dir)
		}
		if err := p.walk(repeat(dir, p.viewRadius*2)); err != nil {
			return CellCoord{}, err
		}
	}
	return CellCoord{}, fmt.Errorf("no %d token found after %d sweeps", value, maxExploreRounds)
}

var exploreDirections = []string{"east", "north", "west", "south"}

// approach walks until the target cell is within interaction range
func (p *Planner) approach(cell CellCoord) error {
	moves := directionsTo(p.player, cell, p.radius)
	if len(moves) == 0 {
		return nil
	}
	return p.walk(moves)
}

// walk executes a batch of steps through the bulk-move endpoint
func (p *Planner) walk(moves []string) error {
	for _, chunk := range chunkMoves(moves, maxBulkChunk) {
		if p.actions+len(chunk) > p.maxActions {
			return errBudget
		}

		result, err := p.client.BulkMove(chunk)
		if err != nil {
			return err
		}
		p.actions += result.MovesExecuted
		p.player = result.EndCell

		if result.MovesExecuted < len(chunk) {
			return fmt.Errorf("bulk move stopped after %d/%d steps: %s",
				result.MovesExecuted, len(chunk), result.StopReasonCode)
		}

		if p.delay > 0 {
			time.Sleep(p.delay)
		}
	}
	return nil
}

// interact taps one cell and counts the action
func (p *Planner) interact(cell CellCoord) (*InteractResponse, error) {
	if p.actions >= p.maxActions {
		return nil, errBudget
	}

	result, err := p.client.Interact(cell)
	if err != nil {
		return nil, err
	}
	p.actions++

	if result.Result.Outcome == "out_of_range" {
		return nil, fmt.Errorf("cell %s out of range from %s", cell.Key(), p.player.Key())
	}

	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	return result, nil
}

// scan refreshes the knowledge map from the view around the player
func (p *Planner) scan() error {
	view, err := p.client.GetView(p.viewRadius)
	if err != nil {
		return err
	}

	p.player = view.PlayerCell
	for _, cell := range view.Cells {
		p.known[cell.Cell] = cell.Value
	}
	return nil
}

// nearestCell returns the closest known cell holding the wanted value.
// maxDist limits the Chebyshev distance from the player; pass -1 for
// unlimited. Reserved cells are skipped.
func nearestCell(known map[CellCoord]int, player CellCoord, value, maxDist int, reserved map[CellCoord]bool) (CellCoord, bool) {
	var best CellCoord
	bestDist := -1

	for cell, v := range known {
		if v != value || reserved[cell] {
			continue
		}
		d := chebyshev(player, cell)
		if maxDist >= 0 && d > maxDist {
			continue
		}
		if bestDist < 0 || d < bestDist || (d == bestDist && less(cell, best)) {
			best = cell
			bestDist = d
		}
	}

	return best, bestDist >= 0
}

// less gives map iteration a deterministic tie-break
func less(a, b CellCoord) bool {
	if a.I != b.I {
		return a.I < b.I
	}
	return a.J < b.J
}

// directionsTo plans the steps that bring the target within the interaction
// radius. The row axis (I) runs north, the column axis (J) runs east.
func directionsTo(from, to CellCoord, radius int) []string {
	var moves []string

	di := to.I - from.I
	dj := to.J - from.J

	for di > radius {
		moves = append(moves, "north")
		di--
	}
	for di < -radius {
		moves = append(moves, "south")
		di++
	}
	for dj > radius {
		moves = append(moves, "east")
		dj--
	}
	for dj < -radius {
		moves = append(moves, "west")
		dj++
	}

	return moves
}

// chunkMoves splits a move list into server-sized batches
func chunkMoves(moves []string, size int) [][]string {
	var chunks [][]string
	for len(moves) > size {
		chunks = append(chunks, moves[:size])
		moves = moves[size:]
	}
	if len(moves) > 0 {
		chunks = append(chunks, moves)
	}
	return chunks
}

func repeat(dir string, n int) []string {
	moves := make([]string, n)
	for i := range moves {
		moves[i] = dir
	}
	return moves
}

// chebyshev returns the Chebyshev distance between two cells
func chebyshev(a, b CellCoord) int {
	di := a.I - b.I
	if di < 0 {
		di = -di
	}
	dj := a.J - b.J
	if dj < 0 {
		dj = -dj
	}
	if di > dj {
		return di
	}
	return dj
}

// mergeLevels counts the doublings between a spawned 2 and the target
func mergeLevels(target int) int {
	levels := 0
	for v := 2; v < target; v *= 2 {
		levels++
	}
	return levels
}
