// Command tui is a terminal client for the GeoMerge server. It renders the
// view window around the player, a target cursor for interactions, and the
// session status line, and keeps the display fresh over the server's
// WebSocket feed.
//
// Keys:
//
//	h/j/k/l or arrows  move the player (west/south/north/east)
//	w/a/s/d            move the target cursor
//	enter or space     interact with the cell under the cursor
//	c                  center the cursor on the player
//	m                  toggle movement mode
//	r                  reset the session
//	q or Ctrl-C        quit
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
)

const pollInterval = 3 * time.Second

// App holds the terminal client state
type App struct {
	screen    tcell.Screen
	client    *Client
	sessionID string

	state  *GameState
	view   *View
	cursor CellCoord
	status string

	viewRadius int
	wsActive   atomic.Bool
}

// wsUpdate is posted into the tcell event loop when the WebSocket feed
// delivers a new state or event
type wsUpdate struct {
	state *GameState
	event string
	win   *WinData
}

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "GeoMerge server base URL")
	sessionID := flag.String("session", "", "existing session ID to attach to")
	configID := flag.String("config", "", "configuration to use when creating a session")
	radius := flag.Int("radius", 7, "view radius in cells")
	flag.Parse()

	client := NewClient(*serverURL)

	id := *sessionID
	if id == "" {
		session, err := client.CreateSession(*configID)
		if err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
		id = session.ID
		fmt.Printf("Created session %s\n", id)
	}

	app := &App{
		client:     client,
		sessionID:  id,
		viewRadius: *radius,
	}

	if err := app.Run(); err != nil {
		log.Fatalf("Client error: %v", err)
	}
}

// Run initializes the screen and drives the event loop until quit
func (a *App) Run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	a.screen = screen
	defer screen.Fini()

	if err := a.refresh(); err != nil {
		screen.Fini()
		return fmt.Errorf("failed to load session %s: %w", a.sessionID, err)
	}
	a.cursor = a.view.PlayerCell

	go a.listenWS()
	go a.pollLoop()

	for {
		a.draw()
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventKey:
			if a.handleKey(ev) {
				return nil
			}
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventInterrupt:
			if update, ok := ev.Data().(wsUpdate); ok {
				a.applyUpdate(update)
			}
		}
	}
}

// handleKey dispatches one key event. Returns true when the app should quit.
func (a *App) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		a.move("north")
	case tcell.KeyDown:
		a.move("south")
	case tcell.KeyLeft:
		a.move("west")
	case tcell.KeyRight:
		a.move("east")
	case tcell.KeyEnter:
		a.interact()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'k':
			a.move("north")
		case 'j':
			a.move("south")
		case 'h':
			a.move("west")
		case 'l':
			a.move("east")
		case 'w':
			a.moveCursor(1, 0)
		case 's':
			a.moveCursor(-1, 0)
		case 'a':
			a.moveCursor(0, -1)
		case 'd':
			a.moveCursor(0, 1)
		case ' ':
			a.interact()
		case 'c':
			if a.view != nil {
				a.cursor = a.view.PlayerCell
			}
		case 'm':
			a.toggleMode()
		case 'r':
			a.reset()
		}
	}
	return false
}

// refresh pulls both the state and view from the server
func (a *App) refresh() error {
	state, err := a.client.GetState(a.sessionID)
	if err != nil {
		return err
	}
	view, err := a.client.GetView(a.sessionID, a.viewRadius)
	if err != nil {
		return err
	}
	a.state = state
	a.view = view
	return nil
}

func (a *App) move(direction string) {
	state, err := a.client.Move(a.sessionID, direction)
	if err != nil {
		a.status = fmt.Sprintf("Move failed: %v", err)
		return
	}
	if state != nil {
		a.state = state
		a.status = state.Message
	}
	a.refreshView()
	// Keep the cursor from drifting off-screen when the window recenters
	if a.view != nil && chebyshev(a.cursor, a.view.PlayerCell) > a.view.Radius {
		a.cursor = a.view.PlayerCell
	}
}

func (a *App) moveCursor(di, dj int) {
	if a.view == nil {
		return
	}
	next := CellCoord{I: a.cursor.I + di, J: a.cursor.J + dj}
	if chebyshev(next, a.view.PlayerCell) > a.view.Radius {
		return
	}
	a.cursor = next
}

func (a *App) interact() {
	result, state, err := a.client.Interact(a.sessionID, a.cursor)
	if err != nil {
		a.status = fmt.Sprintf("Interact failed: %v", err)
		return
	}
	if state != nil {
		a.state = state
	}
	if result != nil {
		a.status = result.Message
	}
	a.refreshView()
}

func (a *App) toggleMode() {
	state, err := a.client.ToggleMode(a.sessionID)
	if err != nil {
		a.status = fmt.Sprintf("Mode switch failed: %v", err)
		return
	}
	if state != nil {
		a.state = state
		a.status = state.Message
	}
}

func (a *App) reset() {
	state, err := a.client.Reset(a.sessionID)
	if err != nil {
		a.status = fmt.Sprintf("Reset failed: %v", err)
		return
	}
	if state != nil {
		a.state = state
		a.status = state.Message
	}
	a.refreshView()
	if a.view != nil {
		a.cursor = a.view.PlayerCell
	}
}

func (a *App) refreshView() {
	view, err := a.client.GetView(a.sessionID, a.viewRadius)
	if err != nil {
		a.status = fmt.Sprintf("View failed: %v", err)
		return
	}
	a.view = view
}

// listenWS streams server pushes into the event loop. Exits on any read
// error; pollLoop covers the gap.
func (a *App) listenWS() {
	conn, err := a.client.ConnectWS(a.sessionID)
	if err != nil {
		return
	}
	defer conn.Close()
	a.wsActive.Store(true)
	defer a.wsActive.Store(false)

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.SessionID != "" && msg.SessionID != a.sessionID {
			continue
		}

		update := wsUpdate{state: msg.GameState, event: msg.Event}
		if msg.Event == "win" && len(msg.Data) > 0 {
			var win WinData
			if err := json.Unmarshal(msg.Data, &win); err == nil {
				update.win = &win
			}
		}
		a.screen.PostEvent(tcell.NewEventInterrupt(update))
	}
}

// pollLoop refreshes over REST while the WebSocket feed is down
func (a *App) pollLoop() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for range ticker.C {
		if a.wsActive.Load() {
			continue
		}
		state, err := a.client.GetState(a.sessionID)
		if err != nil {
			continue
		}
		a.screen.PostEvent(tcell.NewEventInterrupt(wsUpdate{state: state}))
	}
}

func (a *App) applyUpdate(update wsUpdate) {
	if update.state != nil {
		a.state = update.state
	}
	if update.win != nil {
		a.status = update.win.Message
	}
	a.refreshView()
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

var (
	styleHeader  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	stylePlayer  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Reverse(true)
	styleCursor  = tcell.StyleDefault.Reverse(true)
	styleToken   = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleHot     = tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleWin     = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGreen).Bold(true)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

// draw renders the full frame
func (a *App) draw() {
	s := a.screen
	s.Clear()

	width, height := s.Size()

	held := "empty"
	if a.state != nil && a.state.HeldToken > 0 {
		held = fmt.Sprintf("%d", a.state.HeldToken)
	}
	mode := "?"
	actions := 0
	if a.state != nil {
		mode = a.state.Mode
		actions = a.state.TotalActions
	}
	header := fmt.Sprintf(" GeoMerge  session:%s  held:%s  mode:%s  actions:%d", a.sessionID, held, mode, actions)
	drawText(s, 0, 0, width, styleHeader, header)

	if a.state != nil && a.state.MergeHint != "" {
		drawText(s, 1, 1, width-1, styleDim, a.state.MergeHint)
	}

	a.drawGrid(2, height)

	if a.state != nil && a.state.Victory {
		banner := " *** YOU WIN *** press r to play again, q to quit "
		drawText(s, (width-len(banner))/2, height/2, width, styleWin, banner)
	}

	if a.status != "" {
		drawText(s, 0, height-2, width, styleStatus, " "+a.status)
	}
	help := " move:hjkl/arrows  cursor:wasd  interact:enter  mode:m  reset:r  quit:q"
	drawText(s, 0, height-1, width, styleDim, help)

	s.Show()
}

// drawGrid renders the view window with north up, each cell two columns wide
func (a *App) drawGrid(top, height int) {
	if a.view == nil {
		return
	}

	cells := make(map[string]ViewCell, len(a.view.Cells))
	for _, c := range a.view.Cells {
		cells[c.Cell.Key()] = c
	}

	r := a.view.Radius
	player := a.view.PlayerCell
	maxRows := height - top - 3

	for row := 0; row <= 2*r && row < maxRows; row++ {
		i := player.I + r - row
		for col := 0; col <= 2*r; col++ {
			j := player.J - r + col
			coord := CellCoord{I: i, J: j}

			ch := '.'
			style := styleDim
			if cell, ok := cells[coord.Key()]; ok {
				if cell.Value > 0 {
					ch = tokenRune(cell.Value)
					style = styleToken
					if cell.Value >= 10 {
						style = styleHot
					}
				} else if cell.InRange {
					ch = '·'
				}
			}
			if coord == player {
				ch = '@'
				style = stylePlayer
			} else if coord == a.cursor {
				style = styleCursor
			}

			a.screen.SetContent(2+col*2, top+row, ch, nil, style)
		}
	}
}

// tokenRune maps a token value to its single-character glyph. Values past 9
// collapse to '+'; exact values stay readable in the status line.
func tokenRune(value int) rune {
	if value >= 1 && value <= 9 {
		return rune('0' + value)
	}
	return '+'
}

// drawText writes a string clipped to maxX
func drawText(s tcell.Screen, x, y, maxX int, style tcell.Style, text string) {
	if x < 0 {
		x = 0
	}
	for _, r := range text {
		if x >= maxX {
			break
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
