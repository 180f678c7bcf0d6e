package renderer

import (
	"errors"
	"fmt"
	"image/color"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/forage/game"
)

const (
	foodRune  = '•'
	agentRune = '@'
)

// Terminal is a game.Frontend that draws into a tcell screen.
// Each grid cell takes two columns so cells look roughly square.
type Terminal struct {
	screen tcell.Screen
	events chan tcell.Event
	done   chan struct{}
	exited chan struct{}
	once   sync.Once
	quit   bool
	last   *game.Snapshot

	bgStyle    tcell.Style
	foodStyle  tcell.Style
	agentStyle tcell.Style
}

// OpenTerminal initializes the controlling terminal.
func OpenTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing terminal screen: %w", err)
	}
	return NewTerminal(screen), nil
}

// NewTerminal wraps an initialized screen and starts reading its events.
func NewTerminal(screen tcell.Screen) *Terminal {
	bg := tcellColor(BackgroundColor)
	t := &Terminal{
		screen:     screen,
		events:     make(chan tcell.Event, 64),
		done:       make(chan struct{}),
		exited:     make(chan struct{}),
		bgStyle:    tcell.StyleDefault.Background(bg),
		foodStyle:  tcell.StyleDefault.Background(bg).Foreground(tcellColor(FoodColor)),
		agentStyle: tcell.StyleDefault.Background(bg).Foreground(tcellColor(AgentColor)).Bold(true),
	}
	go t.pump()
	return t
}

// pump forwards screen events until the screen is finalized or Close is called.
func (t *Terminal) pump() {
	defer close(t.exited)
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			close(t.events)
			return
		}
		select {
		case t.events <- ev:
		case <-t.done:
			return
		}
	}
}

// ShouldQuit drains pending input and reports whether Esc, q or Ctrl-C was pressed.
func (t *Terminal) ShouldQuit() bool {
	for {
		select {
		case ev, ok := <-t.events:
			if !ok {
				t.quit = true
				return true
			}
			t.handle(ev)
		default:
			return t.quit
		}
	}
}

func (t *Terminal) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			t.quit = true
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
}

// Draw renders s, clipped to the terminal size, with a status line below the grid.
func (t *Terminal) Draw(s *game.Snapshot) {
	t.last = s
	t.screen.Clear()

	width, height := t.screen.Size()
	rows := min(s.Height, height-1)

	for y := 0; y < rows; y++ {
		for x := 0; x < s.Width && 2*x+1 < width; x++ {
			if s.HasFood(x, y) {
				t.screen.SetContent(2*x, y, foodRune, nil, t.foodStyle)
			} else {
				t.screen.SetContent(2*x, y, ' ', nil, t.bgStyle)
			}
			t.screen.SetContent(2*x+1, y, ' ', nil, t.bgStyle)
		}
	}

	for _, p := range s.Agents {
		if p.Y < rows && 2*p.X+1 < width {
			t.screen.SetContent(2*p.X, p.Y, agentRune, nil, t.agentStyle)
		}
	}

	if rows >= 0 && rows < height {
		status := fmt.Sprintf("step %d | pop %d | food %d | energy %.3f | q to quit",
			s.Step, s.Population, s.Food, s.MeanEnergy)
		t.drawText(0, rows, status, tcell.StyleDefault)
	}

	t.screen.Show()
}

func (t *Terminal) drawText(x, y int, text string, style tcell.Style) {
	width, _ := t.screen.Size()
	for _, r := range text {
		if x >= width {
			return
		}
		t.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// Capture saves the last drawn snapshot as a PNG at the configured cell size.
func (t *Terminal) Capture(path string) error {
	if t.last == nil {
		return errors.New("capturing screenshot: nothing drawn yet")
	}
	return SavePNG(path, RenderImage(t.last))
}

// Close restores the terminal and waits for the event pump to stop.
// It is safe to call more than once.
func (t *Terminal) Close() {
	t.once.Do(func() {
		close(t.done)
		t.screen.Fini()
		<-t.exited
	})
}

func tcellColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
