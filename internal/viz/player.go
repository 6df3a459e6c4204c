package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/record"
)

// PlayerOptions configures playback. Zero values take the defaults noted.
type PlayerOptions struct {
	Title    string
	Names    []string      // body labels, default "Body 1".."Body 3"
	Trail    int           // trail length in frames, default 100
	Interval time.Duration // time per frame, default 50ms
	Step     int           // records advanced per frame, default 1
	Width    int           // canvas cells, default 60
	Height   int           // canvas cells, default 24
	Theme    string
	GIFPath  string // default "threebody.gif"
}

func (o PlayerOptions) withDefaults() PlayerOptions {
	if len(o.Names) != physics.NumBodies {
		o.Names = []string{"Body 1", "Body 2", "Body 3"}
	}
	if o.Trail <= 0 {
		o.Trail = 100
	}
	if o.Interval <= 0 {
		o.Interval = 50 * time.Millisecond
	}
	if o.Step <= 0 {
		o.Step = 1
	}
	if o.Width <= 0 {
		o.Width = 60
	}
	if o.Height <= 0 {
		o.Height = 24
	}
	if o.GIFPath == "" {
		o.GIFPath = "threebody.gif"
	}
	return o
}

type tickMsg time.Time

// Player is a Bubble Tea model that replays a recorded series with
// projected bodies and fading trails.
type Player struct {
	opts     PlayerOptions
	recs     []record.Record
	frame    int // index into recs
	running  bool
	showHelp bool
	theme    Theme
	camera   *Camera
	canvas   *Canvas
	tint     map[[2]int]lipgloss.Color

	recording bool
	frames    []*image.Paletted
	status    string
}

func NewPlayer(recs []record.Record, opts PlayerOptions) Player {
	opts = opts.withDefaults()
	cam := NewCamera()
	cam.Fit(recs)
	return Player{
		opts:    opts,
		recs:    recs,
		running: true,
		theme:   GetTheme(opts.Theme),
		camera:  cam,
		canvas:  NewCanvas(opts.Width, opts.Height),
		tint:    make(map[[2]int]lipgloss.Color),
	}
}

// Play runs the player full screen until the user quits.
func Play(recs []record.Record, opts PlayerOptions) error {
	_, err := tea.NewProgram(NewPlayer(recs, opts), tea.WithAltScreen()).Run()
	return err
}

func (p Player) tick() tea.Cmd {
	return tea.Tick(p.opts.Interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (p Player) Init() tea.Cmd {
	return p.tick()
}

// Frame is the index of the record currently shown.
func (p Player) Frame() int { return p.frame }

// Running reports whether playback is advancing.
func (p Player) Running() bool { return p.running }

func (p Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return p, tea.Quit
		case " ":
			p.running = !p.running
		case "r":
			p.frame = 0
		case "left", "h":
			p.seek(-p.opts.Step)
		case "right", "l":
			p.seek(p.opts.Step)
		case "[":
			p.seek(-10 * p.opts.Step)
		case "]":
			p.seek(10 * p.opts.Step)
		case "x":
			p.camera.RotateX(0.1)
		case "X":
			p.camera.RotateX(-0.1)
		case "y":
			p.camera.RotateY(0.1)
		case "Y":
			p.camera.RotateY(-0.1)
		case "z":
			p.camera.RotateZ(0.1)
		case "Z":
			p.camera.RotateZ(-0.1)
		case "+", "=":
			p.camera.ZoomIn()
		case "-", "_":
			p.camera.ZoomOut()
		case "0":
			p.camera.Reset()
		case "f":
			p.opts.Step *= 2
		case "s":
			p.opts.Step = max(1, p.opts.Step/2)
		case "t":
			p.theme = NextTheme(p.theme)
		case "g":
			if p.recording {
				p.status = p.saveGIF()
				p.recording = false
				p.frames = nil
			} else {
				p.recording = true
				p.frames = make([]*image.Paletted, 0)
				p.status = "recording"
			}
		case "?":
			p.showHelp = !p.showHelp
		}
		return p, nil
	case tickMsg:
		if p.running && len(p.recs) > 0 {
			if p.frame+p.opts.Step < len(p.recs) {
				p.frame += p.opts.Step
			} else {
				p.frame = len(p.recs) - 1
				p.running = false
			}
		}
		if p.recording {
			p.draw()
			p.captureFrame()
		}
		return p, p.tick()
	}
	return p, nil
}

func (p *Player) seek(delta int) {
	if len(p.recs) == 0 {
		return
	}
	p.frame = max(0, min(len(p.recs)-1, p.frame+delta))
}

// draw renders trails and bodies for the current frame onto the canvas.
func (p *Player) draw() {
	p.canvas.Clear()
	clear(p.tint)
	if len(p.recs) == 0 {
		return
	}

	sw, sh := p.canvas.Dots()
	first := max(0, p.frame-p.opts.Trail*p.opts.Step)
	for b := 0; b < physics.NumBodies; b++ {
		var prev [2]int
		havePrev := false
		for i := first; i <= p.frame; i += p.opts.Step {
			pos := physics.Positions(p.recs[i].State)[b]
			x, y, ok := p.camera.Project(pos, sw, sh)
			if !ok {
				havePrev = false
				continue
			}
			if havePrev {
				p.canvas.DrawLine(prev[0], prev[1], x, y)
			} else {
				p.canvas.Set(x, y)
			}
			prev, havePrev = [2]int{x, y}, true
		}
	}

	for b, pos := range physics.Positions(p.recs[p.frame].State) {
		x, y, ok := p.camera.Project(pos, sw, sh)
		if !ok {
			continue
		}
		r := 2 - b/2
		p.canvas.Disc(x, y, r)
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				p.tint[[2]int{(x + dx) / 2, (y + dy) / 4}] = p.theme.Bodies[b]
			}
		}
	}
}

func (p Player) renderCanvas() string {
	trail := lipgloss.NewStyle().Foreground(p.theme.Trail)
	var b strings.Builder
	for row, cells := range p.canvas.Grid {
		for col, r := range cells {
			if c, ok := p.tint[[2]int{col, row}]; ok && r != brailleBlank {
				b.WriteString(lipgloss.NewStyle().Foreground(c).Render(string(r)))
			} else if r != brailleBlank {
				b.WriteString(trail.Render(string(r)))
			} else {
				b.WriteRune(r)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (p Player) View() string {
	p.draw()
	canvasView := canvasStyle.Render(p.renderCanvas())

	var s strings.Builder
	title := p.opts.Title
	if title == "" {
		title = "three-body playback"
	}
	s.WriteString(headerStyle.Foreground(p.theme.Primary).Render(strings.ToUpper(title)) + "\n")

	if len(p.recs) == 0 {
		s.WriteString("no records\n")
		return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	}

	rec := p.recs[p.frame]
	switch {
	case !rec.Finite():
		s.WriteString(StatusInvalid.Render("NON-FINITE STATE") + "\n")
	case p.running:
		s.WriteString(StatusRunning.Render("PLAYING") + "\n")
	default:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n")
	}
	if p.status != "" {
		s.WriteString(lipgloss.NewStyle().Foreground(p.theme.Warning).Render(p.status) + "\n")
	}
	s.WriteString(ProgressBar(float64(p.frame)/float64(max(1, len(p.recs)-1)), 30) + "\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.5f", rec.Time))
	row("Frame", fmt.Sprintf("%d/%d (x%d)", p.frame+1, len(p.recs), p.opts.Step))
	row("E_tot", fmt.Sprintf("%.5e", rec.Total))
	if e0 := p.recs[0].Total; e0 != 0 {
		row("dE/|E0|", fmt.Sprintf("%.3e", (rec.Total-e0)/math.Abs(e0)))
	}
	row("|L|", fmt.Sprintf("%.5e", r3.Norm(rec.AngularMomentum)))

	d := physics.Separations(rec.State)
	n := p.opts.Names
	pairs := [3]string{n[0] + "-" + n[1], n[0] + "-" + n[2], n[1] + "-" + n[2]}
	for k, pair := range pairs {
		row(pair, fmt.Sprintf("%.4e", d[k]))
	}

	s.WriteString("\n")
	for b, name := range n {
		s.WriteString(lipgloss.NewStyle().Foreground(p.theme.Bodies[b]).Render("● "+name) + "  ")
	}
	s.WriteString("\n")

	if energy := p.energyHistory(); len(energy) > 1 {
		chart := asciigraph.Plot(energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("E_tot"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause ←→:Step [ ]:Seek Q:Quit\nxyz:Rotate +-:Zoom f/s:Speed ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if p.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

// energyHistory samples E_tot up to the current frame, finite values only.
func (p Player) energyHistory() []float64 {
	const maxPoints = 120
	step := max(1, (p.frame+1)/maxPoints)
	out := make([]float64, 0, maxPoints+1)
	for i := 0; i <= p.frame; i += step {
		e := p.recs[i].Total
		if !math.IsNaN(e) && !math.IsInf(e, 0) {
			out = append(out, e)
		}
	}
	return out
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume playback    ║
║  R        - Restart                  ║
║  Q / Esc  - Quit                     ║
║  ← →      - Step one frame           ║
║  [ ]      - Seek ten frames          ║
║  x y z    - Rotate (shift reverses)  ║
║  + -      - Zoom                     ║
║  0        - Reset camera             ║
║  f / s    - Faster / slower          ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

func (p *Player) captureFrame() {
	charW, charH := 8, 16
	imgW, imgH := p.canvas.Width*charW, p.canvas.Height*charH
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), color.Palette{color.Black, color.White})
	dotW, dotH := charW/2, charH/4

	sw, sh := p.canvas.Dots()
	for y := 0; y < sh; y++ {
		for x := 0; x < sw; x++ {
			if !p.canvas.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	p.frames = append(p.frames, img)
}

func (p *Player) saveGIF() string {
	if len(p.frames) == 0 {
		return "nothing recorded"
	}
	anim := gif.GIF{LoopCount: 0}
	delay := max(1, int(p.opts.Interval/(10*time.Millisecond)))
	for _, frame := range p.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	f, err := os.Create(p.opts.GIFPath)
	if err != nil {
		return "gif: " + err.Error()
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		return "gif: " + err.Error()
	}
	return fmt.Sprintf("saved %d frames to %s", len(p.frames), p.opts.GIFPath)
}
