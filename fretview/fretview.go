// Package fretview draws annotated fretboards as text.
package fretview

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fretdrill/fretdrill"
)

type (
	// Renderer turns annotations into text, coloured for the terminal it
	// writes to. Colours are dropped automatically when the output is not a
	// terminal.
	Renderer struct {
		header *template.Template
		root   lipgloss.Style
		orders []lipgloss.Style
		other  lipgloss.Style
		dim    lipgloss.Style
	}

	headerData struct {
		Root    string
		Scale   string
		Degrees []string
		Tuning  string
	}
)

const (
	cellWidth = 3
	rootLabel = "R"
	rootColor = "#ff4444"
)

// palette colours the degrees by their position in the exercise, second
// position first.
var palette = []string{"#33b5e5", "#00C851", "#ffbb33", "#aa66cc", "#ff8800", "#0099cc", "#2BBBAD", "#CC0000"}

var inlays = map[int]string{3: "•", 5: "•", 7: "•", 9: "•", 12: "••"}

const headerTemplate = `{{ .Root }} {{ .Scale }}: {{ join ", " .Degrees }}
tuning {{ .Tuning | default "none" }}
`

// New creates a renderer whose colours suit out.
func New(out io.Writer) (*Renderer, error) {
	tmpl, err := template.New("header").Funcs(sprig.TxtFuncMap()).Parse(headerTemplate)
	if err != nil {
		return nil, fmt.Errorf("could not parse header template: %w", err)
	}
	r := lipgloss.NewRenderer(out)
	ret := &Renderer{
		header: tmpl,
		root:   r.NewStyle().Foreground(lipgloss.Color(rootColor)).Bold(true),
		other:  r.NewStyle().Foreground(lipgloss.Color("#ffffff")),
		dim:    r.NewStyle().Foreground(lipgloss.Color("#6C757D")),
	}
	for _, c := range palette {
		ret.orders = append(ret.orders, r.NewStyle().Foreground(lipgloss.Color(c)).Bold(true))
	}
	return ret, nil
}

// Render draws the header, the board with the highest string on top, a legend
// of the selected degrees and the fret numbers with their inlays. Cells that
// are not in ann are drawn empty.
func (r *Renderer) Render(ex fretdrill.Exercise, tuning fretdrill.Tuning, ann fretdrill.Annotation) (string, error) {
	var b strings.Builder
	data := headerData{
		Root:   ex.Root.String(),
		Scale:  cases.Title(language.English).String(ex.Scale.String()),
		Tuning: tuning.String(),
	}
	for _, d := range ex.Degrees {
		data.Degrees = append(data.Degrees, d.String())
	}
	if err := r.header.Execute(&b, data); err != nil {
		return "", fmt.Errorf("could not execute header template: %w", err)
	}
	b.WriteString("\n")
	for s := len(tuning) - 1; s >= 0; s-- {
		fmt.Fprintf(&b, "%-3s", tuning[s].Pitch.String())
		for f := 0; f <= fretdrill.MaxFret; f++ {
			if m, ok := ann[fretdrill.Cell{String: s, Fret: f}]; ok {
				b.WriteString(r.mark(m))
			} else {
				b.WriteString(r.dim.Render(strings.Repeat("-", cellWidth)))
			}
			if f == 0 {
				b.WriteString("‖")
			} else {
				b.WriteString("|")
			}
		}
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat(" ", 3))
	for f := 0; f <= fretdrill.MaxFret; f++ {
		b.WriteString(center(inlays[f]) + " ")
	}
	b.WriteString("\n" + strings.Repeat(" ", 3))
	for f := 0; f <= fretdrill.MaxFret; f++ {
		b.WriteString(r.dim.Render(center(strconv.Itoa(f))) + " ")
	}
	b.WriteString("\n\n")
	b.WriteString(r.legend(ex.Degrees))
	return b.String(), nil
}

func (r *Renderer) legend(degrees []fretdrill.ScaleDegree) string {
	seen := map[fretdrill.ScaleDegree]bool{}
	var items []string
	for i, d := range degrees {
		if seen[d] || !d.Valid() {
			continue
		}
		seen[d] = true
		m := fretdrill.Mark{Order: i, Degree: d, Root: d == fretdrill.Root}
		items = append(items, r.style(m).Render(label(m))+" "+d.String())
	}
	return strings.Join(items, "  ") + "\n"
}

func (r *Renderer) mark(m fretdrill.Mark) string {
	return r.style(m).Render(center(label(m)))
}

func (r *Renderer) style(m fretdrill.Mark) lipgloss.Style {
	switch {
	case m.Root:
		return r.root
	case m.Order >= 1 && m.Order <= len(r.orders):
		return r.orders[m.Order-1]
	default:
		return r.other
	}
}

func label(m fretdrill.Mark) string {
	if m.Root {
		return rootLabel
	}
	return strconv.Itoa(m.Order)
}

// center pads s with spaces to the cell width.
func center(s string) string {
	n := len([]rune(s))
	if n >= cellWidth {
		return s
	}
	left := (cellWidth - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", cellWidth-n-left)
}
