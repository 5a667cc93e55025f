// Package render draws engine Scenes. The engine never renders; this package
// is one consumer of its output.
package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/spektr-org/chartkit/engine"
)

const (
	tickLength = 6
	axisStroke = "stroke:#888;fill:none;stroke-width:1"
	fontStyle  = `font-family="Helvetica,Arial,sans-serif" font-size="11px"`
)

// WriteSVG draws s as a standalone SVG document: one element per primitive
// inside the plot-area group, followed by the axes.
func WriteSVG(w io.Writer, s *engine.Scene) error {
	if s == nil {
		return fmt.Errorf("render: nil scene")
	}
	ew := &errWriter{w: w}
	canvas := svg.New(ew)

	canvas.Start(px(s.Width), px(s.Height), fontStyle)
	canvas.Title(s.Title)
	canvas.Translate(px(s.Margin.Left), px(s.Margin.Top))

	canvas.Group(`class="marks"`)
	for _, p := range s.Primitives {
		drawPrimitive(canvas, p)
	}
	canvas.Gend()

	drawAxis(canvas, s.XAxis, s.BoundedWidth, s.BoundedHeight)
	drawAxis(canvas, s.YAxis, s.BoundedWidth, s.BoundedHeight)

	canvas.Gend()
	if s.Title != "" {
		canvas.Text(px(s.Width/2), px(s.Margin.Top/2)+4, s.Title, `text-anchor="middle"`, `font-weight="bold"`)
	}
	canvas.End()
	return ew.err
}

func drawPrimitive(canvas *svg.SVG, p engine.Primitive) {
	style := styleOf(p)
	switch p.Kind {
	case engine.PointPrimitive:
		canvas.Circle(px(p.X), px(p.Y), px(p.R), style)
	case engine.RectPrimitive:
		canvas.Rect(px(p.X), px(p.Y), px(p.Width), px(p.Height), style)
	case engine.LinePrimitive:
		canvas.Line(px(p.X), px(p.Y), px(p.X2), px(p.Y2), style)
	}
}

// drawAxis draws the axis line, tick marks and labels with paths and text
// only, so shape elements stay one-to-one with primitives.
func drawAxis(canvas *svg.SVG, a engine.Axis, w, h float64) {
	var path strings.Builder
	switch a.Orient {
	case "bottom":
		fmt.Fprintf(&path, "M0 %dH%d", px(h), px(w))
		for _, t := range a.Ticks {
			fmt.Fprintf(&path, "M%d %dv%d", px(t.Position), px(h), tickLength)
		}
		canvas.Path(path.String(), axisStroke)
		for _, t := range a.Ticks {
			canvas.Text(px(t.Position), px(h)+tickLength+12, t.Label, `text-anchor="middle"`)
		}
		if a.Title != "" {
			canvas.Text(px(w/2), px(h)+40, a.Title, `text-anchor="middle"`)
		}
	case "left":
		fmt.Fprintf(&path, "M0 0V%d", px(h))
		for _, t := range a.Ticks {
			fmt.Fprintf(&path, "M0 %dh%d", px(t.Position), -tickLength)
		}
		canvas.Path(path.String(), axisStroke)
		for _, t := range a.Ticks {
			canvas.Text(-tickLength-3, px(t.Position)+4, t.Label, `text-anchor="end"`)
		}
		if a.Title != "" {
			canvas.Text(0, 0, a.Title, `text-anchor="middle"`,
				fmt.Sprintf(`transform="translate(%d,%d) rotate(-90)"`, -45, px(h/2)))
		}
	}
}

func styleOf(p engine.Primitive) string {
	var parts []string
	switch {
	case p.Style.Fill != "":
		parts = append(parts, "fill:"+p.Style.Fill)
	case p.Kind == engine.LinePrimitive:
		parts = append(parts, "fill:none")
	}
	if p.Style.Stroke != "" {
		parts = append(parts, "stroke:"+p.Style.Stroke, "stroke-width:1")
	}
	if p.Style.Opacity > 0 && p.Style.Opacity < 1 {
		parts = append(parts, fmt.Sprintf("fill-opacity:%.2g", p.Style.Opacity))
	}
	return strings.Join(parts, ";")
}

func px(v float64) int {
	return int(math.Round(v))
}

// errWriter keeps the first write error; svgo itself never reports one.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
