package mapping

import (
	"fmt"
	"math"
	"strings"
)

// Mode selects how entries are projected.
type Mode int

const (
	Linear     Mode = iota // two parallel axes, plaintext on top
	Elliptical             // points evenly spaced on a circle
)

func (m Mode) String() string {
	switch m {
	case Linear:
		return "linear"
	case Elliptical:
		return "elliptical"
	default:
		return "unknown"
	}
}

// ParseMode parses "linear" or "elliptical".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "":
		return Linear, nil
	case "elliptical", "ellipse", "circle":
		return Elliptical, nil
	default:
		return Linear, fmt.Errorf("unknown layout %q", s)
	}
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == Linear {
		return Elliptical
	}
	return Linear
}

const (
	ColorSelf   = "red"
	ColorNormal = "green"

	axisMargin  = 80
	radiusRatio = 0.4
)

// Canvas is the drawing surface size in pixels.
type Canvas struct {
	Width  float64
	Height float64
}

// Point is a position on the canvas.
type Point struct {
	X float64
	Y float64
}

// Node is a labelled point for one plaintext value.
type Node struct {
	Label int64
	At    Point
	Angle float64 // elliptical only
}

// Segment is one drawn connection.
type Segment struct {
	Entry
	From       Point
	To         Point
	FromAngle  float64 // elliptical only
	ToAngle    float64 // elliptical only
	Color      string
	Width      float64
	OutOfRange bool // ciphertext falls outside the drawn range
}

// Projection is everything a drawing layer needs for one frame.
type Projection struct {
	Mode     Mode
	Canvas   Canvas
	Nodes    []Node
	Bottom   []Node // linear only: ciphertext axis
	Segments []Segment
}

// Angle returns the position of the i-th of count points on the circle.
func Angle(i, count int) float64 {
	return float64(i) * 2 * math.Pi / float64(count)
}

// Project lays out every value of r and a segment for each of revealed.
func Project(mode Mode, c Canvas, r Range, revealed []Entry) Projection {
	if mode == Elliptical {
		return projectElliptical(c, r, revealed)
	}
	return projectLinear(c, r, revealed)
}

func projectLinear(c Canvas, r Range, revealed []Entry) Projection {
	spacing := c.Width / float64(r.Len()+1)
	topY := float64(axisMargin)
	bottomY := c.Height - axisMargin
	x := func(v int64) float64 { return spacing * float64(v-r.Start+1) }

	p := Projection{Mode: Linear, Canvas: c}
	for i := range r.Len() {
		v := r.Start + int64(i)
		p.Nodes = append(p.Nodes, Node{Label: v, At: Point{X: x(v), Y: topY}})
		p.Bottom = append(p.Bottom, Node{Label: v, At: Point{X: x(v), Y: bottomY}})
	}

	for _, e := range revealed {
		p.Segments = append(p.Segments, segment(e, r,
			Point{X: x(e.Plaintext), Y: topY},
			Point{X: x(e.Ciphertext), Y: bottomY}))
	}
	return p
}

func projectElliptical(c Canvas, r Range, revealed []Entry) Projection {
	center := Point{X: c.Width / 2, Y: c.Height / 2}
	radius := math.Min(c.Width, c.Height) * radiusRatio
	count := r.Len()
	onCircle := func(angle float64) Point {
		return Point{X: center.X + radius*math.Cos(angle), Y: center.Y + radius*math.Sin(angle)}
	}

	p := Projection{Mode: Elliptical, Canvas: c}
	for i := range count {
		a := Angle(i, count)
		p.Nodes = append(p.Nodes, Node{Label: r.Start + int64(i), At: onCircle(a), Angle: a})
	}

	for _, e := range revealed {
		from := Angle(int(e.Plaintext-r.Start), count)
		to := Angle(int(e.Ciphertext-r.Start), count)
		s := segment(e, r, onCircle(from), onCircle(to))
		s.FromAngle, s.ToAngle = from, to
		p.Segments = append(p.Segments, s)
	}
	return p
}

func segment(e Entry, r Range, from, to Point) Segment {
	s := Segment{
		Entry:      e,
		From:       from,
		To:         to,
		Color:      ColorNormal,
		Width:      1,
		OutOfRange: !r.Contains(e.Ciphertext),
	}
	if e.SelfMapping {
		s.Color = ColorSelf
		s.Width = 2
	}
	return s
}
