package svg

import (
	"strconv"
	"strings"
)

// PathContext accumulates SVG path commands in absolute coordinates.
// Every coordinate is scaled by Scale and then offset by (OffsetX, OffsetY).
type PathContext struct {
	Commands []string
	OffsetX  float64
	OffsetY  float64
	Scale    float64

	startX, startY float64
	curX, curY     float64
}

// TODO probably use math.Big
func chopPrecision(f float64) float64 {
	return float64(int64(f*1000+copySign(0.5, f))) / 1000
}

func copySign(v, sign float64) float64 {
	if sign < 0 {
		return -v
	}
	return v
}

// FormatFloat renders f with at most three decimals and no trailing zeros.
func FormatFloat(f float64) string {
	f = chopPrecision(f)
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func NewPathContext(offsetX, offsetY, scale float64) *PathContext {
	return &PathContext{OffsetX: offsetX, OffsetY: offsetY, Scale: scale}
}

func (c *PathContext) point(x, y float64) (float64, float64) {
	return c.OffsetX + c.Scale*x, c.OffsetY + c.Scale*y
}

func (c *PathContext) push(op string, coords ...float64) {
	parts := make([]string, 0, len(coords)+1)
	parts = append(parts, op)
	for _, v := range coords {
		parts = append(parts, FormatFloat(v))
	}
	c.Commands = append(c.Commands, strings.Join(parts, " "))
}

func (c *PathContext) StartAt(x, y float64) {
	x, y = c.point(x, y)
	c.startX, c.startY = x, y
	c.curX, c.curY = x, y
	c.push("M", x, y)
}

func (c *PathContext) L(x, y float64) {
	x, y = c.point(x, y)
	c.curX, c.curY = x, y
	c.push("L", x, y)
}

func (c *PathContext) Q(x1, y1, x, y float64) {
	x1, y1 = c.point(x1, y1)
	x, y = c.point(x, y)
	c.curX, c.curY = x, y
	c.push("Q", x1, y1, x, y)
}

func (c *PathContext) C(x1, y1, x2, y2, x, y float64) {
	x1, y1 = c.point(x1, y1)
	x2, y2 = c.point(x2, y2)
	x, y = c.point(x, y)
	c.curX, c.curY = x, y
	c.push("C", x1, y1, x2, y2, x, y)
}

func (c *PathContext) Z() {
	c.Commands = append(c.Commands, "Z")
	c.curX, c.curY = c.startX, c.startY
}

func (c *PathContext) Empty() bool {
	return len(c.Commands) == 0
}

func (c *PathContext) PathData() string {
	return strings.Join(c.Commands, " ")
}
