package grid

import (
	"fmt"
	"io"
	"strings"

	"github.com/logrusorgru/aurora"
)

// Render writes the observation as a width-wide grid of '#' and '.' characters,
// set pixels are highlighted when colors is true
func Render(w io.Writer, obs Observation, width int, colors bool) error {
	if width <= 0 {
		return fmt.Errorf("grid: invalid width %d", width)
	}
	au := aurora.NewAurora(colors)
	var builder strings.Builder
	for i, p := range obs {
		if p != 0 {
			builder.WriteString(au.Green("#").String())
		} else {
			builder.WriteString(au.Gray(8, ".").String())
		}
		if i%width == width-1 {
			builder.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, builder.String())
	return err
}

// Text renders without colors, the width has to be given
// since observations don't carry their shape
func (o Observation) Text(width int) string {
	var builder strings.Builder
	_ = Render(&builder, o, width, false)
	return builder.String()
}
