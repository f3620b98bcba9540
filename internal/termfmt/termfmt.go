// Terminal styling for command summaries. Adapted from @shabbyrobe's termfmt copypasta,
// https://raw.githubusercontent.com/shabbyrobe/golib/master/termfmt/termfmt.go
// Provided under an MIT license.
package termfmt

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
)

type Escape interface {
	Wrap(out string) string
}

func Bold() Style              { return (Style{}).Bold() }
func Faint() Style             { return (Style{}).Faint() }
func Fg(c C16Name) Style       { return (Style{}).Fg(c) }
func FgRGB(r, g, b uint8) Style { return (Style{}).FgRGB(r, g, b) }

// Style wraps a value in escape codes when it is formatted, e.g.
//
//	fmt.Printf("%s\n", termfmt.Bold().Fg(termfmt.Green).V("done"))
type Style struct {
	escapes []Escape
	v       any
}

var _ fmt.Formatter = Style{}

func (c Style) With(escs ...Escape) Style {
	c.escapes = append(append([]Escape(nil), c.escapes...), escs...)
	return c
}

func (c Style) Bold() Style               { return c.With(sgr(1)) }
func (c Style) Faint() Style              { return c.With(sgr(2)) }
func (c Style) Fg(name C16Name) Style     { return c.With(C16Color{Name: name}) }
func (c Style) FgRGB(r, g, b uint8) Style { return c.With(RGBColor{r, g, b}) }

func (c Style) V(v any) Style {
	c.v = v
	return c
}

func (c Style) String() string { return fmt.Sprintf("%v", c) }

func (c Style) Format(f fmt.State, verb rune) {
	v := printable(fmt.Sprintf(buildValueFormat(f, verb), c.v))
	if enabled {
		for i := len(c.escapes) - 1; i >= 0; i-- {
			v = c.escapes[i].Wrap(v)
		}
	}
	f.Write([]byte(v))
}

func buildValueFormat(f fmt.State, verb rune) string {
	s := "%"
	for _, flag := range " +-0#" {
		if f.Flag(int(flag)) {
			s += string(flag)
		}
	}
	if width, ok := f.Width(); ok {
		s += strconv.Itoa(width)
	}
	if prec, ok := f.Precision(); ok {
		s += "." + strconv.Itoa(prec)
	}
	return s + string(verb)
}

type sgr int

func (s sgr) Wrap(v string) string { return fmt.Sprintf("\x1b[%dm%s\x1b[0m", int(s), v) }

// https://github.com/termstandard/colors
type RGBColor struct {
	R, G, B uint8
}

func (rgb RGBColor) Wrap(out string) string {
	if !rgbSupported {
		return out
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s\x1b[0m", rgb.R, rgb.G, rgb.B, out)
}

type C16Name uint8

const (
	DefaultColor C16Name = iota

	Black
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	LightGrey
)

type C16Color struct {
	Name C16Name
}

func (c C16Color) Wrap(out string) string {
	cv := 39
	if c.Name != DefaultColor {
		// Our enum starts at one; foreground colours run from 30 to 37.
		cv = int(c.Name) - 1 + 30
	}
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", cv, out)
}

var (
	enabled      = true
	rgbSupported = true
)

func init() {
	// https://no-color.org
	if os.Getenv("NO_COLOR") != "" {
		enabled = false
	}
	if ct := os.Getenv("COLORTERM"); ct != "truecolor" && ct != "24bit" {
		rgbSupported = false
	}
}

// SetEnabled switches escape codes on or off globally; output stays plain text when off.
func SetEnabled(on bool)          { enabled = on }
func RGBSupported(supported bool) { rgbSupported = supported }

func printable(v string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsGraphic(r) || r == '\n' || r == '\t' {
			return r
		}
		return -1
	}, v)
}
