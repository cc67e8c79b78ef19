package imgfmt

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strconv"

	"braces.dev/errtrace"
	chroma "github.com/alecthomas/chroma/v2"
	"go.abhg.dev/code2img/internal/errdefer"
	"go.abhg.dev/code2img/internal/fonts"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Defaults for zero-valued Formatter fields.
const (
	DefaultFontSize = 14
	DefaultTabWidth = 4
)

// Line number gutter appearance.
const _lineNumberPad = 6

var (
	_lineNumberFg = color.RGBA{0x88, 0x88, 0x66, 0xff}
	_lineNumberBg = color.RGBA{0xee, 0xee, 0xdd, 0xff}
)

// Formatter draws tokens into a PNG image.
//
// A Formatter holds no per-call state
// and may be used from multiple goroutines.
type Formatter struct {
	// Fonts to draw with.
	// Defaults to the embedded Go Mono family.
	Fonts *fonts.Set

	// FontSize in points at 72 DPI.
	// Defaults to DefaultFontSize.
	FontSize float64

	// ImagePad is the blank border around the code, in pixels.
	ImagePad int

	// LinePad is the extra space below each line, in pixels.
	LinePad int

	// LineNumbers adds a gutter with line numbers.
	LineNumbers bool

	// TabWidth is the distance between tab stops in columns.
	// Defaults to DefaultTabWidth.
	TabWidth int
}

var _ chroma.Formatter = (*Formatter)(nil)

// Format draws the tokens from it in the given style
// and writes the image to w as a PNG.
func (f *Formatter) Format(w io.Writer, style *chroma.Style, it chroma.Iterator) error {
	img, err := f.Image(style, it.Tokens())
	if err != nil {
		return errtrace.Wrap(err)
	}
	return errtrace.Wrap(png.Encode(w, img))
}

// Image draws tokens in the given style.
func (f *Formatter) Image(style *chroma.Style, tokens []chroma.Token) (_ *image.RGBA, err error) {
	set := f.Fonts
	if set == nil {
		set = fonts.GoMono()
	}
	size := f.FontSize
	if size <= 0 {
		size = DefaultFontSize
	}
	tabWidth := f.TabWidth
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}

	faces := set.Faces(size)
	defer errdefer.Close(&err, faces)

	c := canvas{
		faces:   faces,
		style:   style,
		lines:   splitLines(style, tokens, tabWidth),
		pad:     f.ImagePad,
		linePad: f.LinePad,
		numbers: f.LineNumbers,
	}
	return c.draw(), nil
}

// canvas lays out and draws a single image.
type canvas struct {
	faces   *fonts.Faces
	style   *chroma.Style
	lines   []line
	pad     int
	linePad int
	numbers bool
}

func (c *canvas) draw() *image.RGBA {
	regular := c.faces.Get(fonts.Regular)
	metrics := regular.Metrics()
	ascent := metrics.Ascent.Ceil()
	lineHeight := (metrics.Ascent + metrics.Descent).Ceil() + c.linePad

	// Where the code starts, after the optional gutter.
	textX := c.pad
	var gutterWidth int
	if c.numbers {
		digits := max(2, len(strconv.Itoa(len(c.lines))))
		gutterWidth = c.pad + digits*charWidth(regular) + 2*_lineNumberPad
		textX = gutterWidth + _lineNumberPad
	}

	var textWidth fixed.Int26_6
	for _, ln := range c.lines {
		textWidth = max(textWidth, c.measure(ln))
	}

	width := textX + textWidth.Ceil() + c.pad
	height := 2*c.pad + len(c.lines)*lineHeight
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	bg, fg := c.defaultColours()
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	if c.numbers {
		gutter := image.Rect(0, 0, gutterWidth, height)
		draw.Draw(img, gutter, image.NewUniform(_lineNumberBg), image.Point{}, draw.Src)
		sep := image.Rect(gutterWidth-1, 0, gutterWidth, height)
		draw.Draw(img, sep, image.NewUniform(_lineNumberFg), image.Point{}, draw.Src)
	}

	for i, ln := range c.lines {
		baseline := c.pad + i*lineHeight + ascent

		if c.numbers {
			num := strconv.Itoa(i + 1)
			d := font.Drawer{
				Dst:  img,
				Src:  image.NewUniform(_lineNumberFg),
				Face: regular,
			}
			right := fixed.I(gutterWidth - 1 - _lineNumberPad)
			d.Dot = fixed.Point26_6{X: right - d.MeasureString(num), Y: fixed.I(baseline)}
			d.DrawString(num)
		}

		dot := fixed.P(textX, baseline)
		for _, r := range ln {
			face := c.faces.Get(fonts.StyleOf(r.bold, r.italic))
			colour := fg
			if r.colour != nil {
				colour = r.colour
			}

			d := font.Drawer{
				Dst:  img,
				Src:  image.NewUniform(colour),
				Face: face,
				Dot:  dot,
			}
			d.DrawString(r.text)

			if r.underline {
				under := image.Rect(dot.X.Floor(), baseline+1, d.Dot.X.Ceil(), baseline+2)
				draw.Draw(img, under, image.NewUniform(colour), image.Point{}, draw.Src)
			}
			dot = d.Dot
		}
	}

	return img
}

// measure reports the width of a line as it will be drawn.
func (c *canvas) measure(ln line) fixed.Int26_6 {
	var w fixed.Int26_6
	for _, r := range ln {
		w += font.MeasureString(c.faces.Get(fonts.StyleOf(r.bold, r.italic)), r.text)
	}
	return w
}

// defaultColours reports the background and text colours
// of the style, falling back to black on white.
func (c *canvas) defaultColours() (bg, fg color.Color) {
	bg, fg = color.White, color.Black
	if c.style == nil {
		return bg, fg
	}

	entry := c.style.Get(chroma.Background)
	if entry.Background.IsSet() {
		bg = toRGBA(entry.Background)
	}
	if entry.Colour.IsSet() {
		fg = toRGBA(entry.Colour)
	}
	return bg, fg
}

func charWidth(face font.Face) int {
	adv, ok := face.GlyphAdvance('0')
	if !ok {
		adv = font.MeasureString(face, "0")
	}
	return adv.Ceil()
}

func toRGBA(c chroma.Colour) color.RGBA {
	return color.RGBA{R: c.Red(), G: c.Green(), B: c.Blue(), A: 0xff}
}
