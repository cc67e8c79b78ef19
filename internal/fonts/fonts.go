// Package fonts loads the monospace font family code images are drawn in.
//
// The preferred family is Noto Sans Mono, located on the system with
// go-findfont. When it isn't installed, the Go Mono family embedded in
// golang.org/x/image is used instead, so rendering never fails for want
// of a font.
package fonts

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"braces.dev/errtrace"
	"github.com/charmbracelet/log"
	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"go.abhg.dev/code2img/internal/must"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
)

// Family is the name of the preferred font family.
const Family = "Noto Sans Mono"

// Style selects a font within a [Set].
type Style int

const (
	Regular Style = iota
	Bold
	Italic
	BoldItalic

	numStyles
)

// StyleOf returns the Style for the given bold and italic attributes.
func StyleOf(bold, italic bool) Style {
	var s Style
	if bold {
		s |= Bold
	}
	if italic {
		s |= Italic
	}
	return s
}

func (s Style) String() string {
	switch s {
	case Regular:
		return "regular"
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case BoldItalic:
		return "bold italic"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// Set is a font family with a parsed font for each [Style].
type Set struct {
	// Name is the name of the family.
	Name string

	fonts [numStyles]*truetype.Font
}

// Font returns the font for the given style.
func (s *Set) Font(st Style) *truetype.Font {
	return s.fonts[st]
}

// Faces builds a font face for each style
// at the given size in points, assuming 72 DPI.
//
// Faces hold glyph caches and aren't safe for concurrent use.
func (s *Set) Faces(size float64) *Faces {
	var f Faces
	for st, ft := range s.fonts {
		f.faces[st] = truetype.NewFace(ft, &truetype.Options{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}
	return &f
}

// Faces holds a font face for each [Style] of a [Set].
type Faces struct {
	faces [numStyles]font.Face
}

// Get returns the face for the given style.
func (f *Faces) Get(st Style) font.Face {
	return f.faces[st]
}

// Close releases all faces.
func (f *Faces) Close() error {
	for _, face := range f.faces {
		if err := face.Close(); err != nil {
			return errtrace.Wrap(err)
		}
	}
	return nil
}

var (
	_goMonoOnce sync.Once
	_goMono     *Set
)

// GoMono returns the embedded Go Mono family.
func GoMono() *Set {
	_goMonoOnce.Do(func() {
		s := Set{Name: "Go Mono"}
		for st, ttf := range [numStyles][]byte{
			Regular:    gomono.TTF,
			Bold:       gomonobold.TTF,
			Italic:     gomonoitalic.TTF,
			BoldItalic: gomonobolditalic.TTF,
		} {
			s.fonts[st] = must.Get(truetype.Parse(ttf))("parse embedded Go Mono %v", Style(st))
		}
		_goMono = &s
	})
	return _goMono
}

// _fileNames lists the file names searched for each style
// in order of preference.
var _fileNames = [numStyles][]string{
	Regular:    {"NotoSansMono-Regular.ttf", "NotoSansMono.ttf"},
	Bold:       {"NotoSansMono-Bold.ttf"},
	Italic:     {"NotoSansMono-Italic.ttf"},
	BoldItalic: {"NotoSansMono-BoldItalic.ttf"},
}

// Loader loads the preferred font family from the system.
type Loader struct {
	// Find locates a font file by its file name.
	// Defaults to findfont.Find.
	Find func(name string) (path string, err error)

	// ReadFile reads a font file.
	// Defaults to os.ReadFile.
	ReadFile func(path string) ([]byte, error)

	// Log receives debug messages about the fonts that were picked.
	Log *log.Logger
}

// Load loads the preferred family.
//
// Styles that can't be found reuse the regular font.
// If the regular font itself can't be loaded, Load returns [GoMono].
func (l *Loader) Load() *Set {
	logger := l.Log
	if logger == nil {
		logger = log.New(io.Discard)
	}

	regular, err := l.load(Regular)
	if err != nil {
		logger.Debug("Using embedded font", "family", "Go Mono", "reason", err)
		return GoMono()
	}

	s := Set{Name: Family}
	s.fonts[Regular] = regular
	for st := Regular + 1; st < numStyles; st++ {
		f, err := l.load(st)
		if err != nil {
			logger.Debug("Font style unavailable, using regular", "style", st, "reason", err)
			f = regular
		}
		s.fonts[st] = f
	}
	return &s
}

func (l *Loader) load(st Style) (*truetype.Font, error) {
	find := l.Find
	if find == nil {
		find = findfont.Find
	}
	readFile := l.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}

	var errs []error
	for _, name := range _fileNames[st] {
		path, err := find(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		data, err := readFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		f, err := truetype.Parse(data)
		if err != nil {
			errs = append(errs, fmt.Errorf("parse %v: %w", path, err))
			continue
		}

		if l.Log != nil {
			l.Log.Debug("Loaded font", "style", st, "path", path)
		}
		return f, nil
	}
	return nil, errtrace.Wrap(fmt.Errorf("%v %v: %w", Family, st, errors.Join(errs...)))
}
