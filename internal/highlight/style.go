package highlight

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// ThemeName is the name of the Chroma style code images are drawn with.
const ThemeName = "monokai"

// Theme is the dark style used for code images.
var Theme *chroma.Style = styles.Get(ThemeName)
