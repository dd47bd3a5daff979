package preview

// RunStyle is the inline run formatting applied to a DOCX paragraph.
type RunStyle struct {
	Bold   bool
	Italic bool
	Size   int
	Color  string
}

const (
	HeadingColor = "1F2937"
	NameColor    = "111111"
	BodyColor    = "374151"
	HeadingSize  = 24
	NameSize     = 32
)

// StyleMap holds the formatting for each paragraph role.
var StyleMap = map[string]RunStyle{
	"name": {
		Bold:  true,
		Size:  NameSize,
		Color: NameColor,
	},
	"title": {
		Size: 24,
	},
	"sectionHeading": {
		Bold:  true,
		Size:  HeadingSize,
		Color: HeadingColor,
	},
	"roleLine": {
		Bold: true,
	},
	"meta": {
		Italic: true,
	},
}
