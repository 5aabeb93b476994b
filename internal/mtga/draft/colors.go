package draft

import (
	"fmt"
	"math/bits"
	"strings"
)

// Color constants for WUBRG
const (
	ColorWhite = "W"
	ColorBlue  = "U"
	ColorBlack = "B"
	ColorRed   = "R"
	ColorGreen = "G"
)

// AllColors lists all five colors in WUBRG order.
var AllColors = []string{ColorWhite, ColorBlue, ColorBlack, ColorRed, ColorGreen}

// ColorCombination is a subset of the five colors stored as a bitmask
// (W=1, U=2, B=4, R=8, G=16).
type ColorCombination uint8

const (
	White ColorCombination = 1 << iota
	Blue
	Black
	Red
	Green
)

const (
	// Colorless is the empty combination.
	Colorless ColorCombination = 0
	// FiveColor contains every color.
	FiveColor = White | Blue | Black | Red | Green

	// NumCombinations is the number of distinct color combinations.
	NumCombinations = 32
)

// colorLetters maps each single-color bit to its letter.
var colorLetters = map[ColorCombination]string{
	White: ColorWhite,
	Blue:  ColorBlue,
	Black: ColorBlack,
	Red:   ColorRed,
	Green: ColorGreen,
}

// canonicalCombinations is the stable index order of all 32 combinations.
// Letters within an entry follow the traditional color-pie ordering.
var canonicalCombinations = [NumCombinations]string{
	"",
	"W", "U", "B", "R", "G",
	"WU", "UB", "BR", "RG", "GW", "WB", "UR", "BG", "RW", "GU",
	"GWU", "WUB", "UBR", "BRG", "RGW", "RWB", "GUR", "WBG", "URW", "BGU",
	"UBRG", "BRGW", "RGWU", "GWUB", "WUBR",
	"WUBRG",
}

var (
	combinationAt   [NumCombinations]ColorCombination
	indexOfMask     [NumCombinations]int
	includesTable   [NumCombinations][NumCombinations]bool
	intersectsTable [NumCombinations][NumCombinations]bool
)

func init() {
	for i, letters := range canonicalCombinations {
		c := ParseColors(letters)
		combinationAt[i] = c
		indexOfMask[c] = i
	}
	for a := 0; a < NumCombinations; a++ {
		for b := 0; b < NumCombinations; b++ {
			ca, cb := combinationAt[a], combinationAt[b]
			includesTable[a][b] = ca&cb == cb
			intersectsTable[a][b] = ca&cb != 0
		}
	}
}

// ParseColors reads color letters (case-insensitive) from s. Characters other
// than W, U, B, R and G are ignored, so "{W/U}" and "w-u" both parse as WU.
func ParseColors(s string) ColorCombination {
	var c ColorCombination
	for _, r := range strings.ToUpper(s) {
		switch r {
		case 'W':
			c |= White
		case 'U':
			c |= Blue
		case 'B':
			c |= Black
		case 'R':
			c |= Red
		case 'G':
			c |= Green
		}
	}
	return c
}

// CombinationAt returns the combination with canonical index i.
func CombinationAt(i int) ColorCombination {
	return combinationAt[i&(NumCombinations-1)]
}

// Index returns the canonical index (0-31) of the combination.
func (c ColorCombination) Index() int {
	return indexOfMask[c&FiveColor]
}

// Count returns the number of colors in the combination.
func (c ColorCombination) Count() int {
	return bits.OnesCount8(uint8(c & FiveColor))
}

// Includes reports whether every color of other is also in c.
func (c ColorCombination) Includes(other ColorCombination) bool {
	return includesTable[c.Index()][other.Index()]
}

// StrictlyIncludes reports whether c includes other and has more colors.
func (c ColorCombination) StrictlyIncludes(other ColorCombination) bool {
	return c != other && c.Includes(other)
}

// Intersects reports whether c and other share at least one color.
func (c ColorCombination) Intersects(other ColorCombination) bool {
	return intersectsTable[c.Index()][other.Index()]
}

// Includes reports whether combination b (by index) is a subset of combination a.
func Includes(a, b int) bool {
	return includesTable[a][b]
}

// Intersects reports whether combinations a and b (by index) share a color.
func Intersects(a, b int) bool {
	return intersectsTable[a][b]
}

// Letters returns the individual color letters in WUBRG order.
func (c ColorCombination) Letters() []string {
	letters := make([]string, 0, c.Count())
	for _, bit := range []ColorCombination{White, Blue, Black, Red, Green} {
		if c&bit != 0 {
			letters = append(letters, colorLetters[bit])
		}
	}
	return letters
}

// String returns the canonical letters for the combination, e.g. "GWU".
func (c ColorCombination) String() string {
	return canonicalCombinations[c.Index()]
}

// MarshalText encodes the combination as its canonical letters.
func (c ColorCombination) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes color letters.
func (c *ColorCombination) UnmarshalText(text []byte) error {
	*c = ParseColors(string(text))
	return nil
}

// Name returns a human-readable name for the combination.
func (c ColorCombination) Name() string {
	colorNames := map[string]string{
		ColorWhite: "White",
		ColorBlue:  "Blue",
		ColorBlack: "Black",
		ColorRed:   "Red",
		ColorGreen: "Green",
	}

	letters := c.Letters()
	switch len(letters) {
	case 0:
		return "Colorless"
	case 1:
		return colorNames[letters[0]]
	}

	names := make([]string, 0, len(letters))
	for _, l := range letters {
		names = append(names, colorNames[l])
	}
	return fmt.Sprintf("%s (%s)", strings.Join(names, "-"), c.String())
}

// FetchLands maps fetch lands to the colors they can find.
var FetchLands = map[string]ColorCombination{
	"Arid Mesa":            White | Red,
	"Bloodstained Mire":    Black | Red,
	"Flooded Strand":       White | Blue,
	"Marsh Flats":          White | Black,
	"Misty Rainforest":     Blue | Green,
	"Polluted Delta":       Blue | Black,
	"Scalding Tarn":        Blue | Red,
	"Verdant Catacombs":    Black | Green,
	"Windswept Heath":      White | Green,
	"Wooded Foothills":     Red | Green,
	"Prismatic Vista":      FiveColor,
	"Fabled Passage":       FiveColor,
	"Terramorphic Expanse": FiveColor,
	"Evolving Wilds":       FiveColor,
}

// BasicLands maps each basic land name to the color it produces.
var BasicLands = map[string]ColorCombination{
	"Plains":   White,
	"Island":   Blue,
	"Swamp":    Black,
	"Mountain": Red,
	"Forest":   Green,
}
