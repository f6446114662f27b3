package raster

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const ellipsis = "…"

var (
	regularFont, boldFont *opentype.Font
	fontErr               error
	fontOnce              sync.Once
)

func loadFonts() error {
	fontOnce.Do(func() {
		regularFont, fontErr = opentype.Parse(goregular.TTF)
		if fontErr != nil {
			return
		}
		boldFont, fontErr = opentype.Parse(gobold.TTF)
	})
	return fontErr
}

// newFace returns a fresh face; opentype faces keep per-face scratch buffers
// and must not be shared between concurrent rasterizations.
func newFace(size float64, bold bool) (font.Face, error) {
	if err := loadFonts(); err != nil {
		return nil, err
	}
	f := regularFont
	if bold {
		f = boldFont
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

func measure(face font.Face, s string) float32 {
	return float32(font.MeasureString(face, s)) / 64
}

// labelLayout is a label fitted into a maximum width.
type labelLayout struct {
	face  font.Face
	lines []string
}

// fitLabel picks the largest font size between style.FontSize and
// style.MinFontSize (in one point steps) at which the label fits on at most
// maxLines lines of maxWidth. If nothing fits, the smallest size is used and
// the last line is truncated with an ellipsis.
func fitLabel(label string, maxWidth float32, maxLines int, style PinStyle) (*labelLayout, error) {
	size := style.FontSize
	for {
		face, err := newFace(size, style.Bold)
		if err != nil {
			return nil, err
		}
		lines := wrapLabel(label, maxWidth, func(s string) float32 { return measure(face, s) })
		last := size-1 < style.MinFontSize
		if len(lines) <= maxLines || last {
			if len(lines) > maxLines {
				lines = lines[:maxLines]
				lines[maxLines-1] = truncate(face, lines[maxLines-1]+" ", maxWidth)
			}
			for i, l := range lines {
				if measure(face, l) > maxWidth {
					lines[i] = truncate(face, l, maxWidth)
				}
			}
			return &labelLayout{face: face, lines: lines}, nil
		}
		face.Close()
		size--
	}
}

// truncate shortens s until s plus an ellipsis fits within maxWidth.
func truncate(face font.Face, s string, maxWidth float32) string {
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	for s != "" {
		if measure(face, s+ellipsis) <= maxWidth {
			return s + ellipsis
		}
		_, size := utf8.DecodeLastRuneInString(s)
		s = strings.TrimRightFunc(s[:len(s)-size], unicode.IsSpace)
	}
	if measure(face, ellipsis) <= maxWidth {
		return ellipsis
	}
	return ""
}

// wrapLabel breaks text into lines no wider than maxWidth, preferring
// whitespace break points. A single rune wider than maxWidth still gets its
// own line; truncation handles it later.
func wrapLabel(text string, maxWidth float32, width func(string) float32) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var lines []string
	start := 0
	for start < len(text) {
		lastBreak := -1
		lastFit := -1
		for i := start; i < len(text); {
			r, size := utf8.DecodeRuneInString(text[i:])
			next := i + size
			if width(text[start:next]) > maxWidth {
				break
			}
			lastFit = next
			if unicode.IsSpace(r) {
				lastBreak = next
			}
			i = next
		}
		if lastFit == -1 {
			_, size := utf8.DecodeRuneInString(text[start:])
			lastFit = start + size
		}
		cut := lastFit
		if lastFit < len(text) && lastBreak > start && lastBreak < lastFit {
			cut = lastBreak
		}
		lines = append(lines, strings.TrimRightFunc(text[start:cut], unicode.IsSpace))
		start = cut
		for start < len(text) {
			r, size := utf8.DecodeRuneInString(text[start:])
			if !unicode.IsSpace(r) {
				break
			}
			start += size
		}
	}
	return lines
}
