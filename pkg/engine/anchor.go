package engine

import "fmt"

// Anchor is the point of an icon pinned to the symbol's coordinate.
type Anchor int

const (
	// AnchorBottom pins the bottom centre, used for pins whose tip marks the
	// location. It is the zero value.
	AnchorBottom Anchor = iota
	AnchorCenter
	AnchorTop
	AnchorLeft
	AnchorRight
	AnchorTopLeft
	AnchorTopRight
	AnchorBottomLeft
	AnchorBottomRight
)

var anchorNames = [...]string{
	AnchorBottom:      "bottom",
	AnchorCenter:      "center",
	AnchorTop:         "top",
	AnchorLeft:        "left",
	AnchorRight:       "right",
	AnchorTopLeft:     "top-left",
	AnchorTopRight:    "top-right",
	AnchorBottomLeft:  "bottom-left",
	AnchorBottomRight: "bottom-right",
}

// String returns the style-spec name of the anchor (e.g. "bottom").
func (a Anchor) String() string {
	if a < 0 || int(a) >= len(anchorNames) {
		return fmt.Sprintf("Anchor(%d)", int(a))
	}
	return anchorNames[a]
}

// ParseAnchor parses a style-spec anchor name.
func ParseAnchor(s string) (Anchor, error) {
	for i, name := range anchorNames {
		if name == s {
			return Anchor(i), nil
		}
	}
	return AnchorBottom, fmt.Errorf("engine: unknown anchor %q", s)
}

// MarshalText encodes the anchor by name.
func (a Anchor) MarshalText() ([]byte, error) {
	if a < 0 || int(a) >= len(anchorNames) {
		return nil, fmt.Errorf("engine: invalid anchor %d", int(a))
	}
	return []byte(anchorNames[a]), nil
}

// UnmarshalText decodes an anchor name.
func (a *Anchor) UnmarshalText(b []byte) error {
	v, err := ParseAnchor(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
