package valueobjects

import "fmt"

// Visibility controls whether a plan can be listed and bought.
type Visibility int

const (
	VisibilityDisabled Visibility = 0
	VisibilityHidden   Visibility = 1
	VisibilityVisible  Visibility = 2
)

var visibilityNames = map[Visibility]string{
	VisibilityDisabled: "disabled",
	VisibilityHidden:   "hidden",
	VisibilityVisible:  "visible",
}

func NewVisibility(v int) (Visibility, error) {
	vis := Visibility(v)
	if _, ok := visibilityNames[vis]; !ok {
		return 0, fmt.Errorf("invalid plan visibility: %d", v)
	}
	return vis, nil
}

// ParseVisibility accepts the textual name.
func ParseVisibility(s string) (Visibility, error) {
	for v, name := range visibilityNames {
		if name == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("invalid plan visibility: %q", s)
}

func (v Visibility) String() string {
	return visibilityNames[v]
}

// Purchasable is true for hidden and visible plans; hidden plans are sold by
// direct link only.
func (v Visibility) Purchasable() bool {
	return v != VisibilityDisabled
}

func (v Visibility) Listed() bool {
	return v == VisibilityVisible
}
