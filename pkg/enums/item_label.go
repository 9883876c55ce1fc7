package enums

import "fmt"

// ItemLabel is the storefront badge rendered on an item card.
type ItemLabel string

const (
	ItemLabelPrimary   ItemLabel = "primary"
	ItemLabelSecondary ItemLabel = "secondary"
	ItemLabelDanger    ItemLabel = "danger"
)

var validItemLabels = []ItemLabel{
	ItemLabelPrimary,
	ItemLabelSecondary,
	ItemLabelDanger,
}

// String implements fmt.Stringer.
func (l ItemLabel) String() string {
	return string(l)
}

// IsValid reports whether the value is a known ItemLabel.
func (l ItemLabel) IsValid() bool {
	for _, candidate := range validItemLabels {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseItemLabel converts raw input into an ItemLabel.
func ParseItemLabel(value string) (ItemLabel, error) {
	for _, candidate := range validItemLabels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item label %q", value)
}
