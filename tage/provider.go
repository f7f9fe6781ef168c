package tage

import "fmt"

// Provider identifies which component supplied a prediction: the base
// component, or one of the ordered tagged components (spec §3, "Sum-type
// modelling of provider"). Avoid using a sentinel index: a zero-value
// Provider is the base, and Tagged providers always carry their component
// index explicitly.
type Provider struct {
	tagged bool
	index  int
}

// BaseProvider is the sum-type case "the base component provided this
// prediction".
func BaseProvider() Provider { return Provider{} }

// TaggedProvider is the sum-type case "tagged component idx (0 = longest
// history) provided this prediction".
func TaggedProvider(idx int) Provider { return Provider{tagged: true, index: idx} }

// IsBase reports whether this Provider is the base component.
func (p Provider) IsBase() bool { return !p.tagged }

// TaggedIndex returns the tagged component index. Only meaningful when
// IsBase() is false.
func (p Provider) TaggedIndex() int { return p.index }

func (p Provider) String() string {
	if !p.tagged {
		return "base"
	}
	return fmt.Sprintf("tagged[%d]", p.index)
}
