package block

import "radioflow/types"

// TypeMatcher accepts or rejects a candidate type for one input port: a
// small function value rather than an open class hierarchy, so type
// dispatch stays a flat first-match scan over declared signatures rather
// than virtual-method resolution.
type TypeMatcher struct {
	Label string
	Match func(t types.SampleType) bool
}

// Concrete matches exactly one named type.
func Concrete(t types.SampleType) TypeMatcher {
	return TypeMatcher{
		Label: t.Name(),
		Match: func(cand types.SampleType) bool { return types.Same(cand, t) },
	}
}

// Predicate matches any type accepted by fn; label is used in error
// messages (e.g. "any type implementing stringification").
func Predicate(label string, fn func(t types.SampleType) bool) TypeMatcher {
	return TypeMatcher{Label: label, Match: fn}
}

// TypeProducer derives one output port's type from the resolved input
// types of the selected signature.
type TypeProducer struct {
	Label   string
	Produce func(in []types.SampleType) (types.SampleType, error)
}

// Fixed always produces t, regardless of inputs.
func Fixed(t types.SampleType) TypeProducer {
	return TypeProducer{
		Label:   t.Name(),
		Produce: func(in []types.SampleType) (types.SampleType, error) { return t, nil },
	}
}

// SameAsInput produces whatever type was resolved for input index i.
func SameAsInput(i int) TypeProducer {
	return TypeProducer{
		Label: "same-as-input",
		Produce: func(in []types.SampleType) (types.SampleType, error) {
			if i < 0 || i >= len(in) {
				return nil, errPortIndex(i, len(in))
			}
			return in[i], nil
		},
	}
}

// RateFunc computes an output edge rate from the resolved input rates, in
// the order the block declared its input ports.
type RateFunc func(inRates []float64) float64

// IdentityRate passes the first input's rate through unchanged — the
// default for a block that never overrides its rate function.
func IdentityRate(inRates []float64) float64 {
	if len(inRates) == 0 {
		return 0
	}
	return inRates[0]
}

// Signature is one acceptable pairing of input types to output types and a
// rate transform for a block.
type Signature struct {
	Inputs  []TypeMatcher
	Outputs []TypeProducer
	Rate    RateFunc
}

// accepts reports whether every input matcher accepts the corresponding
// resolved input type, positionally.
func (s Signature) accepts(in []types.SampleType) bool {
	if len(in) != len(s.Inputs) {
		return false
	}
	for i, m := range s.Inputs {
		if !m.Match(in[i]) {
			return false
		}
	}
	return true
}
