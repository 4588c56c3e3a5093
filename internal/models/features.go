package models

// FeatureVector is the ordered, named numeric input shared by every sub-model.
// Ordering is fixed at construction and must match the ordering the runners
// were trained against. Built once per request, never persisted.
type FeatureVector struct {
	names        []string
	index        map[string]int
	values       []float64
	completeness float64
}

// NewFeatureVector builds a vector over the given canonical ordering.
// completeness is the observed/expected field ratio reported by the engineer.
func NewFeatureVector(names []string, values []float64, completeness float64) *FeatureVector {
	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[n] = i
	}
	return &FeatureVector{
		names:        names,
		index:        idx,
		values:       values,
		completeness: completeness,
	}
}

func (fv *FeatureVector) Len() int { return len(fv.values) }

func (fv *FeatureVector) Names() []string { return fv.names }

func (fv *FeatureVector) Values() []float64 { return fv.values }

func (fv *FeatureVector) Completeness() float64 { return fv.completeness }

// Get returns the value for a named feature.
func (fv *FeatureVector) Get(name string) (float64, bool) {
	i, ok := fv.index[name]
	if !ok {
		return 0, false
	}
	return fv.values[i], true
}

// At returns the value at a fixed position.
func (fv *FeatureVector) At(i int) float64 { return fv.values[i] }

// Index returns the position of a named feature, or -1.
func (fv *FeatureVector) Index(name string) int {
	i, ok := fv.index[name]
	if !ok {
		return -1
	}
	return i
}
