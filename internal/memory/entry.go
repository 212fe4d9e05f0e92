package memory

import "nadico/internal/nadico"

// Entry pairs an expression with an aggregated value.
type Entry struct {
	Key   *nadico.Expression
	Value float64
}

// Results holds query results in discovery order. Keys are unique under
// full nADICO equality.
type Results []Entry

// Get returns the value stored for an expression equal to key.
func (r Results) Get(key *nadico.Expression) (float64, bool) {
	if i := r.index(key); i >= 0 {
		return r[i].Value, true
	}
	return 0, false
}

// Has reports whether an expression equal to key is present.
func (r Results) Has(key *nadico.Expression) bool { return r.index(key) >= 0 }

// Keys returns the result expressions in order.
func (r Results) Keys() []*nadico.Expression {
	out := make([]*nadico.Expression, len(r))
	for i, e := range r {
		out[i] = e.Key
	}
	return out
}

func (r Results) index(key *nadico.Expression) int {
	for i, e := range r {
		if e.Key.Equal(key, nadico.EqualNADICO) {
			return i
		}
	}
	return -1
}

// put stores value under key; an equal key keeps its position and takes the
// new value.
func (r Results) put(key *nadico.Expression, value float64) Results {
	if i := r.index(key); i >= 0 {
		r[i].Value = value
		return r
	}
	return append(r, Entry{Key: key, Value: value})
}

// maxOnly keeps every entry that carries the highest value.
func (r Results) maxOnly() Results {
	if len(r) < 2 {
		return r
	}
	best := r[0].Value
	for _, e := range r[1:] {
		if e.Value > best {
			best = e.Value
		}
	}
	var out Results
	for _, e := range r {
		if e.Value == best {
			out = append(out, e)
		}
	}
	return out
}
