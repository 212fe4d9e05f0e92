package nadico

// Attributes identifies an actor. Individual markers (e.g. NAME) are erased
// during generalization; social markers (e.g. ROLE) are retained. An
// Attributes value with no markers at all acts as a wildcard.
type Attributes struct {
	IndividualMarkers *MarkerMap
	SocialMarkers     *MarkerMap
}

// NewAttributes returns attributes with a single individual marker, or empty
// attributes when category is "".
func NewAttributes(category, marker string) *Attributes {
	a := &Attributes{IndividualMarkers: NewMarkerMap(), SocialMarkers: NewMarkerMap()}
	if category != "" {
		a.AddIndividualMarker(category, marker)
	}
	return a
}

func (a *Attributes) AddIndividualMarker(category, marker string) *Attributes {
	a.IndividualMarkers.Add(category, marker)
	return a
}

// AddIndividualMarkers adds category/marker pairs.
func (a *Attributes) AddIndividualMarkers(pairs ...string) *Attributes {
	for i := 0; i+1 < len(pairs); i += 2 {
		a.AddIndividualMarker(pairs[i], pairs[i+1])
	}
	return a
}

// ReplaceIndividualMarker sets category to exactly marker.
func (a *Attributes) ReplaceIndividualMarker(category, marker string) *Attributes {
	a.IndividualMarkers.Put(category, NewStringSet(marker))
	return a
}

// ReplaceIndividualMarkers drops all individual markers and installs a copy of m.
func (a *Attributes) ReplaceIndividualMarkers(m *MarkerMap) *Attributes {
	a.IndividualMarkers = m.Clone()
	return a
}

func (a *Attributes) AddSocialMarker(category, marker string) *Attributes {
	a.SocialMarkers.Add(category, marker)
	return a
}

func (a *Attributes) AddSocialMarkers(pairs ...string) *Attributes {
	for i := 0; i+1 < len(pairs); i += 2 {
		a.AddSocialMarker(pairs[i], pairs[i+1])
	}
	return a
}

func (a *Attributes) ReplaceSocialMarker(category, marker string) *Attributes {
	a.SocialMarkers.Put(category, NewStringSet(marker))
	return a
}

func (a *Attributes) ReplaceSocialMarkers(m *MarkerMap) *Attributes {
	a.SocialMarkers = m.Clone()
	return a
}

func (a *Attributes) ClearIndividualMarkers() *Attributes {
	a.IndividualMarkers.Clear()
	return a
}

// Clear removes all markers.
func (a *Attributes) Clear() *Attributes {
	a.IndividualMarkers.Clear()
	a.SocialMarkers.Clear()
	return a
}

// CopyFrom merges the markers of o into a, overwriting shared categories.
func (a *Attributes) CopyFrom(o *Attributes) *Attributes {
	if o == nil {
		return a
	}
	for _, k := range o.IndividualMarkers.Categories() {
		a.IndividualMarkers.Put(k, o.IndividualMarkers.Get(k))
	}
	for _, k := range o.SocialMarkers.Categories() {
		a.SocialMarkers.Put(k, o.SocialMarkers.Get(k))
	}
	return a
}

// Copy returns a deep copy. A nil receiver yields empty attributes.
func (a *Attributes) Copy() *Attributes {
	if a == nil {
		return NewAttributes("", "")
	}
	return &Attributes{
		IndividualMarkers: a.IndividualMarkers.Clone(),
		SocialMarkers:     a.SocialMarkers.Clone(),
	}
}

// IsWildcard reports whether both marker maps are empty.
func (a *Attributes) IsWildcard() bool {
	return a == nil || (a.IndividualMarkers.IsEmpty() && a.SocialMarkers.IsEmpty())
}

// Equal compares both marker maps, ignoring insertion order.
func (a *Attributes) Equal(o *Attributes) bool {
	if a == nil || o == nil {
		return a == o
	}
	return a.IndividualMarkers.Equal(o.IndividualMarkers) && a.SocialMarkers.Equal(o.SocialMarkers)
}

func (a *Attributes) fingerprint() string {
	if a == nil {
		return "A<nil>"
	}
	return "A" + a.IndividualMarkers.fingerprint() + a.SocialMarkers.fingerprint()
}

func (a *Attributes) String() string {
	if a == nil {
		return "null"
	}
	if a.IsWildcard() {
		return "A(*)"
	}
	ind, soc := "*", "*"
	if !a.IndividualMarkers.IsEmpty() {
		ind = a.IndividualMarkers.String()
	}
	if !a.SocialMarkers.IsEmpty() {
		soc = a.SocialMarkers.String()
	}
	return "A(" + ind + ", " + soc + ")"
}
