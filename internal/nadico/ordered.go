package nadico

import (
	"fmt"
	"sort"
	"strings"
)

// StringSet is a set of strings that iterates in insertion order.
type StringSet struct {
	items []string
	index map[string]struct{}
}

// NewStringSet returns a set holding items.
func NewStringSet(items ...string) *StringSet {
	s := &StringSet{index: make(map[string]struct{}, len(items))}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// Add inserts item and reports whether it was new.
func (s *StringSet) Add(item string) bool {
	if _, ok := s.index[item]; ok {
		return false
	}
	s.index[item] = struct{}{}
	s.items = append(s.items, item)
	return true
}

// AddAll inserts every item of o.
func (s *StringSet) AddAll(o *StringSet) {
	if o == nil {
		return
	}
	for _, it := range o.items {
		s.Add(it)
	}
}

func (s *StringSet) Contains(item string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[item]
	return ok
}

func (s *StringSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Items returns the members in insertion order.
func (s *StringSet) Items() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Equal compares membership, ignoring order.
func (s *StringSet) Equal(o *StringSet) bool {
	if s.Len() != o.Len() {
		return false
	}
	for _, it := range s.Items() {
		if !o.Contains(it) {
			return false
		}
	}
	return true
}

func (s *StringSet) Clone() *StringSet {
	return NewStringSet(s.Items()...)
}

func (s *StringSet) sortedKey() string {
	items := s.Items()
	sort.Strings(items)
	return strings.Join(items, "\x1f")
}

func (s *StringSet) String() string {
	return "[" + strings.Join(s.Items(), ", ") + "]"
}

// MarkerMap maps a marker category (e.g. NAME, ROLE) to its marker values.
// Categories iterate in insertion order.
type MarkerMap struct {
	keys []string
	sets map[string]*StringSet
}

// NewMarkerMap returns a map built from category/marker pairs.
func NewMarkerMap(pairs ...string) *MarkerMap {
	m := &MarkerMap{sets: make(map[string]*StringSet)}
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Add(pairs[i], pairs[i+1])
	}
	return m
}

// Add appends marker to category.
func (m *MarkerMap) Add(category, marker string) {
	set, ok := m.sets[category]
	if !ok {
		set = NewStringSet()
		m.sets[category] = set
		m.keys = append(m.keys, category)
	}
	set.Add(marker)
}

// Put stores a copy of set under category, replacing existing markers.
func (m *MarkerMap) Put(category string, set *StringSet) {
	if _, ok := m.sets[category]; !ok {
		m.keys = append(m.keys, category)
	}
	m.sets[category] = set.Clone()
}

// Remove drops category.
func (m *MarkerMap) Remove(category string) {
	if _, ok := m.sets[category]; !ok {
		return
	}
	delete(m.sets, category)
	for i, k := range m.keys {
		if k == category {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Get returns the markers of category, or nil.
func (m *MarkerMap) Get(category string) *StringSet {
	if m == nil {
		return nil
	}
	return m.sets[category]
}

// Has reports whether category carries marker.
func (m *MarkerMap) Has(category, marker string) bool {
	return m.Get(category).Contains(marker)
}

// Categories returns the categories in insertion order.
func (m *MarkerMap) Categories() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *MarkerMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

func (m *MarkerMap) IsEmpty() bool { return m.Len() == 0 }

func (m *MarkerMap) Clear() {
	m.keys = nil
	m.sets = make(map[string]*StringSet)
}

// Clone returns a deep copy.
func (m *MarkerMap) Clone() *MarkerMap {
	out := NewMarkerMap()
	if m == nil {
		return out
	}
	for _, k := range m.keys {
		out.Put(k, m.sets[k])
	}
	return out
}

// Equal compares categories and their marker sets, ignoring order.
func (m *MarkerMap) Equal(o *MarkerMap) bool {
	if m.Len() != o.Len() {
		return false
	}
	for _, k := range m.Categories() {
		other := o.Get(k)
		if other == nil || !m.sets[k].Equal(other) {
			return false
		}
	}
	return true
}

func (m *MarkerMap) fingerprint() string {
	keys := m.Categories()
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + m.sets[k].sortedKey()
	}
	return "{" + strings.Join(parts, ";") + "}"
}

func (m *MarkerMap) String() string {
	parts := make([]string, 0, m.Len())
	for _, k := range m.Categories() {
		parts = append(parts, k+"="+m.sets[k].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Properties is a string-keyed property bag that iterates in insertion
// order. Values are typically strings, *Attributes or *Expression.
type Properties struct {
	keys   []string
	values map[string]interface{}
}

// NewProperties returns a bag built from key/value pairs.
func NewProperties(pairs ...interface{}) *Properties {
	p := &Properties{values: make(map[string]interface{})}
	for i := 0; i+1 < len(pairs); i += 2 {
		p.Set(fmt.Sprint(pairs[i]), pairs[i+1])
	}
	return p
}

// Set stores value under key, keeping the key's original position.
func (p *Properties) Set(key string, value interface{}) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

func (p *Properties) Get(key string) (interface{}, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[key]
	return v, ok
}

func (p *Properties) Delete(key string) {
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// Keys returns keys in insertion order.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Values returns values in key insertion order.
func (p *Properties) Values() []interface{} {
	if p == nil {
		return nil
	}
	out := make([]interface{}, len(p.keys))
	for i, k := range p.keys {
		out[i] = p.values[k]
	}
	return out
}

func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

func (p *Properties) Clear() {
	p.keys = nil
	p.values = make(map[string]interface{})
}

// Clone deep-copies expressions and attributes held as values.
func (p *Properties) Clone() *Properties {
	out := NewProperties()
	if p == nil {
		return out
	}
	for _, k := range p.keys {
		out.Set(k, copyValue(p.values[k]))
	}
	return out
}

// equal compares keys and values, ignoring insertion order.
func (p *Properties) equal(o *Properties, mode Mode) bool {
	if p.Len() != o.Len() {
		return false
	}
	for _, k := range p.Keys() {
		ov, ok := o.Get(k)
		if !ok || !valuesEqual(p.values[k], ov, mode) {
			return false
		}
	}
	return true
}

func (p *Properties) fingerprint(mode Mode) string {
	keys := p.Keys()
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + valueFingerprint(p.values[k], mode)
	}
	return "{" + strings.Join(parts, ";") + "}"
}

func (p *Properties) String() string {
	parts := make([]string, 0, p.Len())
	for _, k := range p.Keys() {
		parts = append(parts, fmt.Sprintf("%s=%v", k, p.values[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
