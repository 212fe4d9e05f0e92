package nadico

// Group is a key expression with the instances grouped under it.
type Group struct {
	Key       *Expression
	Instances []*Expression
}

// ExpressionMap groups expressions under keys compared at a fixed equality
// mode and iterates in insertion order. Keys must not be mutated in ways
// that change their fingerprint while stored.
type ExpressionMap struct {
	mode   Mode
	groups []*Group
	index  map[string]*Group
}

func NewExpressionMap(mode Mode) *ExpressionMap {
	return &ExpressionMap{mode: mode, index: make(map[string]*Group)}
}

func (m *ExpressionMap) Mode() Mode { return m.mode }

// Get returns the group whose key equals key, or nil.
func (m *ExpressionMap) Get(key *Expression) *Group {
	if m == nil {
		return nil
	}
	return m.index[key.Fingerprint(m.mode)]
}

// Put stores instances under key, replacing the instances of an equal key.
// The stored key is kept in that case.
func (m *ExpressionMap) Put(key *Expression, instances ...*Expression) *Group {
	fp := key.Fingerprint(m.mode)
	if g, ok := m.index[fp]; ok {
		g.Instances = append([]*Expression(nil), instances...)
		return g
	}
	g := &Group{Key: key, Instances: append([]*Expression(nil), instances...)}
	m.groups = append(m.groups, g)
	m.index[fp] = g
	return g
}

// Append adds instance under key, inserting key if absent.
func (m *ExpressionMap) Append(key, instance *Expression) *Group {
	if g := m.Get(key); g != nil {
		g.Instances = append(g.Instances, instance)
		return g
	}
	return m.Put(key, instance)
}

// Delete removes the group with a key equal to key.
func (m *ExpressionMap) Delete(key *Expression) {
	fp := key.Fingerprint(m.mode)
	g, ok := m.index[fp]
	if !ok {
		return
	}
	delete(m.index, fp)
	for i, x := range m.groups {
		if x == g {
			m.groups = append(m.groups[:i], m.groups[i+1:]...)
			break
		}
	}
}

// Groups returns the groups in insertion order.
func (m *ExpressionMap) Groups() []*Group {
	if m == nil {
		return nil
	}
	out := make([]*Group, len(m.groups))
	copy(out, m.groups)
	return out
}

// Keys returns the keys in insertion order.
func (m *ExpressionMap) Keys() []*Expression {
	if m == nil {
		return nil
	}
	out := make([]*Expression, len(m.groups))
	for i, g := range m.groups {
		out[i] = g.Key
	}
	return out
}

func (m *ExpressionMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.groups)
}

// Copy deep-copies keys and instances.
func (m *ExpressionMap) Copy() *ExpressionMap {
	out := NewExpressionMap(m.mode)
	for _, g := range m.groups {
		inst := make([]*Expression, len(g.Instances))
		for i, x := range g.Instances {
			inst[i] = x.Copy()
		}
		out.Put(g.Key.Copy(), inst...)
	}
	return out
}
