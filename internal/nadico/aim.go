package nadico

// Aim is an activity label plus properties. An empty activity is a wildcard.
// Property values are usually strings or *Attributes.
type Aim struct {
	Activity   string
	Properties *Properties
}

// NewAim returns an aim with the given activity and key/value properties.
func NewAim(activity string, props ...interface{}) *Aim {
	return &Aim{Activity: activity, Properties: NewProperties(props...)}
}

func (a *Aim) SetActivity(activity string) *Aim {
	a.Activity = activity
	return a
}

// AddProperties sets key/value pairs.
func (a *Aim) AddProperties(props ...interface{}) *Aim {
	p := NewProperties(props...)
	for _, k := range p.Keys() {
		v, _ := p.Get(k)
		a.Properties.Set(k, v)
	}
	return a
}

func (a *Aim) Clear() *Aim {
	a.Activity = ""
	a.Properties.Clear()
	return a
}

// CopyFrom takes over the activity and merges the properties of o.
func (a *Aim) CopyFrom(o *Aim) *Aim {
	if o == nil {
		return a
	}
	a.Activity = o.Activity
	for _, k := range o.Properties.Keys() {
		v, _ := o.Properties.Get(k)
		a.Properties.Set(k, v)
	}
	return a
}

// Copy returns a deep copy. A nil receiver yields an empty aim.
func (a *Aim) Copy() *Aim {
	if a == nil {
		return NewAim("")
	}
	return &Aim{Activity: a.Activity, Properties: a.Properties.Clone()}
}

// IsWildcard reports whether the aim has neither activity nor properties.
func (a *Aim) IsWildcard() bool {
	return a == nil || (a.Activity == "" && a.Properties.Len() == 0)
}

func (a *Aim) equal(o *Aim, mode Mode) bool {
	if a == nil || o == nil {
		return a == o
	}
	return a.Activity == o.Activity && a.Properties.equal(o.Properties, mode)
}

// Equal compares activity and properties.
func (a *Aim) Equal(o *Aim) bool { return a.equal(o, EqualAIC) }

func (a *Aim) fingerprint(mode Mode) string {
	if a == nil {
		return "I<nil>"
	}
	return "I(" + a.Activity + ")" + a.Properties.fingerprint(mode)
}

func (a *Aim) String() string {
	if a == nil {
		return "null"
	}
	act := a.Activity
	if act == "" {
		act = "*"
	}
	props := "*"
	if a.Properties.Len() > 0 {
		props = a.Properties.String()
	}
	return "I(" + act + ", " + props + ")"
}
