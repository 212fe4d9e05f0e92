// Package scenario decodes yaml observation files into valenced nADICO
// expressions. A file lists agents; every agent carries the observations it
// made, each a chain of actions given earliest first.
package scenario

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"nadico/internal/generalizer"
	"nadico/internal/logging"
	"nadico/internal/nadico"
)

// File is a decoded observation file.
type File struct {
	Context string  `yaml:"context"`
	Agents  []Agent `yaml:"agents"`
}

// Agent is one observing agent.
type Agent struct {
	Name string `yaml:"name"`
	// Subject identifies the agent itself during ADIC derivation.
	Subject      *AttributesSpec `yaml:"subject,omitempty"`
	Observations []Observation   `yaml:"observations"`
}

// Observation is a chain of actions with the valence of its last action.
type Observation struct {
	Valence float64  `yaml:"valence"`
	Chain   []Action `yaml:"chain"`
}

// Action is one action of a chain.
type Action struct {
	Attributes AttributesSpec `yaml:"attributes"`
	Activity   string         `yaml:"activity"`
	Properties Properties     `yaml:"properties,omitempty"`
	Conditions Properties     `yaml:"conditions,omitempty"`
}

// AttributesSpec lists markers per category.
type AttributesSpec struct {
	Individual map[string]Markers `yaml:"individual,omitempty"`
	Social     map[string]Markers `yaml:"social,omitempty"`
}

// Load reads and decodes the file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read observation file: %w", err)
	}
	f, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logging.Scenario("loaded %s: %d agents", path, len(f.Agents))
	return f, nil
}

// Decode reads one observation file from r and validates it.
func Decode(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty observation file", nadico.ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to parse observation file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks that every agent is named and every observation has at
// least one action.
func (f *File) Validate() error {
	seen := make(map[string]bool, len(f.Agents))
	for i, a := range f.Agents {
		if a.Name == "" {
			return fmt.Errorf("%w: agent %d has no name", nadico.ErrInvalidInput, i)
		}
		if seen[a.Name] {
			return fmt.Errorf("%w: duplicate agent %q", nadico.ErrInvalidInput, a.Name)
		}
		seen[a.Name] = true
		for j, o := range a.Observations {
			if len(o.Chain) == 0 {
				return fmt.Errorf("%w: agent %q observation %d has an empty chain", nadico.ErrInvalidInput, a.Name, j)
			}
		}
	}
	return nil
}

// Agent returns the agent called name.
func (f *File) Agent(name string) (*Agent, bool) {
	for i := range f.Agents {
		if f.Agents[i].Name == name {
			return &f.Agents[i], true
		}
	}
	return nil, false
}

// Expressions builds every observation of a with factory f.
func (a *Agent) Expressions(f *nadico.Factory) ([]generalizer.Observation, error) {
	out := make([]generalizer.Observation, 0, len(a.Observations))
	for i, o := range a.Observations {
		e, err := o.Expression(f)
		if err != nil {
			return nil, fmt.Errorf("agent %q observation %d: %w", a.Name, i, err)
		}
		out = append(out, generalizer.Observation{Expression: e, Valence: o.Valence})
	}
	return out, nil
}

// SubjectAttributes returns the agent's own attributes. Without an explicit
// subject the agent name becomes a NAME marker.
func (a *Agent) SubjectAttributes() *nadico.Attributes {
	if a.Subject == nil {
		return nadico.NewAttributes("NAME", a.Name)
	}
	return a.Subject.Build()
}

// Expression builds the chain and returns its last action.
func (o *Observation) Expression(f *nadico.Factory) (*nadico.Expression, error) {
	if len(o.Chain) == 0 {
		return nil, fmt.Errorf("%w: empty action chain", nadico.ErrInvalidInput)
	}
	var prev *nadico.Expression
	for i := range o.Chain {
		e, err := o.Chain[i].Build(f, prev)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		prev = e
	}
	return prev, nil
}

// Build creates the action, linking prev as its preceding action.
func (a *Action) Build(f *nadico.Factory, prev *nadico.Expression) (*nadico.Expression, error) {
	aim := nadico.NewAim(a.Activity)
	a.Properties.apply(aim.Properties)
	cond := nadico.NewConditionsAfter(prev)
	a.Conditions.apply(cond.Properties)
	return f.CreateAction(a.Attributes.Build(), aim, cond)
}

// Build converts the markers into attributes. Categories are added in sorted
// order.
func (s *AttributesSpec) Build() *nadico.Attributes {
	attrs := nadico.NewAttributes("", "")
	for _, cat := range sortedKeys(s.Individual) {
		for _, m := range s.Individual[cat] {
			attrs.AddIndividualMarker(cat, m)
		}
	}
	for _, cat := range sortedKeys(s.Social) {
		for _, m := range s.Social[cat] {
			attrs.AddSocialMarker(cat, m)
		}
	}
	return attrs
}

// Marshal encodes a single observation, the form the store keeps.
func (o *Observation) Marshal() ([]byte, error) {
	return yaml.Marshal(o)
}

// UnmarshalObservation decodes what Marshal produced.
func UnmarshalObservation(data []byte) (*Observation, error) {
	var o Observation
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse observation: %w", err)
	}
	if len(o.Chain) == 0 {
		return nil, fmt.Errorf("%w: empty action chain", nadico.ErrInvalidInput)
	}
	return &o, nil
}
