package scenario

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"nadico/internal/logging"
	"nadico/internal/nadico"
)

// Markers accepts either a single scalar or a sequence of scalars.
type Markers []string

func (m *Markers) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*m = Markers{node.Value}
		return nil
	case yaml.SequenceNode:
		var xs []string
		if err := node.Decode(&xs); err != nil {
			return err
		}
		*m = xs
		return nil
	}
	return fmt.Errorf("line %d: markers must be a string or a list of strings", node.Line)
}

func (m Markers) MarshalYAML() (interface{}, error) {
	if len(m) == 1 {
		return m[0], nil
	}
	return []string(m), nil
}

// Property is one key of a property bag. Exactly one of Value and
// Attributes is set.
type Property struct {
	Key        string
	Value      string
	Attributes *AttributesSpec
}

// Properties is a property bag that keeps the order written in the file.
type Properties []Property

func (p *Properties) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: properties must be a mapping", node.Line)
	}
	out := make(Properties, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		prop := Property{Key: key.Value}
		switch val.Kind {
		case yaml.ScalarNode:
			prop.Value = val.Value
		case yaml.MappingNode:
			var spec AttributesSpec
			if err := val.Decode(&spec); err != nil {
				return fmt.Errorf("property %q: %w", key.Value, err)
			}
			prop.Attributes = &spec
		default:
			return fmt.Errorf("line %d: property %q must be a string or attributes", val.Line, key.Value)
		}
		out = append(out, prop)
	}
	*p = out
	return nil
}

func (p Properties) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, prop := range p {
		var val yaml.Node
		var err error
		if prop.Attributes != nil {
			err = val.Encode(prop.Attributes)
		} else {
			err = val.Encode(prop.Value)
		}
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", prop.Key, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: prop.Key},
			&val)
	}
	return node, nil
}

func (p Properties) apply(dst *nadico.Properties) {
	for _, prop := range p {
		if prop.Key == nadico.PreviousAction {
			logging.ScenarioWarn("ignoring %s property, chains are given by order", prop.Key)
			continue
		}
		if prop.Attributes != nil {
			dst.Set(prop.Key, prop.Attributes.Build())
			continue
		}
		dst.Set(prop.Key, prop.Value)
	}
}

func sortedKeys(m map[string]Markers) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
