package chainspec

import (
	"encoding/json"
	"fmt"
	"os"
)

// ChainType describes the kind of network a chain specification targets.
// It serializes the way Substrate chain spec files do: the predefined
// variants as plain strings ("Development", "Local", "Live") and custom
// networks as {"Custom": "<name>"}.
type ChainType struct {
	kind   string
	custom string
}

const (
	kindDevelopment = "Development"
	kindLocal       = "Local"
	kindLive        = "Live"
	kindCustom      = "Custom"
)

var (
	// Development is a chain run for development purposes, typically single-node.
	Development = ChainType{kind: kindDevelopment}
	// Local is a chain run locally, typically a multi-node test setup.
	Local = ChainType{kind: kindLocal}
	// Live is a live, publicly reachable chain.
	Live = ChainType{kind: kindLive}
)

// Custom returns a chain type for a network outside the predefined set.
func Custom(name string) ChainType {
	return ChainType{kind: kindCustom, custom: name}
}

// IsDevelopment reports whether the chain is a development chain.
func (t ChainType) IsDevelopment() bool {
	return t.kind == kindDevelopment
}

func (t ChainType) String() string {
	if t.kind == kindCustom {
		return t.custom
	}
	return t.kind
}

func (t ChainType) MarshalJSON() ([]byte, error) {
	if t.kind == kindCustom {
		return json.Marshal(map[string]string{kindCustom: t.custom})
	}
	return json.Marshal(t.kind)
}

func (t *ChainType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case kindDevelopment, kindLocal, kindLive:
			*t = ChainType{kind: s}
			return nil
		}
		return fmt.Errorf("unknown chain type %q", s)
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("invalid chain type: %s", data)
	}
	name, ok := m[kindCustom]
	if !ok || len(m) != 1 {
		return fmt.Errorf("invalid chain type object: %s", data)
	}
	*t = Custom(name)
	return nil
}

// Properties is the free-form property bag defined by the chain
// specification (token symbol, decimals, address format and so on).
// It is opaque to the node and handed to callers as-is.
type Properties map[string]any

// Spec is a chain specification: the static identity of the network a
// node participates in.
type Spec struct {
	Name       string     `json:"name"`
	ID         string     `json:"id"`
	ChainType  ChainType  `json:"chainType"`
	BootNodes  []string   `json:"bootNodes"`
	Properties Properties `json:"properties"`
}

// Load reads and validates a chain specification from a JSON file.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chain spec: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a chain specification from raw JSON.
func Parse(data []byte) (*Spec, error) {
	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing chain spec: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate checks that the specification carries the fields every chain
// spec must have.
func (s *Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("chain spec: name is required")
	}
	if s.ID == "" {
		return fmt.Errorf("chain spec: id is required")
	}
	if s.ChainType == (ChainType{}) {
		return fmt.Errorf("chain spec: chainType is required")
	}
	if s.Properties == nil {
		s.Properties = Properties{}
	}
	return nil
}
