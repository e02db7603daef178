package netstate

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadState loads a network-state document from a file
func LoadState(filename string) (*NetworkState, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	return LoadStateFromBytes(data)
}

// LoadStateFromBytes loads a network-state document from byte data
func LoadStateFromBytes(data []byte) (*NetworkState, error) {
	var state NetworkState
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	return &state, nil
}

// SaveState saves a network-state document to a file
func SaveState(state *NetworkState, filename string) error {
	data, err := state.ToYAML()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}

	return nil
}

// ToYAML serializes the state back to YAML
func (ns *NetworkState) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(ns)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return data, nil
}

// Validate performs basic validation of the network state
func (ns *NetworkState) Validate() error {
	if ns.Version != 1 && ns.Version != 2 {
		return fmt.Errorf("unsupported network state version: %d (must be 1 or 2)", ns.Version)
	}

	if ns.Version == 1 && (len(ns.Ethernets) > 0 || len(ns.VLANs) > 0 || len(ns.Bonds) > 0) {
		return fmt.Errorf("version 1 state cannot carry per-device configuration")
	}

	names := make(map[string]bool)
	for _, iface := range ns.Interfaces {
		if iface.Name == "" {
			return fmt.Errorf("interface with empty name")
		}
		if names[iface.Name] {
			return fmt.Errorf("duplicate interface name: %s", iface.Name)
		}
		names[iface.Name] = true
	}

	return nil
}
