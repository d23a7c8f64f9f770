package catalog

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// File is the top-level catalog document: an array of records.
type File []Record

// Record mirrors one entry of scholarships.json / scholarships.yaml.
type Record struct {
	ID           RawID  `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Deadline     string `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	Award        string `json:"award,omitempty" yaml:"award,omitempty"`
	Based        string `json:"based,omitempty" yaml:"based,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	Eligibility  string `json:"eligibility,omitempty" yaml:"eligibility,omitempty"`
	Requirements string `json:"requirements,omitempty" yaml:"requirements,omitempty"`
	Website      string `json:"website,omitempty" yaml:"website,omitempty"`
}

// RawID accepts both numeric and string identifiers and keeps the string form.
type RawID string

func (id *RawID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = RawID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = RawID(n.String())
	return nil
}

func (id *RawID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("id must be a scalar (line %d)", value.Line)
	}
	*id = RawID(value.Value)
	return nil
}
