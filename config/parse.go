package config

import "gopkg.in/yaml.v2"

// Parse decodes raw YAML bytes into a Document. It does not check
// referential invariants — call Validate for that. Unknown top-level keys
// are rejected so typos in the configuration surface as syntax errors
// instead of being silently ignored.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, ErrSyntax.New(err)
	}
	return &doc, nil
}
