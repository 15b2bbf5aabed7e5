package dspace

import "encoding/json"

// Operation is one JSON Patch operation.
type Operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// Patch builds a JSON Patch document.
type Patch []Operation

func (p Patch) Add(path string, value any) Patch {
	return append(p, Operation{Op: "add", Path: path, Value: value})
}

func (p Patch) Replace(path string, value any) Patch {
	return append(p, Operation{Op: "replace", Path: path, Value: value})
}

func (p Patch) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// MetadataValue is a DSpace metadata entry.
type MetadataValue struct {
	Value    string  `json:"value"`
	Language *string `json:"language"`
}

// metadataValue uses nil for an empty language so DSpace stores null.
func metadataValue(value, language string) MetadataValue {
	mv := MetadataValue{Value: value}
	if language != "" {
		mv.Language = &language
	}
	return mv
}
