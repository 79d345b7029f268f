package index

import "encoding/json"

// Field describes one mapped document field.
type Field struct {
	Name      string
	Type      string // text, keyword, long
	Fielddata bool   // allow sorting and aggregations on a text field
	Keyword   bool   // add a .keyword subfield, as dynamic mapping does for strings
}

// Schema is the settings and mappings an index is created with.
type Schema struct {
	Shards   int
	Replicas *int   // nil keeps the engine default; zero is written as is
	Dynamic  string // "strict" rejects unknown fields; empty keeps the engine default
	Fields   []Field
}

// ReplicaCount returns n as a Schema.Replicas value.
func ReplicaCount(n int) *int { return &n }

// Body renders the create-index request body.
func (s Schema) Body() ([]byte, error) {
	body := map[string]any{}

	settings := map[string]any{}
	if s.Shards > 0 {
		settings["number_of_shards"] = s.Shards
	}
	if s.Replicas != nil {
		settings["number_of_replicas"] = *s.Replicas
	}
	if len(settings) > 0 {
		body["settings"] = settings
	}

	if len(s.Fields) > 0 || s.Dynamic != "" {
		props := make(map[string]any, len(s.Fields))
		for _, f := range s.Fields {
			m := map[string]any{"type": f.Type}
			if f.Fielddata {
				m["fielddata"] = true
			}
			if f.Keyword {
				m["fields"] = map[string]any{"keyword": map[string]any{"type": "keyword", "ignore_above": 256}}
			}
			props[f.Name] = m
		}
		mappings := map[string]any{"properties": props}
		if s.Dynamic != "" {
			mappings["dynamic"] = s.Dynamic
		}
		body["mappings"] = mappings
	}

	return json.Marshal(body)
}
