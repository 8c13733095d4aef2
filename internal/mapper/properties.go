package mapper

import "encoding/json"

// AllowedProperties filters an entity down to the property keys approved
// for its kind. The entity is flattened through its JSON representation so
// the surviving values keep the wire shape the marketing platform sees.
// An unknown kind yields an empty map.
func AllowedProperties(allowed map[string][]string, kind string, entity any) map[string]any {
	keys, ok := allowed[kind]
	if !ok {
		return map[string]any{}
	}

	raw, err := json.Marshal(entity)
	if err != nil {
		return map[string]any{}
	}
	var all map[string]any
	if err := json.Unmarshal(raw, &all); err != nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := all[k]; ok {
			out[k] = v
		}
	}
	return out
}

// asProperties flattens an entity into a property map without filtering,
// used where the whole object is an approved property set (line items).
func asProperties(entity any) map[string]any {
	raw, err := json.Marshal(entity)
	if err != nil {
		return map[string]any{}
	}
	var all map[string]any
	if err := json.Unmarshal(raw, &all); err != nil {
		return map[string]any{}
	}
	return all
}
