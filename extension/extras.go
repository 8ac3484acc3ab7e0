// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package extension

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Value objects returned by extensions have a fixed set of known fields
// plus an Extras map holding every other member of the JSON object.
// UnmarshalWithExtras and MarshalWithExtras implement that split for any
// struct whose known fields carry json tags.

// UnmarshalWithExtras decodes data into target (a pointer to a struct)
// and returns the members that no json-tagged field of target consumed.
// The result is nil when there are none.
func UnmarshalWithExtras(data []byte, target any) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(data, target); err != nil {
		return nil, err
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}
	// encoding/json matches member names case-insensitively.
	known := make(map[string]bool)
	for _, name := range knownFields(reflect.TypeOf(target)) {
		known[strings.ToLower(name)] = true
	}
	for name := range members {
		if known[strings.ToLower(name)] {
			delete(members, name)
		}
	}
	if len(members) == 0 {
		return nil, nil
	}
	return members, nil
}

// MarshalWithExtras encodes value (a struct) and adds extras as further
// members. Known fields win over extras with the same name.
func MarshalWithExtras(value any, extras map[string]json.RawMessage) ([]byte, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	if len(extras) == 0 {
		return encoded, nil
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &members); err != nil {
		return nil, fmt.Errorf("extension: %T does not encode as an object: %w", value, err)
	}
	for name, raw := range extras {
		if _, known := members[name]; !known {
			members[name] = raw
		}
	}
	return json.Marshal(members)
}

// DecodeExtra decodes one extras member into target. A missing member
// leaves target untouched and returns false.
func DecodeExtra(extras map[string]json.RawMessage, name string, target any) (bool, error) {
	raw, ok := extras[name]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return true, fmt.Errorf("extension: decoding extra %q: %w", name, err)
	}
	return true, nil
}

func knownFields(typ reflect.Type) []string {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil
	}
	var names []string
	for index := range typ.NumField() {
		field := typ.Field(index)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = field.Name
		}
		names = append(names, name)
	}
	return names
}
