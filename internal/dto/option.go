package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// OptionKind tags which input shape an Option was decoded from.
type OptionKind int

const (
	// OptionKindString is a bare string used as both value and label.
	OptionKindString OptionKind = iota
	// OptionKindLabeled is a {value,label} object.
	OptionKindLabeled
)

// Option is the canonical select option. Inputs may be a plain string or a {value,label} object;
// both decode into the same shape so nothing downstream inspects the raw form.
type Option struct {
	Value string     `json:"value"`
	Label string     `json:"label"`
	Kind  OptionKind `json:"-"`
}

// StringOption builds an option whose label equals its value.
func StringOption(value string) Option {
	return Option{Value: value, Label: value, Kind: OptionKindString}
}

// LabeledOption builds an option with a distinct label. An empty label falls back to the value.
func LabeledOption(value, label string) Option {
	if strings.TrimSpace(label) == "" {
		label = value
	}
	return Option{Value: value, Label: label, Kind: OptionKindLabeled}
}

// UnmarshalJSON accepts either "value" or {"value": "...", "label": "..."}.
func (o *Option) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*o = StringOption(s)
		return nil
	}
	var obj struct {
		Value *string `json:"value"`
		Label string  `json:"label"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("option must be a string or {value,label} object: %w", err)
	}
	if obj.Value == nil {
		return fmt.Errorf("option object requires a value")
	}
	*o = LabeledOption(*obj.Value, obj.Label)
	return nil
}

// NormalizeOption converts a generically decoded value (TOML, YAML, map based JSON) into an Option.
func NormalizeOption(raw interface{}) (Option, error) {
	switch v := raw.(type) {
	case string:
		return StringOption(v), nil
	case Option:
		return v, nil
	case map[string]interface{}:
		value, ok := v["value"].(string)
		if !ok {
			return Option{}, fmt.Errorf("option object requires a string value")
		}
		label, _ := v["label"].(string)
		return LabeledOption(value, label), nil
	case nil:
		return Option{}, fmt.Errorf("option is empty")
	}
	return Option{}, fmt.Errorf("unsupported option type %T", raw)
}

// NormalizeOptions converts a list of mixed inputs.
func NormalizeOptions(raw []interface{}) ([]Option, error) {
	out := make([]Option, 0, len(raw))
	for i, item := range raw {
		opt, err := NormalizeOption(item)
		if err != nil {
			return nil, fmt.Errorf("option %d: %w", i, err)
		}
		out = append(out, opt)
	}
	return out, nil
}
