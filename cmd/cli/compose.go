package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

// composeCard builds a card from key:value arguments. Keys are the card's
// JSON field names; extra.<name> keys go into the extras map.
func composeCard(args []string) (*cardformat.CardSpec, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no compose arguments provided")
	}

	fields := make(map[string]any)
	extras := make(map[string]any)

	for _, arg := range args {
		name, value, err := parseProperty(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse property '%s': %v", arg, err)
		}
		if extra, ok := strings.CutPrefix(name, "extra."); ok {
			extras[extra] = value
			continue
		}
		fields[name] = value
	}
	if len(extras) > 0 {
		fields["extras"] = extras
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode card: %v", err)
	}
	return cardformat.ParseCard(data)
}

// parseProperty splits name:value, typing the value as a number or bool
// where possible
func parseProperty(arg string) (string, any, error) {
	colonIndex := strings.Index(arg, ":")
	if colonIndex <= 0 {
		return "", nil, fmt.Errorf("property must be in format 'name:value', got: %s", arg)
	}

	name := arg[:colonIndex]
	raw := arg[colonIndex+1:]

	if intVal, err := strconv.Atoi(raw); err == nil {
		return name, intVal, nil
	}
	if floatVal, err := strconv.ParseFloat(raw, 64); err == nil {
		return name, floatVal, nil
	}
	if boolVal, err := strconv.ParseBool(raw); err == nil {
		return name, boolVal, nil
	}
	return name, strings.Trim(raw, `"'`), nil
}
