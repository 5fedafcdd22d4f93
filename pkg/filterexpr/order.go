package filterexpr

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// OrderSchema whitelists order keys and names the default. Keys map to the
// params struct fields receiving the chosen key and direction.
type OrderSchema struct {
	Default     string
	DefaultDesc bool
	Keys        map[string]bool
	KeyField    string
	DescField   string
}

// bindOrder parses "key [asc|desc]" and assigns it onto the params struct.
// An empty order_by falls back to the schema default.
func bindOrder(dest reflect.Value, raw string, schema OrderSchema) error {
	if schema.Default == "" || schema.KeyField == "" || schema.DescField == "" {
		return errors.New("order schema incomplete")
	}
	if !schema.Keys[schema.Default] {
		return fmt.Errorf("default order key %q missing from schema", schema.Default)
	}

	key, desc := schema.Default, schema.DefaultDesc
	raw = strings.TrimSpace(raw)
	if raw != "" {
		parts := strings.Fields(raw)
		if len(parts) > 2 {
			return fmt.Errorf("invalid order segment %q", raw)
		}
		key = parts[0]
		if !schema.Keys[key] {
			return fmt.Errorf("field %q cannot be used for ordering", key)
		}
		desc = false
		if len(parts) == 2 {
			switch strings.ToLower(parts[1]) {
			case "asc":
			case "desc":
				desc = true
			default:
				return fmt.Errorf("invalid direction %q", parts[1])
			}
		}
	}

	if err := assign(dest, schema.KeyField, key); err != nil {
		return err
	}
	return assign(dest, schema.DescField, desc)
}
