package graph

import (
	"time"

	"github.com/graphql-go/graphql"
)

// Argument and input-object extraction helpers. graphql-go hands both over
// as map[string]interface{}; coercion has already enforced the declared
// scalar types, so failed assertions only mean "absent".

func argString(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

func argInt(p graphql.ResolveParams, name string, fallback int) int {
	n, ok := p.Args[name].(int)
	if !ok {
		return fallback
	}
	return n
}

func argBool(p graphql.ResolveParams, name string, fallback bool) bool {
	b, ok := p.Args[name].(bool)
	if !ok {
		return fallback
	}
	return b
}

func argStringList(p graphql.ResolveParams, name string) []string {
	raw, ok := p.Args[name].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func inputString(in map[string]interface{}, name string) string {
	s, _ := in[name].(string)
	return s
}

func inputBool(in map[string]interface{}, name string) bool {
	b, _ := in[name].(bool)
	return b
}

func inputStringPtr(in map[string]interface{}, name string) *string {
	s, ok := in[name].(string)
	if !ok {
		return nil
	}
	return &s
}

func inputBoolPtr(in map[string]interface{}, name string) *bool {
	b, ok := in[name].(bool)
	if !ok {
		return nil
	}
	return &b
}

func inputIntPtr(in map[string]interface{}, name string) *int {
	n, ok := in[name].(int)
	if !ok {
		return nil
	}
	return &n
}

func inputFloatPtr(in map[string]interface{}, name string) *float64 {
	switch v := in[name].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	default:
		return nil
	}
}

func inputTimePtr(in map[string]interface{}, name string) *time.Time {
	t, ok := in[name].(time.Time)
	if !ok {
		return nil
	}
	return &t
}

func inputStringList(in map[string]interface{}, name string) []string {
	raw, ok := in[name].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
