package memory

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/aretw0/exprmig/pkg/domain"
)

type predicate func(doc domain.Document) bool

// compile turns a filter tree into a predicate, compiling every regular expression once.
func compile(filter domain.Filter) (predicate, error) {
	switch f := filter.(type) {
	case nil:
		return func(domain.Document) bool { return true }, nil
	case domain.And:
		children, err := compileAll(f)
		if err != nil {
			return nil, err
		}
		return func(doc domain.Document) bool {
			for _, child := range children {
				if !child(doc) {
					return false
				}
			}
			return true
		}, nil
	case domain.Or:
		children, err := compileAll(f)
		if err != nil {
			return nil, err
		}
		return func(doc domain.Document) bool {
			for _, child := range children {
				if child(doc) {
					return true
				}
			}
			return false
		}, nil
	case domain.Regex:
		re, err := regexp.Compile(f.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex for %s: %w", f.Field, err)
		}
		return func(doc domain.Document) bool {
			return anyLeaf(lookup(doc, f.Field), func(v any) bool {
				s, ok := v.(string)
				return ok && re.MatchString(s)
			})
		}, nil
	case domain.Equal:
		return func(doc domain.Document) bool {
			return anyLeaf(lookup(doc, f.Field), func(v any) bool {
				return reflect.DeepEqual(v, f.Value)
			})
		}, nil
	case domain.Exists:
		return func(doc domain.Document) bool {
			return len(lookup(doc, f.Field)) > 0
		}, nil
	default:
		return nil, fmt.Errorf("unsupported filter %T", filter)
	}
}

func compileAll(filters []domain.Filter) ([]predicate, error) {
	out := make([]predicate, 0, len(filters))
	for _, f := range filters {
		p, err := compile(f)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// lookup resolves a dotted path, fanning out across arrays of objects.
func lookup(doc domain.Document, path string) []any {
	return walk(map[string]any(doc), strings.Split(path, "."))
}

func walk(v any, parts []string) []any {
	if len(parts) == 0 {
		return []any{v}
	}
	switch t := v.(type) {
	case map[string]any:
		child, ok := t[parts[0]]
		if !ok {
			return nil
		}
		return walk(child, parts[1:])
	case domain.Document:
		return walk(map[string]any(t), parts)
	case []any:
		var out []any
		for _, elem := range t {
			out = append(out, walk(elem, parts)...)
		}
		return out
	default:
		return nil
	}
}

// anyLeaf applies test to each value, and to the elements of array values.
func anyLeaf(values []any, test func(any) bool) bool {
	for _, v := range values {
		if test(v) {
			return true
		}
		if arr, ok := v.([]any); ok {
			for _, elem := range arr {
				if test(elem) {
					return true
				}
			}
		}
	}
	return false
}
