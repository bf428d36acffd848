package golang

import (
	"strconv"

	"github.com/teranos/logifact/model"
)

// tagAnnotations renders a struct tag as a single tag annotation with one
// argument per key, in tag order.
func tagAnnotations(tag string) []model.Annotation {
	pairs := parseTag(tag)
	if len(pairs) == 0 {
		return nil
	}
	args := make([]model.AnnotationArg, len(pairs))
	for i, p := range pairs {
		args[i] = model.AnnotationArg{Name: p.key, Value: model.StringValue(p.value)}
	}
	return []model.Annotation{{Name: "tag", Args: args}}
}

type tagPair struct {
	key, value string
}

// parseTag enumerates the key:"value" pairs of a conventional struct tag,
// stopping at the first malformed pair the way reflect.StructTag does.
func parseTag(tag string) []tagPair {
	var out []tagPair
	for tag != "" {
		i := 0
		for i < len(tag) && tag[i] == ' ' {
			i++
		}
		tag = tag[i:]
		if tag == "" {
			break
		}

		i = 0
		for i < len(tag) && tag[i] > ' ' && tag[i] != ':' && tag[i] != '"' && tag[i] != 0x7f {
			i++
		}
		if i == 0 || i+1 >= len(tag) || tag[i] != ':' || tag[i+1] != '"' {
			break
		}
		key := tag[:i]
		tag = tag[i+1:]

		i = 1
		for i < len(tag) && tag[i] != '"' {
			if tag[i] == '\\' {
				i++
			}
			i++
		}
		if i >= len(tag) {
			break
		}
		value, err := strconv.Unquote(tag[:i+1])
		if err != nil {
			break
		}
		tag = tag[i+1:]
		out = append(out, tagPair{key: key, value: value})
	}
	return out
}
