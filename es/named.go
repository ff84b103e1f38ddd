package es

import (
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"
)

type Named interface {
	TypeName() string
}

// NameOf derives "<package>:<kebab-type>" from the dynamic type of value unless
// value names itself.
func NameOf(value any) string {
	if typed, ok := value.(Named); ok {
		return typed.TypeName()
	}

	split := strings.Split(reflect.TypeOf(value).String(), ".")
	segments := make([]string, len(split))
	for i, segment := range split {
		segments[i] = strcase.ToKebab(strings.TrimLeft(segment, "*"))
	}

	if len(segments) == 1 {
		return segments[0]
	}

	return segments[0] + ":" + strings.Join(segments[1:], "-")
}
