package schema

import (
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/messgen/errors"
)

// parseArray splits "T[]" or "T[N]" at the outermost bracket pair.
func parseArray(name string) (elem string, size int, fixed bool, err error) {
	open := strings.LastIndexByte(name, '[')
	if open <= 0 {
		return "", 0, false, errors.UnknownType(errors.PhaseLookup, name)
	}
	elem = name[:open]
	inner := name[open+1 : len(name)-1]
	if inner == "" {
		return elem, 0, false, nil
	}
	for i := 0; i < len(inner); i++ {
		if inner[i] < '0' || inner[i] > '9' {
			return "", 0, false, errors.New(errors.PhaseLookup, errors.KindUnknownType).
				TypeName(name).
				Detail("invalid array size %q", inner).
				Build()
		}
	}
	n, convErr := strconv.ParseUint(inner, 10, 32)
	if convErr != nil || n > math.MaxInt32 {
		return "", 0, false, errors.New(errors.PhaseLookup, errors.KindUnknownType).
			TypeName(name).
			Detail("array size %s out of range", inner).
			Build()
	}
	return elem, int(n), true, nil
}

// parseMap splits "V{K}" into key and value type names.
func parseMap(name string) (key, value string, err error) {
	open := strings.LastIndexByte(name, '{')
	if open <= 0 || open == len(name)-2 {
		return "", "", errors.UnknownType(errors.PhaseLookup, name)
	}
	return name[open+1 : len(name)-1], name[:open], nil
}

// ArrayTypeName renders the array type name for elem with an optional fixed size.
func ArrayTypeName(elem string, size int, fixed bool) string {
	if !fixed {
		return elem + "[]"
	}
	return elem + "[" + strconv.Itoa(size) + "]"
}

// MapTypeName renders the map type name for the given key and value types.
func MapTypeName(key, value string) string {
	return value + "{" + key + "}"
}
