package utils

import (
	"errors"

	"github.com/tidwall/gjson"
)

var (
	ErrGjsonNotFound  = errors.New("specified path does not exist")
	ErrGjsonWrongType = errors.New("wrong type")
)

func GjsonGet(json []byte, path string) (gjson.Result, error) {
	result := gjson.GetBytes(json, path)
	if !result.Exists() {
		return result, ErrGjsonNotFound
	}

	return result, nil
}

// GjsonParseStringSliceMap parses {"field": ["msg", ...]} validation maps.
// A bare string value is accepted as a single message.
func GjsonParseStringSliceMap(raw gjson.Result) (map[string][]string, error) {
	if !raw.Exists() || raw.Type == gjson.Null {
		return nil, nil
	}
	if !raw.IsObject() {
		return nil, ErrGjsonWrongType
	}

	ret := make(map[string][]string)
	raw.ForEach(func(key, value gjson.Result) bool {
		if value.IsArray() {
			for _, v := range value.Array() {
				ret[key.String()] = append(ret[key.String()], v.String())
			}
		} else {
			ret[key.String()] = append(ret[key.String()], value.String())
		}
		return true
	})

	return ret, nil
}
