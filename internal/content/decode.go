package content

import (
	"encoding/json"
	"log/slog"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

// decodeLenient fills out from a model-produced object. Models are loose
// with types, so scalars are coerced, a lone string becomes a one-element
// list, and nested objects bound for a string field are kept as JSON text.
// Decode errors are logged and the partially filled value is kept.
func decodeLenient(obj map[string]any, out any) {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.DecodeHookFuncType(structuredToText),
	})
	if err != nil {
		slog.Warn("building content decoder", "error", err)
		return
	}
	if err := dec.Decode(obj); err != nil {
		slog.Debug("lenient decode was partial", "error", err)
	}
}

func structuredToText(from, to reflect.Type, data any) (any, error) {
	if from == nil || to == nil || to.Kind() != reflect.String {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Map, reflect.Slice:
		b, err := json.Marshal(data)
		if err != nil {
			return data, nil
		}
		return string(b), nil
	}
	return data, nil
}

// contentFromObject builds Content from a decoded object; src is the JSON
// text it was decoded from.
func contentFromObject(obj map[string]any, src string) *Content {
	c := &Content{}
	decodeLenient(obj, c)
	c.raw = obj
	c.src = src
	return c
}

func reviewFromObject(obj map[string]any) *Review {
	r := &Review{}
	decodeLenient(obj, r)
	r.raw = obj
	return r
}
