package jsonlib

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
)

// Flatten reads and writes one flat JSON object: the fields of Defined, which
// must be a struct, next to whatever other keys the object has. A key in
// Extra that collides with a defined field is dropped on the way out.
type Flatten[T any] struct {
	Defined T
	Extra   map[string]any
}

func (f Flatten[T]) MarshalJSON() ([]byte, error) {
	definedFields, err := StructToMap(f.Defined)
	if err != nil {
		return nil, errors.Wrap(err, "Could not convert defined fields into a map")
	}

	output := make(map[string]any, len(f.Extra)+len(definedFields))
	for k, v := range f.Extra {
		if !isDefinedField[T](k) {
			output[k] = v
		}
	}
	for k, v := range definedFields {
		output[k] = v
	}

	return json.Marshal(output)
}

func (f *Flatten[T]) UnmarshalJSON(b []byte) error {
	object := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &object); err != nil {
		return errors.Wrap(err, "Expected a JSON object")
	}

	defined := new(T)
	if err := json.Unmarshal(b, defined); err != nil {
		return errors.Wrap(err, "Could not unmarshal json data into defined fields")
	}

	extra := map[string]any{}
	for k, raw := range object {
		if isDefinedField[T](k) {
			continue
		}

		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return errors.Wrapf(err, "Could not unmarshal field %s", k)
		}
		extra[k] = value
	}

	*f = Flatten[T]{
		Defined: *defined,
		Extra:   extra,
	}

	return nil
}

// isDefinedField goes by the json tags rather than by what T encodes to, so
// an omitempty field that was left empty still counts as defined.
func isDefinedField[T any](key string) bool {
	structType := reflect.TypeOf(*new(T))
	if structType == nil || structType.Kind() != reflect.Struct {
		return false
	}

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if !field.IsExported() {
			continue
		}

		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = field.Name
		}

		if strings.EqualFold(name, key) {
			return true
		}
	}

	return false
}

func StructToMap(s any) (map[string]any, error) {
	jsonBytes, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "Could not marshal struct")
	}

	fieldsMap := map[string]any{}
	err = json.Unmarshal(jsonBytes, &fieldsMap)
	if err != nil {
		return nil, errors.Wrap(err, "Could not unmarshal struct into a map")
	}

	return fieldsMap, nil
}

func MapToStruct[T any](m map[string]any) (T, error) {
	t := new(T)
	jsonBytes, err := json.Marshal(m)
	if err != nil {
		return *t, errors.Wrap(err, "Could not marshal map")
	}

	err = json.Unmarshal(jsonBytes, t)
	if err != nil {
		return *t, errors.Wrap(err, "Could not unmarshal json map to object")
	}

	return *t, nil
}
