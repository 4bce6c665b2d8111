package separation

import (
	"bytes"
	"encoding/json"
)

var StemNames = []string{"drums", "bass", "other", "vocals"}

type Stem struct {
	Name string
	Path string
}

// StemSet keeps the engine's stem order, including when encoded as JSON.
type StemSet []Stem

func (s StemSet) Paths() map[string]string {
	paths := map[string]string{}
	for _, stem := range s {
		paths[stem.Name] = stem.Path
	}

	return paths
}

func (s StemSet) MarshalJSON() ([]byte, error) {
	buf := bytes.Buffer{}
	buf.WriteByte('{')

	for i, stem := range s {
		if i > 0 {
			buf.WriteByte(',')
		}

		name, err := json.Marshal(stem.Name)
		if err != nil {
			return nil, err
		}
		path, err := json.Marshal(stem.Path)
		if err != nil {
			return nil, err
		}

		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(path)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
