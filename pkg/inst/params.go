package inst

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Key addresses one fixed function parameter.
type Key struct {
	Name  string
	Index int
}

// String renders the key as name or name[index].
func (k Key) String() string {
	if k.Index == NoIndex {
		return k.Name
	}
	return fmt.Sprintf("%s[%d]", k.Name, k.Index)
}

// Params is the fixed function parameter view of a stream: the last value
// written for every name (and index). The ordered stream stays authoritative;
// Params is derived from it.
type Params map[Key]uint32

// Fold builds Params from a stream. Later writes overwrite earlier ones for
// the same key; unnamed instructions have no key and are skipped.
func Fold(s *Stream) Params {
	p := make(Params)
	for _, in := range s.insts {
		if in.Name == "" {
			continue
		}
		p[Key{Name: in.Name, Index: in.Index}] = in.Value
	}
	return p
}

// Get returns an unindexed parameter.
func (p Params) Get(name string) (uint32, bool) {
	v, ok := p[Key{Name: name, Index: NoIndex}]
	return v, ok
}

// At returns one field of an indexed parameter.
func (p Params) At(name string, index int) (uint32, bool) {
	v, ok := p[Key{Name: name, Index: index}]
	return v, ok
}

// Keys returns the parameter keys sorted by name then index.
func (p Params) Keys() []Key {
	keys := make([]Key, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].Index < keys[j].Index
	})
	return keys
}

// MarshalJSON encodes the parameters as a name-keyed object; indexed
// parameters become arrays (missing indices are zero).
func (p Params) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{})
	indexed := make(map[string]map[int]uint32)
	for k, v := range p {
		if k.Index == NoIndex {
			out[k.Name] = v
			continue
		}
		if indexed[k.Name] == nil {
			indexed[k.Name] = make(map[int]uint32)
		}
		indexed[k.Name][k.Index] = v
	}
	for name, fields := range indexed {
		n := 0
		for idx := range fields {
			if idx+1 > n {
				n = idx + 1
			}
		}
		arr := make([]uint32, n)
		for idx, v := range fields {
			arr[idx] = v
		}
		out[name] = arr
	}
	return json.Marshal(out)
}
