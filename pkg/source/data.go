package source

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	binderrors "github.com/vango-dev/vbind/internal/errors"
)

// DecodeData decodes store data. Names ending in .yaml or .yml are YAML,
// everything else is JSON. The top level must be an object. Empty input
// yields an empty map.
func DecodeData(name string, raw []byte) (map[string]any, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return map[string]any{}, nil
	}

	var v any
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &v); err != nil {
			return nil, binderrors.New("E042").WithDetail(name).Wrap(err)
		}
		v = normalize(v)
	default:
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, binderrors.New("E042").WithDetail(name).Wrap(err)
		}
	}

	m, ok := v.(map[string]any)
	if !ok {
		return nil, binderrors.New("E042").
			WithDetail(fmt.Sprintf("%s: top level is %T", name, v))
	}
	return m, nil
}

// normalize converts YAML maps with non-string keys into map[string]any
// so that nested objects are wrapped by the store.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, val := range x {
			x[k] = normalize(val)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		for i, val := range x {
			x[i] = normalize(val)
		}
		return x
	}
	return v
}
