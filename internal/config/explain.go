package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Explain returns the effective value at the given YAML path and its source.
//
// Paths follow the YAML keys, for example:
//
//	panel.title
//	physics.stiffness
//	targeting.edge_threshold
//	input.scroll_pages
//	input.non_drag_regions.0.width
//	tiling_mode
//	hotkeys.snap
//	log_level
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	// A list element inherits the source of its list.
	for p := path; strings.Contains(p, "."); {
		p = p[:strings.LastIndex(p, ".")]
		if src, ok := res.Sources[p]; ok && src.Kind == SourceFile {
			return value, src, nil
		}
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	v := reflect.ValueOf(cfg).Elem()
	for _, part := range strings.Split(path, ".") {
		switch v.Kind() {
		case reflect.Struct:
			field, ok := fieldByYAMLName(v, part)
			if !ok {
				return nil, fmt.Errorf("unknown path: %s", path)
			}
			v = field
		case reflect.Slice:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= v.Len() {
				return nil, fmt.Errorf("unknown path: %s", path)
			}
			v = v.Index(i)
		default:
			return nil, fmt.Errorf("unknown path: %s", path)
		}
	}
	return v.Interface(), nil
}

func fieldByYAMLName(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("yaml")
		key, _, _ := strings.Cut(tag, ",")
		if key == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}
