package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/tailscale/hujson"
)

type tomlFile struct {
	Structs []rawStruct `toml:"struct"`
}

// decodeTOML returns the declarations and the byte offset where each one
// starts.
func decodeTOML(content []byte) ([]rawStruct, []int, error) {
	var f tomlFile
	meta, err := toml.Decode(string(content), &f)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, nil, fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return f.Structs, tomlStructStarts(content), nil
}

// tomlStructStarts returns the offset of every [[struct]] header line. A
// header spelled inside a multi-line string is counted too; the locator
// drops the offsets when the count does not match.
func tomlStructStarts(content []byte) []int {
	var starts []int
	off := 0
	for line := range bytes.Lines(content) {
		if isStructHeader(line) {
			starts = append(starts, off)
		}
		off += len(line)
	}
	return starts
}

func isStructHeader(line []byte) bool {
	line = bytes.TrimSpace(line)
	if i := bytes.IndexByte(line, '#'); i >= 0 {
		line = bytes.TrimSpace(line[:i])
	}
	inner, ok := bytes.CutPrefix(line, []byte("[["))
	if !ok {
		return false
	}
	inner, ok = bytes.CutSuffix(inner, []byte("]]"))
	return ok && string(bytes.TrimSpace(inner)) == "struct"
}

type jsonFile struct {
	Structs []rawStruct `json:"structs"`
}

// decodeJSON returns the declarations and the byte offset of each object in
// the "structs" array.
func decodeJSON(content []byte) ([]rawStruct, []int, error) {
	// Parse aliases its input and Standardize rewrites it in place; the file
	// set keeps the original.
	v, err := hujson.Parse(bytes.Clone(content))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	starts := jsonStructStarts(v)
	v.Standardize()
	dec := json.NewDecoder(bytes.NewReader(v.Pack()))
	dec.DisallowUnknownFields()
	var f jsonFile
	if err := dec.Decode(&f); err != nil {
		return nil, nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return f.Structs, starts, nil
}

func jsonStructStarts(v hujson.Value) []int {
	obj, ok := v.Value.(*hujson.Object)
	if !ok {
		return nil
	}
	var starts []int
	for _, m := range obj.Members {
		name, ok := m.Name.Value.(hujson.Literal)
		if !ok || name.String() != "structs" {
			continue
		}
		arr, ok := m.Value.Value.(*hujson.Array)
		if !ok {
			return nil
		}
		// a repeated member replaces the earlier one, as in encoding/json
		starts = starts[:0]
		for _, el := range arr.Elements {
			starts = append(starts, el.StartOffset)
		}
	}
	return starts
}
