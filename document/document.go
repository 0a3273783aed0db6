package document

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	protoreg "github.com/gamekit/protoreg"
)

// Extensions lists the file suffixes recognized as prototype documents,
// in the order they are matched.
var Extensions = []string{
	".proto.json",
	".protos.json",
	".prototype.json",
	".prototypes.json",
	".proto.yaml",
	".protos.yaml",
	".prototype.yaml",
	".prototypes.yaml",
	".proto.yml",
	".protos.yml",
	".prototype.yml",
	".prototypes.yml",
}

// Record is one prototype record in its on-disk form: a discriminant
// naming the registered shape, a name, optional tags, and every other
// field flattened into the untyped payload.
type Record struct {
	Type    string
	Name    string
	Tags    []string
	Payload map[string]any
}

// Matches reports whether path carries a recognized document extension.
func Matches(path string) bool {
	for _, ext := range Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// Parse parses a raw JSON document holding either a list of records or a
// single record. The list shape is attempted first; a document matching
// neither fails with ErrMalformedDocument carrying the underlying parser
// message.
func Parse(data []byte) ([]Record, error) {
	var rawList []map[string]any
	if err := json.Unmarshal(data, &rawList); err == nil && rawList != nil {
		return fromRaw(rawList)
	}

	var rawUnit map[string]any
	if err := json.Unmarshal(data, &rawUnit); err != nil {
		return nil, protoreg.NewParseError("document.Parse",
			fmt.Errorf("%w: %v", protoreg.ErrMalformedDocument, err))
	}
	if rawUnit == nil {
		return nil, protoreg.NewParseError("document.Parse",
			fmt.Errorf("%w: empty document", protoreg.ErrMalformedDocument))
	}
	return fromRaw([]map[string]any{rawUnit})
}

// ParseYAML parses a raw YAML document under the same single-or-list
// rule as Parse.
func ParseYAML(data []byte) ([]Record, error) {
	var rawList []map[string]any
	if err := yaml.Unmarshal(data, &rawList); err == nil && rawList != nil {
		return fromRaw(rawList)
	}

	var rawUnit map[string]any
	if err := yaml.Unmarshal(data, &rawUnit); err != nil {
		return nil, protoreg.NewParseError("document.ParseYAML",
			fmt.Errorf("%w: %v", protoreg.ErrMalformedDocument, err))
	}
	if rawUnit == nil {
		return nil, protoreg.NewParseError("document.ParseYAML",
			fmt.Errorf("%w: empty document", protoreg.ErrMalformedDocument))
	}
	return fromRaw([]map[string]any{rawUnit})
}

// ParseFile dispatches on the path's extension: YAML twins go through
// ParseYAML, everything else through Parse.
func ParseFile(path string, data []byte) ([]Record, error) {
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		return ParseYAML(data)
	}
	return Parse(data)
}

// fromRaw splits each raw object into the reserved framing fields and
// the flattened payload.
func fromRaw(raw []map[string]any) ([]Record, error) {
	records := make([]Record, 0, len(raw))

	for i, obj := range raw {
		rec := Record{Payload: make(map[string]any, len(obj))}

		for key, value := range obj {
			switch key {
			case "type":
				s, ok := value.(string)
				if !ok {
					return nil, protoreg.NewParseError("document.Parse",
						fmt.Errorf("%w: record %d: type must be a string, got %T",
							protoreg.ErrMalformedDocument, i, value))
				}
				rec.Type = s
			case "name":
				s, ok := value.(string)
				if !ok {
					return nil, protoreg.NewParseError("document.Parse",
						fmt.Errorf("%w: record %d: name must be a string, got %T",
							protoreg.ErrMalformedDocument, i, value))
				}
				rec.Name = s
			case "tags":
				tags, err := stringSlice(value)
				if err != nil {
					return nil, protoreg.NewParseError("document.Parse",
						fmt.Errorf("%w: record %d: %v", protoreg.ErrMalformedDocument, i, err))
				}
				rec.Tags = tags
			default:
				rec.Payload[key] = value
			}
		}

		if rec.Type == "" {
			return nil, protoreg.NewParseError("document.Parse",
				fmt.Errorf("%w: record %d has no type", protoreg.ErrMalformedDocument, i))
		}

		records = append(records, rec)
	}

	return records, nil
}

func stringSlice(value any) ([]string, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("tags must be an array of strings, got %T", value)
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("tags must be an array of strings, got element %T", v)
		}
		out = append(out, s)
	}
	return out, nil
}
