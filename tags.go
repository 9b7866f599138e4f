package proteograph

import (
	"fmt"
	"reflect"
	"strings"
)

// tagName is the struct tag read by the repository.
const tagName = "graph"

// entityMetadata holds the parsed `graph` tag information for a specific struct type.
type entityMetadata struct {
	// Label is the graph node label, defaulting to the struct's name.
	Label string
	// PKField is the name of the struct field marked as the primary key.
	PKField string
	// PKProp is the property name of the primary key in the database.
	PKProp string
	// Mappings maps struct field names to their corresponding database property names.
	Mappings map[string]string
}

// parseTagsFromType inspects a reflect.Type and extracts the node mapping from
// its `graph` struct tags. A tag looks like `graph:"pk,property:id"`; an
// optional `label:Name` component on any field overrides the node label.
func parseTagsFromType(typ reflect.Type) (*entityMetadata, error) {
	if typ == nil {
		return nil, fmt.Errorf("cannot parse tags of a nil type")
	}
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("type %s is not a struct", typ.Name())
	}

	meta := &entityMetadata{
		Label:    typ.Name(),
		Mappings: make(map[string]string),
	}

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag := field.Tag.Get(tagName)
		if tag == "" {
			continue
		}

		isPk := false
		propName := ""
		for _, part := range strings.Split(tag, ",") {
			part = strings.TrimSpace(part)
			switch {
			case part == "pk":
				isPk = true
			case strings.HasPrefix(part, "property:"):
				propName = strings.TrimPrefix(part, "property:")
			case strings.HasPrefix(part, "label:"):
				meta.Label = strings.TrimPrefix(part, "label:")
			}
		}

		if propName == "" {
			return nil, fmt.Errorf("field %s is missing 'property' tag component", field.Name)
		}
		if isPk {
			if meta.PKField != "" {
				return nil, fmt.Errorf("struct %s declares more than one primary key", typ.Name())
			}
			meta.PKField = field.Name
			meta.PKProp = propName
		}
		meta.Mappings[field.Name] = propName
	}

	if meta.PKField == "" {
		return nil, fmt.Errorf("no primary key ('pk') tag defined for struct %s", typ.Name())
	}

	return meta, nil
}

// parseTags is a generic convenience wrapper around parseTagsFromType.
func parseTags[T any]() (*entityMetadata, error) {
	return parseTagsFromType(reflect.TypeOf((*T)(nil)).Elem())
}
