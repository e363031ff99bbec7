package cache

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaResource = "promptvault-cache.json"

// recordsSchema describes the cached record array. Entries written by older
// clients have no isFavorite field, so it is optional.
const recordsSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "title", "content", "type", "model", "tags", "createdAt"],
		"properties": {
			"id":          {"type": "string", "minLength": 1},
			"title":       {"type": "string"},
			"content":     {"type": "string"},
			"type":        {"type": "string"},
			"model":       {"type": "string"},
			"tags":        {"type": "array", "items": {"type": "string"}},
			"imageBase64": {"type": ["string", "null"]},
			"notes":       {"type": ["string", "null"]},
			"createdAt":   {"type": "number"},
			"isFavorite":  {"type": "boolean"}
		}
	}
}`

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaResource, strings.NewReader(recordsSchema)); err != nil {
		return nil, fmt.Errorf("load cache schema: %w", err)
	}
	schema, err := compiler.Compile(schemaResource)
	if err != nil {
		return nil, fmt.Errorf("compile cache schema: %w", err)
	}
	return schema, nil
}
