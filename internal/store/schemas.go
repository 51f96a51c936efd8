package store

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// sliceSchemaFile - какой схемой проверяется каждый сохраняемый срез.
var sliceSchemaFile = map[string]string{
	sliceAuth:           "schemas/auth.json",
	sliceUser:           "schemas/user.json",
	sliceShortlist:      "schemas/shortlist.json",
	slicePropertySearch: "schemas/propertySearch.json",
	sliceListProperty:   "schemas/draft.json",
	sliceEditProperty:   "schemas/draft.json",
}

// schemaBaseURL - адрес, под которым встроенные схемы регистрируются в компиляторе.
const schemaBaseURL = "mem://houseclay-client/"

type sliceValidator struct {
	schemas map[string]*jsonschema.Schema
}

// newSliceValidator компилирует встроенные схемы срезов состояния.
func newSliceValidator() (*sliceValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7

	err := fs.WalkDir(schemaFS, "schemas", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".json") {
			return nil
		}
		file, err := schemaFS.Open(p)
		if err != nil {
			return err
		}
		defer file.Close()
		if err := compiler.AddResource(schemaBaseURL+p, file); err != nil {
			return fmt.Errorf("failed to add schema resource %s: %w", path.Base(p), err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error adding state schemas: %w", err)
	}

	compiled := make(map[string]*jsonschema.Schema, len(sliceSchemaFile))
	byFile := make(map[string]*jsonschema.Schema)
	for slice, file := range sliceSchemaFile {
		schema, ok := byFile[file]
		if !ok {
			schema, err = compiler.Compile(schemaBaseURL + file)
			if err != nil {
				return nil, fmt.Errorf("could not compile schema %s: %w", file, err)
			}
			byFile[file] = schema
		}
		compiled[slice] = schema
	}
	return &sliceValidator{schemas: compiled}, nil
}

// validate проверяет сохранённый JSON среза.
func (v *sliceValidator) validate(slice string, payload []byte) error {
	schema, ok := v.schemas[slice]
	if !ok {
		return fmt.Errorf("no schema registered for slice %q", slice)
	}
	var doc interface{}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("slice %s is not valid JSON: %w", slice, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("slice %s failed schema validation: %w", slice, err)
	}
	return nil
}
