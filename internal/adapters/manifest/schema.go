package manifest

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/zerr"
)

//go:embed schema/*.schema.json
var schemaFS embed.FS

const (
	lockfileSchema = "schema/lockfile.schema.json"
	snapshotSchema = "schema/snapshot.schema.json"
)

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

func schemas() (map[string]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		out := make(map[string]*jsonschema.Schema, 2)
		for _, name := range []string{lockfileSchema, snapshotSchema} {
			data, err := schemaFS.ReadFile(name)
			if err != nil {
				compileErr = zerr.With(zerr.Wrap(err, "failed to read embedded schema"), "schema", name)
				return
			}
			if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
				compileErr = zerr.With(zerr.Wrap(err, "failed to add schema resource"), "schema", name)
				return
			}
			s, err := compiler.Compile(name)
			if err != nil {
				compileErr = zerr.With(zerr.Wrap(err, "failed to compile schema"), "schema", name)
				return
			}
			out[name] = s
		}
		compiled = out
	})
	return compiled, compileErr
}

// validate decodes data generically and checks it against the named schema.
// Any failure is reported as ErrInvalidManifest with the offending path and details.
func validate(schemaName, p string, data []byte) error {
	all, err := schemas()
	if err != nil {
		return err
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return invalidManifest(p, []string{err.Error()})
	}

	if err := all[schemaName].Validate(instance); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return invalidManifest(p, validationDetails(ve))
		}
		return invalidManifest(p, []string{err.Error()})
	}
	return nil
}

func validationDetails(ve *jsonschema.ValidationError) []string {
	out := ve.BasicOutput()
	details := make([]string, 0, len(out.Errors))
	for _, e := range out.Errors {
		if e.Error == "" {
			continue
		}
		loc := e.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		details = append(details, loc+": "+e.Error)
	}
	if len(details) == 0 {
		details = append(details, ve.Error())
	}
	return details
}

func invalidManifest(p string, details []string) error {
	err := zerr.Wrap(domain.ErrInvalidManifest, "manifest failed validation")
	err = zerr.With(err, "path", p)
	return zerr.With(err, "details", details)
}
