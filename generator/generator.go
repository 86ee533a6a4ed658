/**
 * Copyright 2024 MaxPoint Interactive, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


// Package generator writes Go source holding the field names of Avro record
// schemas, so pipelines can refer to fields by identifier instead of by
// string literal.
package generator

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	gengen "github.com/actgardner/gogen-avro/v10/generator"
	"github.com/actgardner/gogen-avro/v10/parser"
	"github.com/actgardner/gogen-avro/v10/resolver"
	"github.com/actgardner/gogen-avro/v10/schema"
)

// DefaultPackage names the package of records without a namespace
const DefaultPackage = "fields"

var fieldsTemplate = template.Must(template.New("fields").Parse(`
// {{.Type}} holds the field names of the {{.FullName}} record.
var {{.Type}} = struct {
{{- range .Fields}}
	{{.GoName}} string
{{- end}}
}{
{{- range .Fields}}
	{{.GoName}}: {{printf "%q" .Name}},
{{- end}}
}

// {{.Names}} lists the field names of {{.Record}} in declaration order.
var {{.Names}} = []string{
{{- range .Fields}}
	{{printf "%q" .Name}},
{{- end}}
}
`))

type templateData struct {
	Type     string
	Names    string
	Record   string
	FullName string
	Fields   []*schema.Field
}

// FieldsTypeName returns the name of the variable generated for a record
func FieldsTypeName(name string) string {
	return name + "Fields"
}

// PackageName returns the Go package name of the files generated for a
// namespace.
func PackageName(namespace string) string {
	if namespace == "" {
		return DefaultPackage
	}
	return strings.ToLower(namespace[strings.LastIndex(namespace, ".")+1:])
}

// Destination returns the file generated for a record below outputRoot
func Destination(name, namespace, outputRoot string) string {
	dir := outputRoot
	if namespace != "" {
		dir = filepath.Join(outputRoot, filepath.FromSlash(strings.ReplaceAll(namespace, ".", "/")))
	}
	return filepath.Join(dir, FieldsTypeName(name)+".go")
}

// Option configures a Generator
type Option func(*Generator)

// WithLogger sets the logger reporting generated files
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// Generator renders field name files for record schemas
type Generator struct {
	logger *slog.Logger
}

// New returns a Generator
func New(opts ...Option) *Generator {
	g := &Generator{logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Parse reads a schema whose root type is a record
func Parse(data []byte) (*schema.RecordDefinition, error) {
	ns := parser.NewNamespace(false)
	sType, err := ns.TypeForSchema(data)
	if err != nil {
		return nil, err
	}
	for _, def := range ns.Roots {
		if err := resolver.ResolveDefinition(def, ns.Definitions); err != nil {
			return nil, err
		}
	}
	ref, ok := sType.(*schema.Reference)
	if !ok {
		return nil, fmt.Errorf("schema root must be a record, got %s", sType.Name())
	}
	record, ok := ref.Def.(*schema.RecordDefinition)
	if !ok {
		return nil, fmt.Errorf("schema root must be a record, got %s", ref.TypeName)
	}
	return record, nil
}

// Render returns the declarations generated for record, without package
// clause.
func Render(record *schema.RecordDefinition) (string, error) {
	name := record.AvroName()
	seen := make(map[string]string)
	for _, f := range record.Fields() {
		if other, ok := seen[f.GoName()]; ok {
			return "", fmt.Errorf("fields %s and %s of %s both map to %s", other, f.Name(), name, f.GoName())
		}
		seen[f.GoName()] = f.Name()
	}

	var buf bytes.Buffer
	err := fieldsTemplate.Execute(&buf, templateData{
		Type:     FieldsTypeName(name.Name),
		Names:    name.Name + "FieldNames",
		Record:   name.Name,
		FullName: name.String(),
		Fields:   record.Fields(),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Generate writes the field name file of record below outputRoot and
// returns its path. A partially written file is removed on failure.
func (g *Generator) Generate(record *schema.RecordDefinition, source, outputRoot string) (dest string, err error) {
	name := record.AvroName()
	dest = Destination(name.Name, name.Namespace, outputRoot)
	defer func() {
		if err != nil {
			os.Remove(dest)
		}
	}()

	body, err := Render(record)
	if err != nil {
		return dest, err
	}
	if err = os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return dest, err
	}

	header := "// Code generated by avro-fields. DO NOT EDIT.\n"
	if source != "" {
		header = fmt.Sprintf("// Code generated by avro-fields from %s. DO NOT EDIT.\n", filepath.ToSlash(source))
	}
	pkg := gengen.NewPackage(PackageName(name.Namespace), header)
	pkg.AddFile(filepath.Base(dest), body)
	if err = pkg.WriteFiles(filepath.Dir(dest)); err != nil {
		return dest, err
	}

	g.logger.Info("generated fields", "record", name.String(), "file", dest)
	return dest, nil
}

// CompileFile generates the field name file of the schema stored at
// filename, relative to sourceDir, below outputDir.
func (g *Generator) CompileFile(filename, sourceDir, outputDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(sourceDir, filename))
	if err != nil {
		return "", err
	}
	record, err := Parse(data)
	if err != nil {
		return "", err
	}
	return g.Generate(record, filename, outputDir)
}
