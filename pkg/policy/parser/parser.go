// Package parser loads policy documents from YAML. Parsing is a pure
// transformation: read, decode, normalize, compile check logic. Structural
// and semantic validation live in pkg/policy/validator; Load runs both so
// callers get a fully validated document or an error.
package parser

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/luigisaetta/finops-with-oci-ai/pkg/expr"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/policy/ast"
	perrors "github.com/luigisaetta/finops-with-oci-ai/pkg/policy/errors"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/policy/validator"
)

// LoadFile reads, parses and validates one policy document from a file.
func LoadFile(path string) (*ast.PolicyDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file %q: %w", path, err)
	}
	doc, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.SourcePath = path
	return doc, nil
}

// Load parses and validates one policy document from raw YAML bytes.
func Load(data []byte) (*ast.PolicyDocument, error) {
	var doc ast.PolicyDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &perrors.SchemaError{Field: "document", Message: fmt.Sprintf("invalid YAML: %v", err)}
	}

	normalize(&doc)

	if err := validator.ValidateStructure(&doc); err != nil {
		return nil, err
	}

	if err := compilePrograms(&doc); err != nil {
		return nil, err
	}

	if err := validator.ValidateReferences(&doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

// normalize fills in defaults the schema leaves optional.
func normalize(doc *ast.PolicyDocument) {
	if doc.Timezone == "" {
		doc.Timezone = "UTC"
	}
	if len(doc.Scope.Include) == 0 {
		doc.Scope.Include = []string{"*"}
	}
	for i := range doc.Exemptions.Rules {
		if doc.Exemptions.Rules[i].Match == "" {
			doc.Exemptions.Rules[i].Match = ast.MatchAny
		}
	}
}

// compilePrograms parses every check's logic into an expression program.
// Syntax errors are reported as schema errors against the check.
func compilePrograms(doc *ast.PolicyDocument) error {
	errs := &perrors.List{}
	for _, check := range doc.Checks {
		if check.Evaluate.Logic == "" {
			continue // reported by structural validation
		}
		prog, err := expr.Parse(check.Evaluate.Logic)
		if err != nil {
			errs.Add(&perrors.SchemaError{
				PolicyID: doc.ID,
				Field:    fmt.Sprintf("checks[%s].evaluate.logic", check.ID),
				Message:  err.Error(),
			})
			continue
		}
		check.Program = prog
	}
	return errs.ToError()
}
