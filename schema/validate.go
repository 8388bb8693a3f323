package schema

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ValidationError is a single payload violation.
type ValidationError struct {
	// Path locates the offending value, e.g. "$.participants[1]".
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors collects every violation found in a payload.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	return strings.Join(lo.Map(e, func(v *ValidationError, _ int) string { return v.Error() }), "; ")
}

const resourceURL = "mem:///schema.json"

var printer = message.NewPrinter(language.English)

// compile turns serialized schema JSON into a reusable validator.
func compile(raw []byte) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(resourceURL, doc); err != nil {
		return nil, err
	}
	return c.Compile(resourceURL)
}

// validatePayload decodes raw JSON and checks it against a compiled schema.
func validatePayload(sch *jsonschema.Schema, payload []byte) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return ValidationErrors{{Path: "$", Message: fmt.Sprintf("invalid JSON: %v", err)}}
	}
	if dec.More() {
		return ValidationErrors{{Path: "$", Message: "invalid JSON: trailing data after value"}}
	}

	err := sch.Validate(value)
	if err == nil {
		return nil
	}
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return ValidationErrors{{Path: "$", Message: err.Error()}}
	}

	var errs ValidationErrors
	collect(verr, &errs)
	slices.SortStableFunc(errs, func(a, b *ValidationError) int { return comparePaths(a.Path, b.Path) })
	return errs
}

// collect flattens the leaves of a validation error tree. Missing and
// unexpected properties are reported at the property itself.
func collect(e *jsonschema.ValidationError, errs *ValidationErrors) {
	if len(e.Causes) > 0 {
		for _, c := range e.Causes {
			collect(c, errs)
		}
		return
	}

	switch k := e.ErrorKind.(type) {
	case *kind.Required:
		for _, name := range k.Missing {
			*errs = append(*errs, &ValidationError{
				Path:    jsonPath(append(slices.Clone(e.InstanceLocation), name)),
				Message: "required field is missing",
			})
		}
	case *kind.AdditionalProperties:
		for _, name := range k.Properties {
			*errs = append(*errs, &ValidationError{
				Path:    jsonPath(append(slices.Clone(e.InstanceLocation), name)),
				Message: "unknown field",
			})
		}
	default:
		*errs = append(*errs, &ValidationError{
			Path:    jsonPath(e.InstanceLocation),
			Message: e.ErrorKind.LocalizedString(printer),
		})
	}
}

// jsonPath renders a JSON pointer token list as "$.a.b[1]".
func jsonPath(tokens []string) string {
	var b strings.Builder
	b.WriteByte('$')
	for _, t := range tokens {
		if _, err := strconv.Atoi(t); err == nil {
			b.WriteString("[" + t + "]")
			continue
		}
		b.WriteString("." + t)
	}
	return b.String()
}

// comparePaths orders paths segment by segment, numerically for indexes.
func comparePaths(a, b string) int {
	as, bs := splitPath(a), splitPath(b)
	for i := range min(len(as), len(bs)) {
		ai, aerr := strconv.Atoi(as[i])
		bi, berr := strconv.Atoi(bs[i])
		var c int
		if aerr == nil && berr == nil {
			c = cmp.Compare(ai, bi)
		} else {
			c = strings.Compare(as[i], bs[i])
		}
		if c != 0 {
			return c
		}
	}
	return cmp.Compare(len(as), len(bs))
}

func splitPath(p string) []string {
	p = strings.NewReplacer("[", ".", "]", "").Replace(strings.TrimPrefix(p, "$"))
	return strings.FieldsFunc(p, func(r rune) bool { return r == '.' })
}
