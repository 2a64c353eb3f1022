package scene

import (
	"fmt"
	"math"
)

// ValidationSeverity indicates whether a validation finding blocks evaluation
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks evaluation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Entity   string             // entity name, empty if scene-level
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Entity, e.Message)
}

// ValidationResult bundles blocking errors and advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether no blocking errors were found.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate checks the scene and separates errors from warnings. It never
// mutates the scene.
func Validate(s *Scene) ValidationResult {
	var findings []ValidationError
	findings = append(findings, validateNames(s)...)
	for _, e := range s.entities {
		switch d := e.Data.(type) {
		case IndexData:
			findings = append(findings, validateIndex(e.Name, d)...)
		case SelectionData:
			if len(d.Points) == 0 {
				findings = append(findings, warn(e.Name, "selection is empty"))
			}
		case SolidData:
			findings = append(findings, validateShape(e.Name, d.Shape)...)
		default:
			findings = append(findings, fail(e.Name, fmt.Sprintf("%s entity has no data", e.Kind)))
		}
	}

	var result ValidationResult
	for _, f := range findings {
		if f.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, f)
		} else {
			result.Errors = append(result.Errors, f)
		}
	}
	return result
}

// validateNames checks that every entity is named and no name repeats.
func validateNames(s *Scene) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)
	for i, e := range s.entities {
		if e.Name == "" {
			errs = append(errs, fail("", fmt.Sprintf("%s entity #%d has no name", e.Kind, i)))
			continue
		}
		if seen[e.Name] {
			errs = append(errs, fail(e.Name, "name declared more than once"))
		}
		seen[e.Name] = true
	}
	return errs
}

func validateIndex(name string, d IndexData) []ValidationError {
	if d.Tree == nil {
		return []ValidationError{fail(name, "index has no tree")}
	}
	var errs []ValidationError
	if !d.Tree.Bounds().IsValid() {
		errs = append(errs, fail(name, fmt.Sprintf("bounds %s are inverted", d.Tree.Bounds())))
	}
	if d.Tree.CountPoints() == 0 {
		errs = append(errs, warn(name, "index holds no points"))
	}
	return errs
}

func validateShape(name string, sh *Shape) []ValidationError {
	if sh == nil {
		return []ValidationError{fail(name, "solid has no shape")}
	}
	var errs []ValidationError
	positive := func(what string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			errs = append(errs, fail(name, fmt.Sprintf("%s %s must be positive, got %g", sh.Kind, what, v)))
		}
	}
	switch sh.Kind {
	case ShapeBox:
		positive("x", sh.Size.X)
		positive("y", sh.Size.Y)
		positive("z", sh.Size.Z)
	case ShapeSphere:
		positive("radius", sh.Radius)
	case ShapeCylinder:
		positive("height", sh.Height)
		positive("radius", sh.Radius)
	default:
		if len(sh.Operands) < 2 {
			errs = append(errs, fail(name, fmt.Sprintf("%s needs at least two operands, got %d", sh.Kind, len(sh.Operands))))
		}
		for _, op := range sh.Operands {
			errs = append(errs, validateShape(name, op)...)
		}
	}
	return errs
}

func fail(name, msg string) ValidationError {
	return ValidationError{Entity: name, Message: msg, Severity: SeverityError}
}

func warn(name, msg string) ValidationError {
	return ValidationError{Entity: name, Message: msg, Severity: SeverityWarning}
}
