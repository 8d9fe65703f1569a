// Package manifest parses plain-text dependency manifests in the
// requirements.txt format: one dependency specifier per line, optional
// version constraints, optional environment markers, and comment lines
// used as section headers.
//
// Collections imported from legacy processing bundles carry such a
// manifest describing the toolchain that produced them; paragraf parses
// it to record provenance and to diagnose reproducibility problems
// (duplicate pins, malformed constraints).
package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// Parse errors.
var (
	// ErrInvalidSpecifier indicates a line is not a valid dependency
	// specifier.
	ErrInvalidSpecifier = errors.New("invalid dependency specifier")

	// ErrInvalidConstraint indicates a version constraint uses an
	// unknown operator or a malformed version string.
	ErrInvalidConstraint = errors.New("invalid version constraint")

	// ErrInvalidMarker indicates an environment marker is malformed.
	ErrInvalidMarker = errors.New("invalid environment marker")
)

// Constraint is a single version constraint, e.g. ">= 1.0.0".
type Constraint struct {
	// Op is the comparison operator.
	Op string

	// Version is the version string the operator compares against.
	Version string
}

// String renders the constraint without spaces, e.g. ">=1.0.0".
func (c Constraint) String() string {
	return c.Op + c.Version
}

// Requirement is one parsed dependency specifier.
type Requirement struct {
	// Name is the package name as written.
	Name string

	// Extras lists the requested extras, e.g. "socks" from
	// "requests[socks]".
	Extras []string

	// Constraints lists the version constraints, in written order.
	// Empty for an unconstrained requirement.
	Constraints []Constraint

	// Marker is the environment marker after ";", trimmed, or "".
	Marker string

	// Section is the most recent comment header above the line, or "".
	Section string

	// Line is the 1-based line number in the manifest.
	Line int
}

// String renders the requirement as a specifier line.
func (r Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteByte('[')
		b.WriteString(strings.Join(r.Extras, ","))
		b.WriteByte(']')
	}
	for i, c := range r.Constraints {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(c.String())
	}
	if r.Marker != "" {
		b.WriteString("; ")
		b.WriteString(r.Marker)
	}
	return b.String()
}

// Manifest is a parsed dependency manifest.
type Manifest struct {
	// Path is the file the manifest was read from, or "".
	Path string

	// Requirements lists the parsed specifiers in file order.
	Requirements []Requirement

	// Sections lists the section headers in order of first appearance.
	Sections []string
}

// IssueKind classifies a validation finding.
type IssueKind string

// Validation issue kinds.
const (
	// IssueDuplicate marks a package named on more than one line.
	IssueDuplicate IssueKind = "duplicate"
)

// Issue is a validation finding on an otherwise parseable manifest.
type Issue struct {
	// Kind classifies the issue.
	Kind IssueKind

	// Name is the normalised package name involved.
	Name string

	// Lines lists the 1-based line numbers involved.
	Lines []int

	// Message is a human-readable description.
	Message string
}

var (
	nameRe    = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)`)
	extrasRe  = regexp.MustCompile(`^\[\s*([A-Za-z0-9._-]+(?:\s*,\s*[A-Za-z0-9._-]+)*)\s*\]`)
	opRe      = regexp.MustCompile(`^(===|==|!=|<=|>=|~=|<|>)`)
	versionRe = regexp.MustCompile(`^v?[0-9]+(?:\.[0-9]+)*(?:\.\*)?(?:[-._]?(?:a|b|c|rc|alpha|beta|pre|preview|post|dev)[0-9]*)*(?:\+[A-Za-z0-9.]+)?$`)
	normRe    = regexp.MustCompile(`[-_.]+`)
)

// NormalizeName lowercases a package name and collapses runs of
// "-", "_" and "." into a single "-", so Pillow, pillow and PIL_low
// spellings of the same distribution compare equal.
func NormalizeName(name string) string {
	return normRe.ReplaceAllString(strings.ToLower(name), "-")
}

// ParseLine parses a single dependency specifier line. The line must
// not be blank or a comment; Parse handles skipping those.
func ParseLine(line string) (Requirement, error) {
	req := Requirement{}

	s := stripInlineComment(line)
	s = strings.TrimSpace(s)
	if s == "" {
		return req, fmt.Errorf("%w: empty specifier", ErrInvalidSpecifier)
	}

	// Environment marker after ";".
	if i := strings.Index(s, ";"); i >= 0 {
		marker := strings.TrimSpace(s[i+1:])
		if marker == "" {
			return req, fmt.Errorf("%w: empty marker", ErrInvalidMarker)
		}
		if strings.Count(marker, "'")%2 != 0 || strings.Count(marker, `"`)%2 != 0 {
			return req, fmt.Errorf("%w: unbalanced quotes in %q", ErrInvalidMarker, marker)
		}
		req.Marker = marker
		s = strings.TrimSpace(s[:i])
	}

	m := nameRe.FindString(s)
	if m == "" {
		return req, fmt.Errorf("%w: no package name in %q", ErrInvalidSpecifier, line)
	}
	req.Name = m
	s = s[len(m):]

	if em := extrasRe.FindStringSubmatch(s); em != nil {
		for _, extra := range strings.Split(em[1], ",") {
			req.Extras = append(req.Extras, strings.TrimSpace(extra))
		}
		s = s[len(em[0]):]
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return req, nil
	}

	// Remaining text must be a comma-separated constraint list.
	for _, part := range strings.Split(s, ",") {
		c, err := parseConstraint(part)
		if err != nil {
			return req, err
		}
		req.Constraints = append(req.Constraints, c)
	}
	return req, nil
}

func parseConstraint(s string) (Constraint, error) {
	s = strings.TrimSpace(s)
	op := opRe.FindString(s)
	if op == "" {
		return Constraint{}, fmt.Errorf("%w: missing operator in %q", ErrInvalidConstraint, s)
	}
	version := strings.TrimSpace(s[len(op):])
	if !versionRe.MatchString(version) {
		return Constraint{}, fmt.Errorf("%w: bad version %q", ErrInvalidConstraint, version)
	}
	// Wildcard versions are only defined for (in)equality.
	if strings.HasSuffix(version, ".*") && op != "==" && op != "!=" {
		return Constraint{}, fmt.Errorf("%w: wildcard version with %q", ErrInvalidConstraint, op)
	}
	return Constraint{Op: op, Version: version}, nil
}

// stripInlineComment removes a trailing " # ..." comment. A "#" that
// starts the line is a section header and never reaches ParseLine.
func stripInlineComment(s string) string {
	for i := 1; i < len(s); i++ {
		if s[i] == '#' && (s[i-1] == ' ' || s[i-1] == '\t') {
			return s[:i]
		}
	}
	return s
}

// Parse reads a manifest. Comment lines become section headers for the
// requirements that follow them; blank lines are skipped. The first
// malformed specifier aborts with its line number.
func Parse(r io.Reader) (*Manifest, error) {
	m := &Manifest{}
	seenSection := map[string]bool{}
	section := ""

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			header := strings.TrimSpace(strings.TrimLeft(line, "#"))
			if header != "" {
				section = header
				if !seenSection[header] {
					seenSection[header] = true
					m.Sections = append(m.Sections, header)
				}
			}
			continue
		}
		req, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		req.Section = section
		req.Line = lineNo
		m.Requirements = append(m.Requirements, req)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return m, nil
}

// ParseFile reads and parses the manifest at path.
func ParseFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, err
	}
	m.Path = path
	return m, nil
}

// Validate checks a parsed manifest for structural problems. Today
// that is duplicate package names; the per-line syntax is already
// enforced by Parse.
func (m *Manifest) Validate() []Issue {
	var issues []Issue

	byName := map[string][]int{}
	order := []string{}
	for _, req := range m.Requirements {
		name := NormalizeName(req.Name)
		if len(byName[name]) == 0 {
			order = append(order, name)
		}
		byName[name] = append(byName[name], req.Line)
	}
	for _, name := range order {
		lines := byName[name]
		if len(lines) > 1 {
			issues = append(issues, Issue{
				Kind:    IssueDuplicate,
				Name:    name,
				Lines:   lines,
				Message: fmt.Sprintf("package %q appears on lines %s", name, joinInts(lines)),
			})
		}
	}
	return issues
}

// Find returns the requirement whose name normalises equal to name,
// or nil.
func (m *Manifest) Find(name string) *Requirement {
	want := NormalizeName(name)
	for i := range m.Requirements {
		if NormalizeName(m.Requirements[i].Name) == want {
			return &m.Requirements[i]
		}
	}
	return nil
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}
