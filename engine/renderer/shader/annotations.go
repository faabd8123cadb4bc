// annotations.go defines the single-line WGSL comment annotations understood by the shader
// pre-processor. An annotation is a comment line starting with //@skygen: followed by a directive
// and its arguments.
package shader

import (
	"fmt"
	"strings"
)

// annotationPrefix marks a pre-processor directive inside a WGSL comment line.
const annotationPrefix = "//@skygen:"

// directive names the action an annotation asks for.
type directive string

const (
	// directiveInclude replaces the line with the source of a registered fragment.
	//
	// Syntax: //@skygen:include <fragment>
	directiveInclude directive = "include"
)

// annotation is a parsed directive line.
type annotation struct {
	directive directive
	args      []string
	line      int
}

// parseAnnotation parses line as an annotation. It returns nil, nil for ordinary source lines.
func parseAnnotation(line string, lineNum int) (*annotation, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), annotationPrefix)
	if !ok {
		return nil, nil
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return nil, fmt.Errorf("line %d: empty annotation", lineNum)
	}
	a := &annotation{directive: directive(fields[0]), args: fields[1:], line: lineNum}
	switch a.directive {
	case directiveInclude:
		if len(a.args) != 1 {
			return nil, fmt.Errorf("line %d: include takes exactly one argument, got %d", lineNum, len(a.args))
		}
	default:
		return nil, fmt.Errorf("line %d: unknown annotation %q", lineNum, a.directive)
	}
	return a, nil
}
