package shader

import (
	"fmt"
	"strings"
)

// maxIncludeDepth bounds nested includes so a cycle fails instead of recursing forever.
const maxIncludeDepth = 8

// PreProcessor expands //@skygen:include annotations in WGSL source using a registry of named
// fragments. Included fragments may include others; each fragment is emitted at most once.
type PreProcessor interface {
	// Process returns source with every include annotation replaced by the fragment it names.
	//
	// Parameters:
	//   - source: WGSL source containing annotations
	//
	// Returns:
	//   - string: the expanded WGSL source
	//   - error: an error if an annotation is malformed or names an unknown fragment
	Process(source string) (string, error)
}

type preProcessor struct {
	fragments map[string]string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor over the given fragment registry.
//
// Parameters:
//   - fragments: fragment name to WGSL source
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(fragments map[string]string) PreProcessor {
	return &preProcessor{fragments: fragments}
}

func (p *preProcessor) Process(source string) (string, error) {
	var out []string
	if err := p.expand(source, map[string]bool{}, 0, &out); err != nil {
		return "", err
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) expand(source string, seen map[string]bool, depth int, out *[]string) error {
	if depth > maxIncludeDepth {
		return fmt.Errorf("includes nested deeper than %d", maxIncludeDepth)
	}
	for i, line := range strings.Split(source, "\n") {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return err
		}
		if a == nil {
			*out = append(*out, line)
			continue
		}
		name := a.args[0]
		if seen[name] {
			continue
		}
		fragment, ok := p.fragments[name]
		if !ok {
			return fmt.Errorf("line %d: unknown include %q", a.line, name)
		}
		seen[name] = true
		if err := p.expand(fragment, seen, depth+1, out); err != nil {
			return fmt.Errorf("include %q: %w", name, err)
		}
	}
	return nil
}
