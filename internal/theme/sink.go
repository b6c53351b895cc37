package theme

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// CSSSink collects variables and attributes and renders them as a CSS
// rule for the document root.
type CSSSink struct {
	mu    sync.Mutex
	order []string
	vars  map[string]string
	attrs map[string]string
}

// NewCSSSink creates an empty CSSSink.
func NewCSSSink() *CSSSink {
	return &CSSSink{
		vars:  make(map[string]string),
		attrs: make(map[string]string),
	}
}

// SetVariable implements StyleSink.
func (s *CSSSink) SetVariable(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vars[name]; !ok {
		s.order = append(s.order, name)
	}
	s.vars[name] = value
}

// SetAttribute implements StyleSink.
func (s *CSSSink) SetAttribute(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs[name] = value
}

// Variable returns the current value of a custom property.
func (s *CSSSink) Variable(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vars[name]
	return v, ok
}

// Attribute returns the current value of an attribute.
func (s *CSSSink) Attribute(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.attrs[name]
	return v, ok
}

// Render returns the root rule, e.g.
//
//	:root[data-theme="dark"] {
//	  --background: ...;
//	}
func (s *CSSSink) Render() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	b.WriteString(":root")

	attrNames := make([]string, 0, len(s.attrs))
	for name := range s.attrs {
		attrNames = append(attrNames, name)
	}
	sort.Strings(attrNames)
	for _, name := range attrNames {
		fmt.Fprintf(&b, "[%s=%q]", name, s.attrs[name])
	}

	b.WriteString(" {\n")
	for _, name := range s.order {
		fmt.Fprintf(&b, "  %s: %s;\n", name, s.vars[name])
	}
	b.WriteString("}\n")
	return b.String()
}

// Stylesheet returns the root rule followed by the bundled base stylesheet.
func (s *CSSSink) Stylesheet() string {
	return s.Render() + "\n" + BaseStylesheet()
}
