package fidji

import "strings"

// PathMatcher tracks the element nesting while scanning a token stream.
type PathMatcher struct {
	stack []string
}

// Push enters an element and returns the new current path.
func (m *PathMatcher) Push(name string) string {
	m.stack = append(m.stack, name)
	return m.Path()
}

// Pop leaves the innermost element. It reports false on an empty stack.
func (m *PathMatcher) Pop() (string, bool) {
	if len(m.stack) == 0 {
		return "", false
	}
	name := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return name, true
}

// Path returns the slash-joined ancestor chain from the document root.
func (m *PathMatcher) Path() string {
	return strings.Join(m.stack, "/")
}

// Depth returns the number of open elements.
func (m *PathMatcher) Depth() int {
	return len(m.stack)
}
