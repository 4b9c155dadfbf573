package script

import (
	"fmt"
	"strings"
)

// Role identifies the speaker of a transcript entry.
type Role string

const (
	RoleSystem    Role = "System"
	RoleUser      Role = "User"
	RoleAssistant Role = "Assistant"

	toolPrefix = "Tool:"
)

// ToolRole returns the role for output of the named tool.
func ToolRole(name string) Role {
	return Role(toolPrefix + " " + name)
}

// ParseRole validates s against the closed role set. Tool roles take the
// form "Tool: <name>"; a bare "Tool" is accepted as well.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	switch Role(s) {
	case RoleSystem, RoleUser, RoleAssistant:
		return Role(s), nil
	}
	if s == "Tool" {
		return Role(s), nil
	}
	if name, ok := strings.CutPrefix(s, toolPrefix); ok {
		name = strings.TrimSpace(name)
		if name == "" {
			return "", fmt.Errorf("tool role without a tool name: %q", s)
		}
		return ToolRole(name), nil
	}
	return "", fmt.Errorf("unknown role: %q", s)
}

// IsTool reports whether r is a tool role.
func (r Role) IsTool() bool {
	return r == "Tool" || strings.HasPrefix(string(r), toolPrefix)
}

// ToolName returns the tool name of a tool role, or "".
func (r Role) ToolName() string {
	name, ok := strings.CutPrefix(string(r), toolPrefix)
	if !ok {
		return ""
	}
	return strings.TrimSpace(name)
}

// Kind collapses tool roles to "Tool", for styling.
func (r Role) Kind() Role {
	if r.IsTool() {
		return "Tool"
	}
	return r
}

func (r Role) String() string {
	return string(r)
}
