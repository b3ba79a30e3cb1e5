package tool

import "fmt"

// DuplicateToolError is returned when a contract name is registered twice.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool %q is already registered", e.Name)
}

// UnknownToolError is returned when resolving a name no contract was
// registered under.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Name)
}

// ValidationError describes why raw arguments were rejected before the
// handler ran. Reasons are field-level messages from schema validation.
type ValidationError struct {
	Tool    string
	Reasons []string
}

func (e *ValidationError) Error() string {
	if len(e.Reasons) == 0 {
		return fmt.Sprintf("invalid arguments for tool %q", e.Tool)
	}
	msg := e.Reasons[0]
	for _, r := range e.Reasons[1:] {
		msg += "; " + r
	}
	return msg
}
