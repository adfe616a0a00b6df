package tool

import (
	"encoding/json"
	"fmt"

	lanes "github.com/lanesdev/lanes"
)

// ErrToolNotFound is returned when a tool call references an unregistered tool.
type ErrToolNotFound struct {
	Name string
}

// Error returns a formatted error message including the tool name.
func (e *ErrToolNotFound) Error() string {
	return fmt.Sprintf("tool: not found: %s", e.Name)
}

// ErrToolExecution wraps errors from tool handler execution.
type ErrToolExecution struct {
	Name string
	Err  error
}

// Error returns a formatted error message including the tool name and cause.
func (e *ErrToolExecution) Error() string {
	return fmt.Sprintf("tool: %s execution failed: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *ErrToolExecution) Unwrap() error {
	return e.Err
}

// ErrToolAlreadyRegistered is returned when registering a tool with a duplicate name.
type ErrToolAlreadyRegistered struct {
	Name string
}

// Error returns a formatted error message including the duplicate tool name.
func (e *ErrToolAlreadyRegistered) Error() string {
	return fmt.Sprintf("tool: already registered: %s", e.Name)
}

// argumentError wraps a typed-handler unmarshal failure as a
// lanes.KindArgument error, recovering the offending field name from a
// *json.UnmarshalTypeError when one is available so callers can branch
// on the structured Subject rather than parsing the message.
func argumentError(toolName string, err error) error {
	subject := toolName
	if te, ok := err.(*json.UnmarshalTypeError); ok && te.Field != "" {
		subject = te.Field
	}
	return lanes.WrapSubjectError(lanes.KindArgument, "invalid arguments for tool "+toolName, subject, err)
}
