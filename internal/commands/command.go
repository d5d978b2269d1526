// Package commands holds the validated inputs of every mutating operation.
// Validate runs before any storage access and reports only validation errors.
package commands

type Command interface {
	CommandType() string
	Validate() error
}
