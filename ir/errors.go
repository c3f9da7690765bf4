// SPDX-License-Identifier: MIT
package ir

import "errors"

var (
	// ErrModuleNotFound is returned by Context.Module for an unknown path.
	ErrModuleNotFound = errors.New("ir: module not found")
	// ErrModuleExists is returned by Context.AddModule for a path
	// already registered.
	ErrModuleExists = errors.New("ir: module already exists")
	// ErrNodeNotFound is returned when a connection names an unknown
	// NodeInstance ID.
	ErrNodeNotFound = errors.New("ir: node not found")
	// ErrPortNotFound is returned when a connection names a port index
	// out of range for its NodeType.
	ErrPortNotFound = errors.New("ir: port not found")
	// ErrTypeMismatch is returned when a data connection's two ports
	// disagree on DataType.
	ErrTypeMismatch = errors.New("ir: data type mismatch")
	// ErrFieldNotFound is returned by GraphStruct.Field for an unknown
	// field name.
	ErrFieldNotFound = errors.New("ir: struct field not found")
	// ErrInvalidModulePath is returned by Context.AddModule when a
	// module's Path fails golang.org/x/mod/module's path validation.
	ErrInvalidModulePath = errors.New("ir: invalid module path")
)
