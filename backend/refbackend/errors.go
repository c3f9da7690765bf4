// SPDX-License-Identifier: MIT
package refbackend

import "errors"

// Sentinel errors for refbackend operations.
var (
	// ErrVerifyFailed indicates Module.Verify found a structural problem
	// (a block with no terminator, a call to an undeclared function).
	ErrVerifyFailed = errors.New("refbackend: module failed verification")

	// ErrUnknownFunction indicates Engine.RunMain was asked to execute a
	// function the module does not define.
	ErrUnknownFunction = errors.New("refbackend: unknown function")

	// ErrNoTerminator indicates control flow reached a block with no
	// terminator instruction during execution.
	ErrNoTerminator = errors.New("refbackend: block has no terminator")

	// ErrBadBitcode indicates ParseBitcode could not decode its input.
	ErrBadBitcode = errors.New("refbackend: malformed bitcode")

	// ErrUnknownIntrinsic indicates a call reached a declared-but-
	// undefined function this interpreter does not recognize as an
	// intrinsic.
	ErrUnknownIntrinsic = errors.New("refbackend: unknown intrinsic function")
)
