// SPDX-License-Identifier: MIT
package chijson

import "errors"

var (
	// ErrUnknownNodeType is returned when a node's "type" field names a
	// module/name pair chijson cannot resolve to any NodeType.
	ErrUnknownNodeType = errors.New("chijson: unknown node type")
	// ErrUnknownGraphKind is returned for a "graphs" entry whose "type"
	// field is not "function" (the only kind spec §6 defines).
	ErrUnknownGraphKind = errors.New("chijson: unknown graph kind")
	// ErrMalformedTypeRef is returned for a `{<field>: "<mod>:<type>"}`
	// entry that does not hold exactly one key.
	ErrMalformedTypeRef = errors.New("chijson: malformed type reference")
	// ErrMalformedEndpoint is returned for a connection endpoint that is
	// not a 2-element [uuid, slot] array.
	ErrMalformedEndpoint = errors.New("chijson: malformed connection endpoint")
)
