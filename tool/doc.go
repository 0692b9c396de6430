// Package tool defines the handler signature and dispatch surface for
// journal tools.
//
// A tool is an ordinary function taking named arguments; cross-cutting
// concerns (admission control, authentication, observability) are applied as
// middleware composed around the handler. The package is protocol-agnostic
// and can be driven by any RPC or tool-calling transport.
package tool
