// Package observe provides telemetry for the journal tool server:
// structured JSON logging, OpenTelemetry traces and metrics, and a tool
// middleware that records all three for every dispatched call.
//
// Everything is assembled through an Observer built from one Config.
// Disabled subsystems degrade to no-ops, so callers wire the middleware
// unconditionally and turn telemetry on per deployment.
//
// Log fields carrying credentials (auth_token, password, and friends) are
// redacted before serialization; tokens never reach the log stream even
// when a handler logs its raw arguments.
package observe
