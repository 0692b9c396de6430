// Package journal wires the server's tool surface: authentication tools
// backed by the session manager, and manuscript, review, editorial, and
// admin tools that delegate to the document backend.
//
// Handlers here are deliberately thin. They validate inputs, forward one
// backend call, and reshape the result; manuscript workflow rules live on
// the backend. Access control and rate limiting are not implemented in
// the handlers either: RegisterAll attaches the guard and limiter
// middleware per tool, with admission checked before authentication so a
// flood of bad tokens cannot bypass the limiter.
package journal
