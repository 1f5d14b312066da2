// Package response classifies inbound API sentences.
//
// The first word of a response sentence determines its kind:
//
//	!re     Reply  - one result item, more may follow
//	!done   Done   - command finished, terminal for the command
//	!trap   Trap   - command failed, terminal for the command
//	!fatal  Fatal  - connection-level failure, terminal for the connection
//
// The ".tag=N" word correlates a response with the command that caused it
// and is stripped from the exposed attributes. Fatal responses carry no tag.
package response
