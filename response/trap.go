package response

// TrapCategory is the numeric failure class attached to some traps via the
// "=category=" attribute.
type TrapCategory uint8

const (
	TrapMissingItemOrCommand TrapCategory = iota
	TrapArgumentValueFailure
	TrapExecutionInterrupted
	TrapScriptingFailure
	TrapGeneralFailure
	TrapAPIFailure
	TrapTTYFailure
	TrapReturnValue
)

// String returns the human readable name of the category.
func (c TrapCategory) String() string {
	switch c {
	case TrapMissingItemOrCommand:
		return "missing item or command"
	case TrapArgumentValueFailure:
		return "argument value failure"
	case TrapExecutionInterrupted:
		return "command execution interrupted"
	case TrapScriptingFailure:
		return "scripting failure"
	case TrapGeneralFailure:
		return "general failure"
	case TrapAPIFailure:
		return "API failure"
	case TrapTTYFailure:
		return "TTY failure"
	case TrapReturnValue:
		return "return value"
	default:
		return "unknown"
	}
}

func parseTrapCategory(s string) (TrapCategory, error) {
	if len(s) != 1 || s[0] < '0' || s[0] > '7' {
		return 0, &ProtocolError{Detail: "trap category out of range: " + s}
	}
	return TrapCategory(s[0] - '0'), nil
}
