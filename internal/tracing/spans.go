package tracing

// Span attribute keys.
const (
	AttrSessionID = "session.id"

	AttrKey      = "key.code"
	AttrSequence = "key.sequence"

	AttrModeBefore = "mode.before"
	AttrModeAfter  = "mode.after"

	AttrCommandID = "command.id"
	AttrOperation = "command.operation"

	// AttrMatch is one of MatchExact, MatchPrefix, MatchDeadEnd, MatchEscape,
	// MatchPassThrough, MatchSearch.
	AttrMatch   = "dispatch.match"
	AttrOutcome = "dispatch.outcome"

	AttrPattern = "search.pattern"

	AttrRegister     = "register.name"
	AttrRegisterLine = "register.line"

	AttrErrorMessage = "error.message"
)

// Values of AttrMatch.
const (
	MatchExact       = "exact"
	MatchPrefix      = "prefix"
	MatchDeadEnd     = "dead_end"
	MatchEscape      = "escape"
	MatchPassThrough = "pass_through"
	MatchSearch      = "search"
)

// Span names.
const (
	SpanKeyPress = "interpreter.key_press"
	SpanAttach   = "interpreter.attach"
)

// Span event names.
const (
	EventModeChanged     = "mode.changed"
	EventRegisterWritten = "register.written"
	EventOperationFailed = "operation.failed"
	EventSequenceAborted = "sequence.aborted"
)
