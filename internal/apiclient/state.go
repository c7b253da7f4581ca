package apiclient

// State — состояние логического запроса.
//
//	INITIAL -> SENT -> (SUCCESS | AUTH_FAILED)
//	AUTH_FAILED -> REFRESHING -> (RETRY_SENT -> SUCCESS | FAILURE) | TERMINAL_FAILURE
//
// REFRESHING не повторяется для одного дескриптора (флаг retried).
type State int

const (
	StateInitial State = iota
	StateSent
	StateAuthFailed
	StateRefreshing
	StateRetrySent
	StateSuccess
	StateFailure
	StateTerminalFailure
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateSent:
		return "sent"
	case StateAuthFailed:
		return "auth_failed"
	case StateRefreshing:
		return "refreshing"
	case StateRetrySent:
		return "retry_sent"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	case StateTerminalFailure:
		return "terminal_failure"
	default:
		return "unknown"
	}
}

// Terminal — из состояния нет переходов.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailure || s == StateTerminalFailure
}
