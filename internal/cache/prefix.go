package cache

import "fmt"

type Prefix string

const (
	// SessionStatus holds the last status reported for a session.
	SessionStatus Prefix = "session_status"
	// SessionLoginCode holds the current login code while a session waits to be scanned.
	SessionLoginCode Prefix = "session_login_code"
	// LastDispatch maps a destination number to its latest dispatch record ID.
	LastDispatch Prefix = "last_dispatch"
)

func (p Prefix) Key(id string) string {
	return fmt.Sprintf("%s:%s", p, id)
}
