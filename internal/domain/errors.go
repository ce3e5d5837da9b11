package domain

import "fmt"

// ErrBlockedHost は宛先ブロックエラー.
type ErrBlockedHost struct {
	Host string
}

func (e *ErrBlockedHost) Error() string {
	return fmt.Sprintf("access to host %s is blocked", e.Host)
}
