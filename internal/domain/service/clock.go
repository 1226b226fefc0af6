package service

import "time"

// Clock abstracts wall-clock reads so cache TTL and permission cooldown
// logic can be tested deterministically.
type Clock interface {
	Now() time.Time
}
