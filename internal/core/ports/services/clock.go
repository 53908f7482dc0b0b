package services

import "time"

// Clock supplies the current UTC time. It is injected into every service that
// stamps timestamps so reset-period and posting behaviour can be tested
// against a fixed time.
type Clock interface {
	Now() time.Time
}
