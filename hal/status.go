package hal

import "errors"

// Status is the result of a HAL call.
//
// A non-OK Status is an error. The numeric value is the code handed to the
// device driver, where 0 means success.
type Status int32

const (
	StatusOK Status = iota
	StatusError
	StatusBusy
	StatusTimeout
)

func (s Status) Error() string {
	switch s {
	case StatusOK:
		return "hal: ok"
	case StatusError:
		return "hal: error"
	case StatusBusy:
		return "hal: busy"
	case StatusTimeout:
		return "hal: timeout"
	default:
		return "hal: unknown status"
	}
}

// StatusOf returns the driver-facing status code of err.
//
// nil maps to 0. Errors that do not wrap a Status map to StatusError.
func StatusOf(err error) int32 {
	if err == nil {
		return int32(StatusOK)
	}
	var s Status
	if errors.As(err, &s) {
		return int32(s)
	}
	return int32(StatusError)
}
