package pump

import "sync/atomic"

// errorSlot holds at most one error. The first set wins; later sets are
// ignored. Reads may happen at any time from any goroutine.
type errorSlot struct {
	v atomic.Pointer[error]
}

// set stores err if the slot is empty and reports whether it did.
func (s *errorSlot) set(err error) bool {
	if err == nil {
		return false
	}

	return s.v.CompareAndSwap(nil, &err)
}

// get returns the stored error, or nil.
func (s *errorSlot) get() error {
	if p := s.v.Load(); p != nil {
		return *p
	}

	return nil
}
