package resize

// Slot holds at most one live State. It is the only way to create one, so
// two drags can never hold the document at the same time.
type Slot struct {
	host      Host
	active    *State
	releasing bool
}

// NewSlot returns an empty slot borrowing from host.
func NewSlot(host Host) *Slot {
	return &Slot{host: host}
}

// Begin starts a drag. A drag that is still live is released first, and a
// failure to release it aborts the start. A failed acquisition returns an
// *AcquireError and leaves the slot empty.
func (s *Slot) Begin(p Params, cb Callbacks) (*State, error) {
	if err := s.End(); err != nil {
		return nil, err
	}
	st, err := acquire(s.host, p, cb)
	if err != nil {
		return nil, err
	}
	s.active = st
	return st, nil
}

// End releases the live drag, if any.
func (s *Slot) End() error {
	st := s.active
	if st == nil {
		return nil
	}
	s.active = nil
	s.releasing = true
	defer func() { s.releasing = false }()
	return st.Release()
}

// Active returns the live drag, or nil.
func (s *Slot) Active() *State { return s.active }

// Releasing reports whether End is running. Events raised by the release
// itself see true.
func (s *Slot) Releasing() bool { return s.releasing }
