package vm

// Stack is the operand stack. A zero Limit is unbounded.
type Stack struct {
	Data  []Value
	Limit int
}

func (s *Stack) Push(value Value) (ok bool) {
	if s.Full() {
		return
	}

	s.Data = append(s.Data, value)
	return true
}

func (s *Stack) Pop() (value Value, ok bool) {
	value, ok = s.Peek()
	if ok {
		s.Data = s.Data[:len(s.Data)-1]
	}
	return
}

func (s *Stack) Empty() bool {
	return len(s.Data) == 0
}

func (s *Stack) Full() bool {
	return s.Limit > 0 && len(s.Data) >= s.Limit
}

func (s *Stack) Depth() int {
	return len(s.Data)
}

func (s *Stack) Peek() (value Value, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[len(s.Data)-1], true
}

// Swap exchanges the top two entries.
func (s *Stack) Swap() (ok bool) {
	n := len(s.Data)
	if n < 2 {
		return
	}

	s.Data[n-1], s.Data[n-2] = s.Data[n-2], s.Data[n-1]
	return true
}

func (s *Stack) Reset() {
	if len(s.Data) > 0 {
		s.Data = s.Data[:0]
	}
}
