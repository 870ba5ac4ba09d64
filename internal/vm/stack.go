package vm

import (
	"strconv"
	"strings"
)

// Stack is a LIFO backed by a slice.
type Stack[T any] struct {
	items []T
}

func (s *Stack[T]) Push(v T) { s.items = append(s.items, v) }

// Pop removes the top element. ok is false on an empty stack.
func (s *Stack[T]) Pop() (v T, ok bool) {
	n := len(s.items)
	if n == 0 {
		return v, false
	}
	v = s.items[n-1]
	var zero T
	s.items[n-1] = zero
	s.items = s.items[:n-1]
	return v, true
}

func (s *Stack[T]) Peek() (v T, ok bool) {
	if len(s.items) == 0 {
		return v, false
	}
	return s.items[len(s.items)-1], true
}

// PeekAt returns the element depth positions below the top.
func (s *Stack[T]) PeekAt(depth int) (v T, ok bool) {
	i := len(s.items) - 1 - depth
	if depth < 0 || i < 0 {
		return v, false
	}
	return s.items[i], true
}

func (s *Stack[T]) Len() int { return len(s.items) }

func (s *Stack[T]) IsEmpty() bool { return len(s.items) == 0 }

func (s *Stack[T]) Clear() {
	clear(s.items)
	s.items = s.items[:0]
}

// Items returns a bottom-up copy.
func (s *Stack[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Frame is one active invocation. IP is the offset of the instruction being
// executed and is -1 until the first instruction (and for natives).
type Frame struct {
	Function string
	IP       int
}

func (f Frame) String() string {
	if f.IP < 0 {
		return f.Function
	}
	return f.Function + ":" + strconv.Itoa(f.IP)
}

// Unwinder tracks the call stack. Frames of a failed invocation stay on it
// so the backtrace can be printed after the error has propagated.
type Unwinder struct {
	frames Stack[Frame]
}

func (u *Unwinder) push(c *Callable) {
	u.frames.Push(Frame{Function: c.FullName(), IP: -1})
}

func (u *Unwinder) setIP(ip int) {
	if n := len(u.frames.items); n > 0 {
		u.frames.items[n-1].IP = ip
	}
}

func (u *Unwinder) pop() { u.frames.Pop() }

func (u *Unwinder) Len() int { return u.frames.Len() }

func (u *Unwinder) Reset() { u.frames.Clear() }

// Frames returns the call stack innermost first.
func (u *Unwinder) Frames() []Frame {
	n := u.frames.Len()
	out := make([]Frame, n)
	for i := 0; i < n; i++ {
		out[i], _ = u.frames.PeekAt(i)
	}
	return out
}

// String renders one "<function>:<ip>" line per frame, innermost first.
func (u *Unwinder) String() string {
	frames := u.Frames()
	lines := make([]string, len(frames))
	for i, f := range frames {
		lines[i] = f.String()
	}
	return strings.Join(lines, "\n")
}
