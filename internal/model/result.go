package model

// Result is the envelope handed across the API boundary: either items or
// an error message, never both.
type Result[T any] struct {
	Count int    `json:"count"`
	Items []T    `json:"items"`
	Error string `json:"error,omitempty"`
}

func NewResult[T any](items []T, err error) Result[T] {
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "unknown error"
		}
		return Result[T]{Items: []T{}, Error: msg}
	}
	if items == nil {
		items = []T{}
	}
	return Result[T]{Count: len(items), Items: items}
}

// OK reports whether the result carries items rather than an error.
func (r Result[T]) OK() bool {
	return r.Error == ""
}
