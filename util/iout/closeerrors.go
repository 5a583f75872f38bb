package iout

import (
	"fmt"
	"strings"
)

// Errors returned by the closers, in close order.
type CloseErrors []error

// Nil if all errors are nil.
func joinCloseErrors(errs []error) error {
	var u CloseErrors
	for _, e := range errs {
		if e != nil {
			u = append(u, e)
		}
	}
	if len(u) == 0 {
		return nil
	}
	return u
}

func (ce CloseErrors) Error() string {
	if len(ce) == 1 {
		return ce[0].Error()
	}
	u := make([]string, 0, len(ce))
	for _, e := range ce {
		u = append(u, e.Error())
	}
	return fmt.Sprintf("close: %d errors: %s", len(ce), strings.Join(u, "; "))
}

func (ce CloseErrors) Unwrap() []error {
	return ce
}
