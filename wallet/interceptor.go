package wallet

import "errors"

// ErrIntercepted is returned when an Interceptor took ownership of a failure.
// Callers should stop processing without reporting anything.
var ErrIntercepted = errors.New("wallet error intercepted")

// Interceptor gets the first look at every wallet failure. Returning true
// marks the failure as handled.
type Interceptor interface {
	Process(err *Error) bool
}

// InterceptorFunc adapts a function into an Interceptor.
type InterceptorFunc func(err *Error) bool

func (f InterceptorFunc) Process(err *Error) bool { return f(err) }

// nopInterceptor never intercepts.
type nopInterceptor struct{}

func (nopInterceptor) Process(*Error) bool { return false }
