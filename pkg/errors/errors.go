package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// CustomizedError carries a user-facing message key, an HTTP status,
// an application error code and the trace path the error travelled.
type CustomizedError struct {
	cause   error
	message string
	trace   []string
	wrap    error
	code    int
	appCode string
	data    map[string]interface{}
}

func New(trace, message string, err error) *CustomizedError {
	return &CustomizedError{
		cause:   err,
		message: message,
		trace:   []string{trace},
		code:    http.StatusInternalServerError,
	}
}

func Wrap(err error, trace, message string) *CustomizedError {
	ce := &CustomizedError{
		cause:   err,
		message: message,
		trace:   []string{trace},
		wrap:    err,
	}
	if income, ok := err.(*CustomizedError); ok {
		ce.code = income.code
		ce.appCode = income.appCode
	}
	return ce
}

// Trace appends a call-site marker, wrapping foreign errors on the way.
func Trace(trace string, err error) *CustomizedError {
	if ce, ok := err.(*CustomizedError); ok {
		ce.trace = append(ce.trace, trace)
		return ce
	}
	return Wrap(err, trace, err.Error())
}

func (e *CustomizedError) WithData(data map[string]interface{}) *CustomizedError {
	e.data = data
	return e
}

func (e *CustomizedError) Code(c int) *CustomizedError {
	e.code = c
	return e
}

func (e *CustomizedError) GetCode() int {
	return e.code
}

// AppCode sets the stable machine-readable error code reported in
// workflow results.
func (e *CustomizedError) AppCode(code string) *CustomizedError {
	e.appCode = code
	return e
}

func (e *CustomizedError) GetAppCode() string {
	return e.appCode
}

func (e *CustomizedError) Trace(trace string) *CustomizedError {
	e.trace = append(e.trace, trace)
	return e
}

func (e *CustomizedError) Message() string {
	if e.message == "" {
		return e.cause.Error()
	}
	return e.message
}

func (e *CustomizedError) Unwrap() error {
	return e.wrap
}

func (e *CustomizedError) Error() string {
	wrapped := `""`
	if ce, ok := e.wrap.(*CustomizedError); ok {
		wrapped = ce.Error()
	} else if e.wrap != nil {
		wrapped = fmt.Sprint("\"", e.wrap.Error(), "\"")
	}
	return fmt.Sprintf(`{"trace":"%s","code":%d,"app_code":"%s","msg":"%s","error":"%v","wrapped":%s}`,
		strings.Join(e.trace, "->"), e.code, e.appCode, e.message, e.cause, wrapped)
}

// AppCodeOf extracts the application error code from any error chain.
func AppCodeOf(err error) string {
	if ce, ok := err.(*CustomizedError); ok {
		return ce.appCode
	}
	return ""
}
