package main

const (
	exitMismatch = 1
	exitUsage    = 2
	exitIO       = 3
)

type exitCodeError struct {
	code  int
	msg   string
	quiet bool
	err   error
}

func (e *exitCodeError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *exitCodeError) Unwrap() error {
	return e.err
}

func (e *exitCodeError) ExitCode() int {
	return e.code
}

func (e *exitCodeError) Quiet() bool {
	return e.quiet
}

func usageError(msg string, err error) error {
	return &exitCodeError{code: exitUsage, msg: msg, err: err}
}

func ioError(msg string, err error) error {
	return &exitCodeError{code: exitIO, msg: msg, err: err}
}
