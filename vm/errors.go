package vm

import "fmt"

// ErrorKind is a calculator condition as reported on the display. The
// numbering follows the device's message table. ErrorKind implements
// error so handlers can hand it straight to Go callers.
type ErrorKind int

const (
	ErrNone               ErrorKind = 0
	ErrAlphaDataInvalid   ErrorKind = 1
	ErrOutOfRange         ErrorKind = 2
	ErrDivideBy0          ErrorKind = 3
	ErrInvalidType        ErrorKind = 4
	ErrInvalidData        ErrorKind = 5
	ErrNonexistent        ErrorKind = 6
	ErrDimensionError     ErrorKind = 7
	ErrTooFewArguments    ErrorKind = 8
	ErrSizeError          ErrorKind = 9
	ErrSingularMatrix     ErrorKind = 26
	ErrInterrupted        ErrorKind = 30
	ErrSuspended          ErrorKind = 32
	ErrInsufficientMemory ErrorKind = 34
	ErrNotYetImplemented  ErrorKind = 35
	ErrInternalError      ErrorKind = 36
	ErrInvalidOpcode      ErrorKind = 40
	ErrBusy               ErrorKind = 41
)

var errorText = map[ErrorKind]string{
	ErrNone:               "",
	ErrAlphaDataInvalid:   "Alpha Data Is Invalid",
	ErrOutOfRange:         "Out of Range",
	ErrDivideBy0:          "Divide by 0",
	ErrInvalidType:        "Invalid Type",
	ErrInvalidData:        "Invalid Data",
	ErrNonexistent:        "Nonexistent",
	ErrDimensionError:     "Dimension Error",
	ErrTooFewArguments:    "Too Few Arguments",
	ErrSizeError:          "Size Error",
	ErrSingularMatrix:     "Singular Matrix",
	ErrInterrupted:        "Interrupted",
	ErrSuspended:          "Suspended",
	ErrInsufficientMemory: "Insufficient Memory",
	ErrNotYetImplemented:  "Not Yet Implemented",
	ErrInternalError:      "Internal Error",
	ErrInvalidOpcode:      "Invalid Opcode",
	ErrBusy:               "Busy",
}

// String returns the display message.
func (e ErrorKind) String() string {
	if s, ok := errorText[e]; ok {
		return s
	}
	return fmt.Sprintf("Error %d", int(e))
}

func (e ErrorKind) Error() string { return e.String() }

// Failed reports whether e is a real failure, i.e. neither success nor
// suspension.
func (e ErrorKind) Failed() bool {
	return e != ErrNone && e != ErrSuspended
}

// Err converts e to a Go error, nil for ErrNone.
func (e ErrorKind) Err() error {
	if e == ErrNone {
		return nil
	}
	return e
}
