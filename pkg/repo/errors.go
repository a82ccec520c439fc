package repo

import (
	"fmt"
	"io/fs"

	"github.com/pkg/errors"
)

type Kind int

const (
	KindIO Kind = iota
	KindAlreadyExists
	KindConfigNotFound
	KindPackageAlreadyExists
	KindPackageNotFound
	KindSerialization
	KindInvalidPackage
)

var kindNames = map[Kind]string{
	KindIO:                   "io",
	KindAlreadyExists:        "already-exists",
	KindConfigNotFound:       "config-not-found",
	KindPackageAlreadyExists: "package-already-exists",
	KindPackageNotFound:      "package-not-found",
	KindSerialization:        "serialization",
	KindInvalidPackage:       "invalid-package",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is returned by every Repository operation. Path, Name and Version
// are filled in when the operation has them.
type Error struct {
	Kind    Kind
	Path    string
	Name    string
	Version string
	Err     error
}

// Sentinels for use with errors.Is. They match any *Error of the same Kind.
var (
	ErrAlreadyExists        = &Error{Kind: KindAlreadyExists}
	ErrConfigNotFound       = &Error{Kind: KindConfigNotFound}
	ErrPackageAlreadyExists = &Error{Kind: KindPackageAlreadyExists}
	ErrPackageNotFound      = &Error{Kind: KindPackageNotFound}
	ErrSerialization        = &Error{Kind: KindSerialization}
	ErrInvalidPackage       = &Error{Kind: KindInvalidPackage}
	ErrIO                   = &Error{Kind: KindIO}
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindAlreadyExists:
		return fmt.Sprintf("Repository already exists at %s", e.Path)
	case KindConfigNotFound:
		return "Repository configuration not found in the current directory or parent directories."
	case KindPackageAlreadyExists:
		return fmt.Sprintf("Package %s version %s already exists.", e.Name, e.Version)
	case KindPackageNotFound:
		return fmt.Sprintf("Package not found: %s-%s", e.Name, e.Version)
	case KindSerialization:
		if e.Path != "" {
			return fmt.Sprintf("Serialization error in %s: %s", e.Path, e.cause())
		}

		return fmt.Sprintf("Serialization error: %s", e.cause())
	case KindInvalidPackage:
		return fmt.Sprintf("Invalid package name or version: %q %q", e.Name, e.Version)
	default:
		return fmt.Sprintf("I/O error: %s", e.cause())
	}
}

func (e *Error) cause() string {
	if e.Err == nil {
		return "unknown"
	}

	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind
}

// Format lets %+v print the stack of the wrapped cause.
func (e *Error) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') && e.Err != nil {
		fmt.Fprintf(s, "%s\n%+v", e.Error(), e.Err)
		return
	}

	fmt.Fprint(s, e.Error())
}

// KindOf reports the Kind of err, or KindIO if err did not come from
// this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindIO
}

func ioError(path string, err error) error {
	return &Error{Kind: KindIO, Path: path, Err: errors.WithStack(err)}
}

// extractError classifies a failure from the metadata extractor. Filesystem
// failures stay IO errors, anything else is a decoding problem.
func extractError(path string, err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return &Error{Kind: KindIO, Path: path, Err: errors.WithStack(err)}
	}

	return &Error{Kind: KindSerialization, Path: path, Err: errors.WithStack(err)}
}
