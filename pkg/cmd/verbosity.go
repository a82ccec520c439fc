package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// Verbosity holds the logging flags every command accepts, either before
// the subcommand name or after it.
type Verbosity struct {
	Quiet   bool `short:"q" long:"quiet" description:"Suppress all output except errors"`
	Verbose bool `short:"v" long:"verbose" description:"Enable verbose logging"`
	Debug   bool `long:"debug" description:"Enable debug logging"`
}

// Register adds the flags to a pflag set, for parsing the arguments that
// come before the subcommand.
func (v *Verbosity) Register(fs *pflag.FlagSet) {
	fs.BoolVarP(&v.Quiet, "quiet", "q", false, "Suppress all output except errors")
	fs.BoolVarP(&v.Verbose, "verbose", "v", false, "Enable verbose logging")
	fs.BoolVar(&v.Debug, "debug", false, "Enable debug logging")
}

func (v Verbosity) Merge(o Verbosity) Verbosity {
	return Verbosity{
		Quiet:   v.Quiet || o.Quiet,
		Verbose: v.Verbose || o.Verbose,
		Debug:   v.Debug || o.Debug,
	}
}

var (
	ErrQuietConflict   = errors.New("--quiet cannot be used with --verbose or --debug")
	ErrVerboseConflict = errors.New("--verbose cannot be used with --debug")
)

func (v Verbosity) Validate() error {
	switch {
	case v.Quiet && (v.Verbose || v.Debug):
		return ErrQuietConflict
	case v.Verbose && v.Debug:
		return ErrVerboseConflict
	default:
		return nil
	}
}

func (v Verbosity) Level() hclog.Level {
	switch {
	case v.Quiet:
		return hclog.Off
	case v.Debug:
		return hclog.Debug
	case v.Verbose:
		return hclog.Info
	default:
		return hclog.Warn
	}
}
