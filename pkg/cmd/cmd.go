package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"reflect"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/jessevdk/go-flags"
	"golang.org/x/sys/unix"
	"lab47.dev/ipmrepo/pkg/progress"
)

// Globals is the process wide state shared by every command. It is
// filled in once by main before the command runs.
type Globals struct {
	Verbosity Verbosity

	// Dir is where repository discovery starts.
	Dir string

	Stdout io.Writer
	Stderr io.Writer
}

// Env is what a command function gets handed besides its options.
type Env struct {
	L      hclog.Logger
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

var envType = reflect.TypeOf((*Env)(nil))

type Cmd struct {
	syn, name string
	f         reflect.Value

	globals   *Globals
	verbosity *Verbosity

	opts   reflect.Value
	parser *flags.Parser
}

// New wraps f, which must look like
//
//	func(ctx context.Context, env *cmd.Env, opts struct{...}) error
//
// The opts struct is parsed with go-flags.
func New(name, syn string, g *Globals, f interface{}) *Cmd {
	rv := reflect.ValueOf(f)

	if rv.Kind() != reflect.Func {
		panic("must pass a function")
	}

	rt := rv.Type()

	if rt.NumIn() != 3 {
		panic("must provide three arguments only")
	}

	if rt.In(1) != envType {
		panic("second argument must be *cmd.Env")
	}

	if rt.NumOut() != 1 {
		panic("must return one argument only")
	}

	in := rt.In(2)

	if in.Kind() != reflect.Struct {
		panic("argument must be a struct")
	}

	sv := reflect.New(in)

	parser := flags.NewNamedParser(name, flags.HelpFlag|flags.PassDoubleDash)
	parser.ShortDescription = syn
	parser.LongDescription = syn

	_, err := parser.AddGroup("Application Options", "", sv.Interface())
	if err != nil {
		panic(err)
	}

	var verb Verbosity

	_, err = parser.AddGroup("Logging Options", "", &verb)
	if err != nil {
		panic(err)
	}

	return &Cmd{
		syn:       syn,
		name:      name,
		f:         rv,
		globals:   g,
		verbosity: &verb,
		opts:      sv,
		parser:    parser,
	}
}

func (w *Cmd) Help() string {
	var buf bytes.Buffer
	w.parser.WriteHelp(&buf)
	return buf.String()
}

func (w *Cmd) Synopsis() string {
	return w.syn
}

func (w *Cmd) stderr() io.Writer {
	if w.globals.Stderr != nil {
		return w.globals.Stderr
	}

	return os.Stderr
}

func (w *Cmd) stdout() io.Writer {
	if w.globals.Stdout != nil {
		return w.globals.Stdout
	}

	return os.Stdout
}

func (w *Cmd) Run(args []string) int {
	stderr := w.stderr()

	rest, err := w.parser.ParseArgs(args)
	if err != nil {
		if fe, ok := err.(*flags.Error); ok && fe.Type == flags.ErrHelp {
			fmt.Fprintln(stderr, w.Help())
			return 0
		}

		fmt.Fprintf(stderr, "! Error: %s\n", err)
		return 1
	}

	if len(rest) > 0 {
		fmt.Fprintf(stderr, "! Error: unexpected arguments: %s\n", strings.Join(rest, " "))
		return 1
	}

	verb := w.globals.Verbosity.Merge(*w.verbosity)

	err = verb.Validate()
	if err != nil {
		fmt.Fprintf(stderr, "! Error: %s\n", err)
		return 1
	}

	L := hclog.New(&hclog.LoggerOptions{
		Name:   "ipm-repo",
		Level:  verb.Level(),
		Output: stderr,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cancelOnSignal(ctx, cancel, os.Interrupt, unix.SIGQUIT, unix.SIGTERM)

	if verb.Verbose || verb.Debug {
		ctx = progress.Open(ctx, stderr)
	}

	env := &Env{
		L:      L,
		Dir:    w.globals.Dir,
		Stdout: w.stdout(),
		Stderr: stderr,
	}

	rets := w.f.Call([]reflect.Value{reflect.ValueOf(ctx), reflect.ValueOf(env), w.opts.Elem()})

	if err, ok := rets[0].Interface().(error); ok && err != nil {
		if verb.Debug {
			fmt.Fprintf(stderr, "! Error: %+v\n", err)
		} else {
			fmt.Fprintf(stderr, "! Error: %s\n", err)
		}

		return 1
	}

	return 0
}

func cancelOnSignal(ctx context.Context, cancel func(), signals ...os.Signal) {
	c := make(chan os.Signal, 2)
	signal.Notify(c, signals...)

	go func() {
		defer signal.Stop(c)

		select {
		case <-c:
			cancel()
		case <-ctx.Done():
		}
	}()
}
