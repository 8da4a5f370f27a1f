package log

import (
	"fmt"
	"io"
	"os"

	"github.com/gur-shatz/filehash/internal/color"
	"github.com/gur-shatz/filehash/internal/sumfile"
)

// Logger is an instance-based logger with its own prefix and verbosity.
type Logger struct {
	prefix  string
	verbose bool
	quiet   bool
	live    bool // stdout is a terminal; progress rewrites one line
	out     io.Writer
	errOut  io.Writer
}

// New creates a Logger writing to stdout and stderr.
func New(prefix string, verbose bool) *Logger {
	return &Logger{
		prefix:  prefix,
		verbose: verbose,
		live:    color.IsTerminal(os.Stdout),
		out:     os.Stdout,
		errOut:  os.Stderr,
	}
}

// NewWithWriters creates a Logger with explicit writers (for testing).
func NewWithWriters(prefix string, verbose bool, out, errOut io.Writer) *Logger {
	return &Logger{prefix: prefix, verbose: verbose, out: out, errOut: errOut}
}

// SetQuiet suppresses everything except errors.
func (this *Logger) SetQuiet(q bool) {
	this.quiet = q
}

// Error prints a red error message to stderr.
func (this *Logger) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(this.errOut, "%s %s %s\n", this.prefix, color.Red("Error:"), msg)
}

// Warn prints a yellow warning message to stderr.
func (this *Logger) Warn(format string, args ...any) {
	if this.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(this.errOut, this.prefix+" "+color.Yellow(msg))
}

// Success prints a green success message to stdout.
func (this *Logger) Success(format string, args ...any) {
	if this.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(this.out, this.prefix+" "+color.Green(msg))
}

// Status prints a bold status message to stdout.
func (this *Logger) Status(format string, args ...any) {
	if this.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(this.out, color.Bold(this.prefix+" "+msg))
}

// Verbose prints a dim message to stdout, only if verbose mode is enabled.
func (this *Logger) Verbose(format string, args ...any) {
	if !this.verbose || this.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(this.out, color.Dim(this.prefix+" "+msg))
}

// Progress shows done/total. On a terminal the line is rewritten in place
// and finished with a newline once done reaches total; elsewhere it is only
// printed in verbose mode.
func (this *Logger) Progress(done, total uint64) {
	if this.quiet {
		return
	}
	if !this.live {
		this.Verbose("hashed %d/%d files", done, total)
		return
	}
	fmt.Fprintf(this.out, "\r%s %s", this.prefix, color.Dim(fmt.Sprintf("hashed %d/%d files", done, total)))
	if done >= total {
		fmt.Fprintln(this.out)
	}
}

// Change prints a changeset with a cyan header and dim file paths.
func (this *Logger) Change(changes sumfile.ChangeSet) {
	if this.quiet {
		return
	}
	fmt.Fprintln(this.out, this.prefix+" "+color.Cyan(fmt.Sprintf("%d files changed:", changes.Len())))
	for _, f := range changes.Modified {
		fmt.Fprintln(this.out, color.Dim("  modified: "+f))
	}
	for _, f := range changes.Added {
		fmt.Fprintln(this.out, color.Dim("  added:    "+f))
	}
	for _, f := range changes.Removed {
		fmt.Fprintln(this.out, color.Dim("  removed:  "+f))
	}
}

// --- Global convenience functions for the default logger ---

var defaultLogger = New("[filehash]", false)

// Init sets verbosity and quietness on the default logger and detects colors.
func Init(verbose, quiet bool) {
	defaultLogger.verbose = verbose
	defaultLogger.quiet = quiet
	color.Init()
}

// Default returns the global logger.
func Default() *Logger {
	return defaultLogger
}

func Error(format string, args ...any)   { defaultLogger.Error(format, args...) }
func Warn(format string, args ...any)    { defaultLogger.Warn(format, args...) }
func Success(format string, args ...any) { defaultLogger.Success(format, args...) }
func Status(format string, args ...any)  { defaultLogger.Status(format, args...) }
func Verbose(format string, args ...any) { defaultLogger.Verbose(format, args...) }
func Progress(done, total uint64)        { defaultLogger.Progress(done, total) }
func Change(changes sumfile.ChangeSet)   { defaultLogger.Change(changes) }
