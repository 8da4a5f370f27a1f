package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gur-shatz/filehash/pkg/config"
)

// Command represents what filehash should do.
type Command int

const (
	CommandHash  Command = iota // default: print the aggregate digest
	CommandSum                  // write a manifest
	CommandCheck                // compare the tree against a manifest
	CommandWatch                // rehash on change
	CommandAlgos                // list algorithms
	CommandInit                 // write a default config file
)

var commandNames = map[string]Command{
	"hash":  CommandHash,
	"sum":   CommandSum,
	"check": CommandCheck,
	"watch": CommandWatch,
	"algos": CommandAlgos,
	"init":  CommandInit,
}

func (this Command) String() string {
	for name, c := range commandNames {
		if c == this {
			return name
		}
	}
	return fmt.Sprintf("Command(%d)", int(this))
}

// Config holds the parsed command line.
type Config struct {
	Command      Command
	Paths        []string
	ConfigFile   string
	Algorithm    string
	Workers      int
	ChunkSize    int
	Include      []string
	Exclude      []string
	SumFile      string
	JSON         bool
	PollInterval time.Duration
	Debounce     time.Duration
	APIAddr      string
	Quiet        bool
	Verbose      bool

	set map[string]bool
}

// IsSet reports whether the flag with the given long name was passed.
func (this Config) IsSet(name string) bool {
	return this.set[name]
}

// aliases maps short flags to their long names.
var aliases = map[string]string{
	"a": "algo",
	"j": "workers",
	"c": "config",
	"i": "include",
	"x": "exclude",
	"q": "quiet",
	"v": "verbose",
}

type stringList []string

func (this *stringList) String() string { return strings.Join(*this, ",") }

func (this *stringList) Set(v string) error {
	*this = append(*this, v)
	return nil
}

// Parse parses command-line arguments into a Config.
//
// Format:
//
//	filehash [command] [flags] [paths...]
//
// The command defaults to hash and paths default to ".". Flags may appear
// before or after paths.
func Parse(args []string) (Config, error) {
	cfg := Config{Command: CommandHash, set: map[string]bool{}}

	if len(args) > 0 {
		if c, ok := commandNames[args[0]]; ok {
			cfg.Command = c
			args = args[1:]
		}
	}

	fs := flag.NewFlagSet("filehash", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	include := (*stringList)(&cfg.Include)
	exclude := (*stringList)(&cfg.Exclude)

	fs.StringVar(&cfg.Algorithm, "a", "", "")
	fs.StringVar(&cfg.Algorithm, "algo", "", "")
	fs.IntVar(&cfg.Workers, "j", 0, "")
	fs.IntVar(&cfg.Workers, "workers", 0, "")
	fs.StringVar(&cfg.ConfigFile, "c", "", "")
	fs.StringVar(&cfg.ConfigFile, "config", "", "")
	fs.IntVar(&cfg.ChunkSize, "chunk", 0, "")
	fs.Var(include, "i", "")
	fs.Var(include, "include", "")
	fs.Var(exclude, "x", "")
	fs.Var(exclude, "exclude", "")
	fs.StringVar(&cfg.SumFile, "sum", "", "")
	fs.BoolVar(&cfg.JSON, "json", false, "")
	fs.DurationVar(&cfg.PollInterval, "poll", 0, "")
	fs.DurationVar(&cfg.Debounce, "debounce", 0, "")
	fs.StringVar(&cfg.APIAddr, "api", "", "")
	fs.BoolVar(&cfg.Quiet, "q", false, "")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "")
	fs.BoolVar(&cfg.Verbose, "v", false, "")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "")

	for {
		if err := fs.Parse(args); err != nil {
			if err == flag.ErrHelp {
				fmt.Print(Usage())
			}
			return cfg, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			break
		}
		// Everything after a "--" terminator is a path.
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			cfg.Paths = append(cfg.Paths, rest...)
			break
		}
		cfg.Paths = append(cfg.Paths, rest[0])
		args = rest[1:]
	}

	fs.Visit(func(f *flag.Flag) {
		name := f.Name
		if long, ok := aliases[name]; ok {
			name = long
		}
		cfg.set[name] = true
	})

	if err := validate(cfg); err != nil {
		return cfg, err
	}

	if len(cfg.Paths) == 0 {
		cfg.Paths = []string{"."}
	}
	return cfg, nil
}

func validate(cfg Config) error {
	switch {
	case cfg.Workers < 0:
		return fmt.Errorf("--workers must be >= 0, got %d", cfg.Workers)
	case cfg.ChunkSize < 0:
		return fmt.Errorf("--chunk must be >= 0, got %d", cfg.ChunkSize)
	case cfg.Quiet && cfg.Verbose:
		return fmt.Errorf("--quiet and --verbose are mutually exclusive")
	case cfg.APIAddr != "" && cfg.Command != CommandWatch:
		return fmt.Errorf("--api is only valid with the watch command")
	}
	if (cfg.Command == CommandAlgos || cfg.Command == CommandInit) && len(cfg.Paths) > 0 {
		return fmt.Errorf("%s takes no paths", cfg.Command)
	}
	return nil
}

// Apply overlays explicitly passed flags onto settings loaded from a
// config file.
func (this Config) Apply(s config.Settings) config.Settings {
	if this.IsSet("algo") {
		s.Algorithm = this.Algorithm
	}
	if this.IsSet("workers") {
		s.Workers = this.Workers
	}
	if this.IsSet("chunk") {
		s.ChunkSize = this.ChunkSize
	}
	if this.IsSet("include") {
		s.Include = append([]string(nil), this.Include...)
	}
	if this.IsSet("exclude") {
		s.Exclude = append([]string(nil), this.Exclude...)
	}
	if this.IsSet("sum") {
		s.SumFile = this.SumFile
	}
	if this.IsSet("poll") {
		s.Watch.Poll = this.PollInterval
	}
	if this.IsSet("debounce") {
		s.Watch.Debounce = this.Debounce
	}
	if this.IsSet("api") {
		s.API.Addr = this.APIAddr
	}
	return s
}

// Usage returns the help text for filehash.
func Usage() string {
	return `filehash - parallel aggregate file hashing

Usage:
  filehash [flags] [paths...]          Print the aggregate digest of paths
  filehash sum [flags] [paths...]      Write a per-file manifest
  filehash check [flags] [paths...]    Compare paths against a manifest
  filehash watch [flags] [paths...]    Rehash whenever files change
  filehash algos                       List supported algorithms
  filehash init [-c <file>]            Generate a default config file

Paths may be files or directories and default to the current directory.

Flags:
  -a, --algo <name>        Hash algorithm (default: blake2s256)
  -j, --workers <n>        Parallel workers, 0 for one per CPU (default: 0)
  -c, --config <file>      Config file (default: filehash.yaml if present)
  --chunk <bytes>          Read buffer size (default: 4096)
  -i, --include <glob>     Only hash files matching glob (repeatable)
  -x, --exclude <glob>     Skip files matching glob (repeatable)
  --sum <file>             Manifest for sum and check (default: filehash.sum)
  --json                   Emit machine-readable events on stdout
  --poll <duration>        Watch poll interval (default: 500ms)
  --debounce <duration>    Watch debounce window (default: 200ms)
  --api <addr>             Serve the watch HTTP API on addr
  -q, --quiet              Only print the digest and errors
  -v, --verbose            Verbose output (per-file progress)
  -h, --help               Show this help

Globs use doublestar syntax and match paths relative to each root:
  filehash -i '**/*.go' -x '**/vendor/**' ./src

Config file (filehash.yaml):
  algorithm: sha256
  workers: 8
  exclude:
    - "**/.git/**"
  watch:
    poll: 1s
  api:
    addr: ":8090"

Config values may use Go templates with a vars: section and the default,
required and env functions. Environment variables override vars.
`
}
