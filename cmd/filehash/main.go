package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gur-shatz/filehash/internal/cli"
	"github.com/gur-shatz/filehash/internal/color"
	"github.com/gur-shatz/filehash/internal/glob"
	"github.com/gur-shatz/filehash/internal/log"
	"github.com/gur-shatz/filehash/internal/notify"
	"github.com/gur-shatz/filehash/internal/scan"
	"github.com/gur-shatz/filehash/internal/sumfile"
	"github.com/gur-shatz/filehash/pkg/algo"
	"github.com/gur-shatz/filehash/pkg/config"
	"github.com/gur-shatz/filehash/pkg/filehash"
)

// errDrift makes check exit non-zero without an extra error line.
var errDrift = errors.New("tree does not match manifest")

func main() {
	color.Init()
	if err := run(); err != nil {
		if !errors.Is(err, errDrift) {
			log.Error("%v", err)
		}
		os.Exit(1)
	}
}

// app carries the resolved settings shared by every command.
type app struct {
	cfg      cli.Config
	settings config.Settings
	filter   *glob.Filter
	notifier *notify.Notifier // nil unless --json
}

func run() error {
	cfg, err := cli.Parse(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	log.Init(cfg.Verbose, cfg.Quiet || cfg.JSON)

	switch cfg.Command {
	case cli.CommandInit:
		return runInit(cfg.ConfigFile)
	case cli.CommandAlgos:
		return runAlgos()
	}

	settings, used, err := config.Load(cfg.ConfigFile)
	if err != nil {
		return err
	}
	if used != "" {
		log.Verbose("Using config: %s", used)
	}
	settings = cfg.Apply(settings)

	if !algo.IsSupported(settings.Algorithm) {
		return fmt.Errorf("%w: %s (supported: %v)", algo.ErrUnsupported, settings.Algorithm, algo.Supported())
	}

	filter, err := glob.FromFlags(settings.Include, settings.Exclude)
	if err != nil {
		return err
	}

	a := &app{cfg: cfg, settings: settings, filter: filter}
	if cfg.JSON {
		a.notifier = notify.New()
	}

	switch cfg.Command {
	case cli.CommandSum:
		return a.runSum()
	case cli.CommandCheck:
		return a.runCheck()
	case cli.CommandWatch:
		return a.runWatch()
	default:
		return a.runHash()
	}
}

func runInit(path string) error {
	if path == "" {
		path = config.DefaultFilename
	}
	if config.Exists(path) {
		return fmt.Errorf("%s already exists (remove it first to regenerate)", path)
	}
	if err := os.WriteFile(path, config.DefaultYAML, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Success("Created %s", path)
	return nil
}

func runAlgos() error {
	for _, name := range algo.Supported() {
		if name == algo.Default {
			fmt.Println(name, color.Dim("(default)"))
			continue
		}
		fmt.Println(name)
	}
	return nil
}

// matcher returns the filter as a filehash.Matcher, or nil when it keeps
// everything.
func (this *app) matcher() filehash.Matcher {
	if this.filter.IsEmpty() {
		return nil
	}
	return this.filter
}

func (this *app) options() []filehash.Option {
	opts := []filehash.Option{
		filehash.WithChunkSize(this.settings.ChunkSize),
		filehash.WithWalkErrorHandler(func(path string, err error) error {
			log.Verbose("skip %s: %v", path, err)
			return nil
		}),
	}
	if m := this.matcher(); m != nil {
		opts = append(opts, filehash.WithMatcher(m))
	}
	return opts
}

// progress reports each event to the notifier or the terminal and counts
// failures.
func (this *app) progress(total int, failed *int) filehash.ProgressFunc {
	return func(p filehash.Progress) {
		if p.Kind == filehash.Failed {
			*failed++
		}
		if this.notifier != nil {
			this.notifier.Progress(p, total)
			return
		}
		if p.Kind == filehash.Failed {
			log.Warn("%v", p.Err)
			return
		}
		log.Progress(p.Done, uint64(total))
	}
}

// runHash prints the aggregate digest of every collected file, hashed by
// the worker pool into one shared hash.
func (this *app) runHash() error {
	opts := this.options()
	paths := filehash.CollectFiles(this.cfg.Paths, opts...)

	h, err := algo.New(this.settings.Algorithm)
	if err != nil {
		return err
	}

	start := time.Now()
	failed := 0
	digest, err := filehash.HashFiles(paths, h, this.settings.Workers, this.progress(len(paths), &failed), opts...)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if this.notifier != nil {
		this.notifier.Digest(this.settings.Algorithm, digest, len(paths)-failed, failed, elapsed)
		return nil
	}

	fmt.Println(digest)
	log.Verbose("%s over %d files in %s", this.settings.Algorithm, len(paths)-failed, scan.FormatDuration(elapsed))
	if failed > 0 {
		log.Warn("%d of %d files could not be read", failed, len(paths))
	}
	return nil
}

func (this *app) scanOptions(onProgress filehash.ProgressFunc) scan.Options {
	return scan.Options{
		Roots:      this.cfg.Paths,
		Matcher:    this.matcher(),
		Algorithm:  this.settings.Algorithm,
		Workers:    this.settings.Workers,
		ChunkSize:  this.settings.ChunkSize,
		OnProgress: onProgress,
	}
}

// scanTree hashes each file on its own and reports progress the same way
// runHash does.
func (this *app) scanTree() (*scan.Result, string, error) {
	total := len(filehash.CollectFiles(this.cfg.Paths, this.options()...))
	failed := 0

	start := time.Now()
	result, err := scan.Scan(this.scanOptions(this.progress(total, &failed)))
	if err != nil {
		return nil, "", err
	}

	digest, err := result.Aggregate(this.settings.ChunkSize)
	if err != nil {
		return nil, "", err
	}
	elapsed := time.Since(start)

	if this.notifier != nil {
		this.notifier.Digest(result.Algorithm, digest, len(result.Files), len(result.Failed), elapsed)
	} else {
		log.Verbose("scanned %d files in %s", len(result.Files), scan.FormatDuration(elapsed))
	}
	if failed > 0 && this.notifier == nil {
		log.Warn("%d files could not be read", failed)
	}
	return result, digest, nil
}

func (this *app) runSum() error {
	result, digest, err := this.scanTree()
	if err != nil {
		return err
	}

	m := &sumfile.Manifest{
		Algorithm: result.Algorithm,
		Digest:    digest,
		Entries:   result.Entries(),
	}
	if err := sumfile.Write(this.settings.SumFile, m); err != nil {
		return fmt.Errorf("write %s: %w", this.settings.SumFile, err)
	}

	log.Success("Created %s (%d files)", this.settings.SumFile, len(m.Entries))
	return nil
}

func (this *app) runCheck() error {
	manifest, err := sumfile.Read(this.settings.SumFile)
	if err != nil {
		return err
	}
	if manifest == nil {
		return fmt.Errorf("%s not found (run 'filehash sum' first)", this.settings.SumFile)
	}

	if this.cfg.IsSet("algo") && this.settings.Algorithm != manifest.Algorithm {
		return fmt.Errorf("%s was written with %s, not %s", this.settings.SumFile, manifest.Algorithm, this.settings.Algorithm)
	}
	this.settings.Algorithm = manifest.Algorithm

	result, digest, err := this.scanTree()
	if err != nil && !errors.Is(err, filehash.ErrNoFiles) {
		return err
	}

	current := map[string]string{}
	if result != nil {
		current = result.Entries()
	}
	changes := sumfile.Diff(manifest.Entries, current)

	if changes.IsEmpty() {
		if this.notifier == nil {
			log.Success("OK %s (%d files)", digest, len(current))
		}
		return nil
	}

	if this.notifier != nil {
		this.notifier.Drift(changes)
	} else {
		log.Change(changes)
	}
	return errDrift
}
