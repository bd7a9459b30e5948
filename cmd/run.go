// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-unarchive"
	"github.com/hashicorp/go-unarchive/metrics"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// CLI are the cli parameters for the unarchive binary
type CLI struct {
	Extract ExtractCmd       `cmd:"" default:"withargs" help:"Extract archives into a directory."`
	List    ListCmd          `cmd:"" help:"List the entries of an archive without extracting them."`
	Verbose bool             `short:"v" optional:"" help:"Verbose logging."`
	Version kong.VersionFlag `short:"V" optional:"" help:"Print release version information."`
}

// ArchiveFlags are the parameters shared by all commands that read an archive.
type ArchiveFlags struct {
	Archive       []string `arg:"" optional:"" name:"archive" help:"Path to archive. Several paths are read as one multi-volume archive. (\"-\" for STDIN)"`
	AskPassphrase bool     `short:"P" help:"Ask for the passphrase when an encrypted entry is found."`
	CacheInMemory bool     `help:"Cache archives that need random access in memory instead of a temporary file."`
	Exclude       []string `short:"x" help:"Exclude entries matching the glob pattern."`
	Include       []string `short:"i" help:"Only include entries matching the glob pattern."`
	Job           string   `short:"j" type:"path" help:"YAML job file with construction options (filename, passphrase, include, exclude, destination)."`
	MaxFiles      int64    `optional:"" default:"100000" help:"Maximum files that are extracted before stop. (disable check: -1)"`
	MaxInputSize  int64    `optional:"" default:"1073741824" help:"Maximum input size that allowed is (in bytes). (disable check: -1)"`
	Passphrase    string   `short:"p" env:"UNARCHIVE_PASSPHRASE" help:"Passphrase for encrypted entries."`
	Type          string   `short:"t" help:"Expected archive type, e.g. zip or tar.gz."`
}

// ExtractCmd extracts archives.
type ExtractCmd struct {
	ArchiveFlags `embed:""`

	ContinueOnUnsupported bool   `short:"U" help:"Skip unsupported files, e.g. devices, with a warning."`
	DenySymlinks          bool   `short:"D" help:"Deny symlink extraction."`
	Destination           string `short:"C" name:"directory" help:"Output directory. (default: current directory)"`
	DropAttributes        bool   `help:"Do not restore permissions and timestamps."`
	FollowSymlinks        bool   `short:"F" help:"[Dangerous!] Follow symlinks to directories during extraction."`
	KeepExisting          bool   `short:"k" help:"Fail instead of replacing existing files."`
	MaxExtractionSize     int64  `optional:"" default:"1073741824" help:"Maximum extraction size that allowed is (in bytes). (disable check: -1)"`
	MaxExtractionTime     int64  `optional:"" default:"60" help:"Maximum time that an extraction should take (in seconds). (disable check: -1)"`
	MetricsFile           string `short:"M" type:"path" help:"Write Prometheus metrics of the extraction to the file."`
	PreserveOwner         bool   `help:"Restore the owner of extracted files. (requires root)"`
	PreserveXattrs        bool   `help:"Restore all extended attributes."`
}

// ListCmd lists the entries of an archive.
type ListCmd struct {
	ArchiveFlags `embed:""`
}

// Run the entrypoint into go-unarchive as a cli tool
func Run(version, commit, date string) {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("unarchive"),
		kong.Description("A secure extraction utility"),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("%s (%s), commit %s, built at %s", filepath.Base(os.Args[0]), version, commit, date),
		},
	)

	// Check for verbose output
	logLevel := slog.LevelError
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}

	// setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	if err := ctx.Run(logger); err != nil {
		fmt.Fprintf(os.Stderr, "unarchive: %v\n", err)
		os.Exit(1)
	}
}

// Run extracts the archive.
func (c *ExtractCmd) Run(logger *slog.Logger) error {
	job, err := loadJob(c.Job)
	if err != nil {
		return err
	}
	if c.Destination == "" {
		c.Destination = job.destination
	}

	// capture telemetry
	var td unarchive.TelemetryData
	hooks := []unarchive.TelemetryHook{func(_ context.Context, d *unarchive.TelemetryData) { td = *d }}
	reg := prometheus.NewRegistry()
	if c.MetricsFile != "" {
		collector, err := metrics.NewCollector(reg)
		if err != nil {
			return errors.Wrap(err, "cannot create metrics")
		}
		hooks = append(hooks, collector.Hook())
	}

	cfg := unarchive.NewConfig(
		unarchive.WithCacheInMemory(c.CacheInMemory),
		unarchive.WithContinueOnUnsupportedFiles(c.ContinueOnUnsupported),
		unarchive.WithDenySymlinkExtraction(c.DenySymlinks),
		unarchive.WithDropFileAttributes(c.DropAttributes),
		unarchive.WithExtractType(c.Type),
		unarchive.WithInsecureTraverseSymlinks(c.FollowSymlinks),
		unarchive.WithLogger(logger),
		unarchive.WithMaxExtractionSize(c.MaxExtractionSize),
		unarchive.WithMaxFiles(c.MaxFiles),
		unarchive.WithMaxInputSize(c.MaxInputSize),
		unarchive.WithOverwrite(!c.KeepExisting),
		unarchive.WithPreserveOwner(c.PreserveOwner),
		unarchive.WithPreserveXattrs(c.PreserveXattrs),
		unarchive.WithTelemetryHook(chainHooks(hooks...)),
	)

	j, err := c.newJob(job, cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if c.MaxExtractionTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Second*time.Duration(c.MaxExtractionTime))
		defer cancel()
	}

	var opts []unarchive.ExtractOption
	if c.Destination != "" {
		opts = append(opts, unarchive.To(c.Destination))
	}
	extractErr := j.Extract(ctx, opts...)

	// metrics are written for failed extractions as well
	if c.MetricsFile != "" {
		if err := metrics.WriteTextfile(c.MetricsFile, reg); err != nil {
			logger.Error("cannot write metrics", "err", err)
		}
	}
	for _, w := range j.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if extractErr != nil {
		return errors.Wrap(extractErr, "extraction failed")
	}

	dst, _ := j.Destination()
	fmt.Printf("extracted %d entries (%s) to %s\n", len(j.ExtractedPathnames()), humanize.Bytes(uint64(td.ExtractionSize)), dst)
	return nil
}

// Run lists the entries of the archive.
func (c *ListCmd) Run(logger *slog.Logger) error {
	job, err := loadJob(c.Job)
	if err != nil {
		return err
	}

	cfg := unarchive.NewConfig(
		unarchive.WithCacheInMemory(c.CacheInMemory),
		unarchive.WithExtractType(c.Type),
		unarchive.WithLogger(logger),
		unarchive.WithMaxFiles(c.MaxFiles),
		unarchive.WithMaxInputSize(c.MaxInputSize),
	)
	j, err := c.newJob(job, cfg)
	if err != nil {
		return err
	}

	entries, err := j.List(context.Background())
	if err != nil {
		return errors.Wrap(err, "listing failed")
	}
	return printEntries(os.Stdout, entries)
}

// printEntries renders entries as a table.
func printEntries(w io.Writer, entries []*unarchive.Entry) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Mode", "Size", "Modified", "Name"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetColumnSeparator("")
	table.SetHeaderLine(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, e := range entries {
		size := "-"
		if e.Size >= 0 {
			size = humanize.Bytes(uint64(e.Size))
		}
		name := e.Pathname
		if e.Type == unarchive.EntrySymlink || e.Type == unarchive.EntryHardlink {
			name = fmt.Sprintf("%s -> %s", e.Pathname, e.Linkname)
		}
		table.Append([]string{e.FileMode().String(), size, e.ModTime.Format(time.DateTime), name})
	}
	table.Render()
	return nil
}

// newJob combines the job file, the flags and cfg into a job.
func (a *ArchiveFlags) newJob(job *jobFile, cfg *unarchive.Config) (*unarchive.Job, error) {
	opts := []unarchive.Option{unarchive.WithConfig(cfg)}

	if len(a.Archive) > 0 {
		delete(job.options, unarchive.KeyFilename)
	}
	if len(a.Archive) == 1 && a.Archive[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.Wrap(err, "cannot read archive from stdin")
		}
		opts = append(opts, unarchive.WithMemory(data))
	} else if len(a.Archive) > 0 {
		opts = append(opts, unarchive.WithFilename(a.Archive...))
	}

	include := append(job.include, a.Include...)
	exclude := append(job.exclude, a.Exclude...)
	if len(include) > 0 || len(exclude) > 0 {
		opts = append(opts, unarchive.WithEntryFilter(unarchive.PatternFilter(include, exclude)))
	}

	switch {
	case a.Passphrase != "":
		delete(job.options, unarchive.KeyPassphrase)
		opts = append(opts, unarchive.WithPassphrase(a.Passphrase))
	case a.AskPassphrase:
		delete(job.options, unarchive.KeyPassphrase)
		opts = append(opts, unarchive.WithPassphraseResolver(&terminalResolver{in: os.Stdin, out: os.Stderr}))
	}

	j, err := unarchive.NewFromMap(job.options, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}
	return j, nil
}

// chainHooks returns a hook that calls all hooks in order.
func chainHooks(hooks ...unarchive.TelemetryHook) unarchive.TelemetryHook {
	return func(ctx context.Context, td *unarchive.TelemetryData) {
		for _, h := range hooks {
			h(ctx, td)
		}
	}
}
