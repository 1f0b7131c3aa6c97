package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/whhaicheng/SimDesk/internal/app/scheduler"
	"github.com/whhaicheng/SimDesk/internal/app/usecase"
	"github.com/whhaicheng/SimDesk/internal/domain/preferences"
	"github.com/whhaicheng/SimDesk/internal/domain/project"
	"github.com/whhaicheng/SimDesk/internal/domain/report"
	"github.com/whhaicheng/SimDesk/internal/domain/search"
	"github.com/whhaicheng/SimDesk/internal/domain/simulation"
	"github.com/whhaicheng/SimDesk/internal/transport/server"
)

type commands struct {
	app *app
	out io.Writer
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: %s: unexpected argument %q", errUsage, fs.Name(), fs.Arg(0))
	}
	return nil
}

// leadingArg takes the positional argument that precedes the flags.
func leadingArg(args []string, what string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", nil, fmt.Errorf("%w: %s is required", errUsage, what)
	}
	return args[0], args[1:], nil
}

// payloadValue returns v, or the contents of the file when v starts with '@'.
func payloadValue(v string) (string, error) {
	if !strings.HasPrefix(v, "@") {
		return v, nil
	}
	data, err := os.ReadFile(v[1:])
	if err != nil {
		return "", fmt.Errorf("read payload file: %w", err)
	}
	return string(data), nil
}

func parseTimeFlag(name, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("%w: -%s must be RFC3339: %v", errUsage, name, err)
	}
	return &t, nil
}

func parseStatusFlag(v string) (*simulation.Status, error) {
	if v == "" {
		return nil, nil
	}
	st, err := simulation.ParseStatus(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	return &st, nil
}

func (c *commands) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *commands) printEvent(e simulation.Event) {
	if e.From == e.To {
		fmt.Fprintf(c.out, "Run %s: %s (%s)\n", e.RunID, e.To, e.Type)
		return
	}
	fmt.Fprintf(c.out, "Run %s: %s -> %s\n", e.RunID, e.From, e.To)
}

// runs dispatches the run subcommands.
func (c *commands) runs(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: runs requires a subcommand", errUsage)
	}
	sub, args := args[0], args[1:]

	switch sub {
	case "create":
		return c.runCreate(ctx, args)
	case "list":
		return c.runList(ctx, args)
	case "show":
		return c.runShow(ctx, args)
	case "report":
		return c.runReport(ctx, args)
	case "delete":
		id, rest, err := leadingArg(args, "run id")
		if err != nil {
			return err
		}
		if err := parseFlags(newFlagSet("runs delete"), rest); err != nil {
			return err
		}
		event, err := c.app.simulations.DeleteRun(ctx, id)
		if err != nil {
			return err
		}
		c.printEvent(event)
		return nil
	case "start", "cancel", "retry", "complete", "fail", "result":
		return c.runTransition(ctx, sub, args)
	default:
		return fmt.Errorf("%w: unknown runs subcommand: %s", errUsage, sub)
	}
}

func (c *commands) runCreate(ctx context.Context, args []string) error {
	fs := newFlagSet("runs create")
	projectPath := fs.String("project", "", "project file path")
	name := fs.String("name", "", "project name")
	toolVersion := fs.String("tool-version", "", "simulation tool version")
	input := fs.String("input", "{}", "input configuration, or @file")
	duration := fs.Float64("duration", 0, "simulated duration in seconds")
	units := fs.Int64("units", 0, "number of simulated units")
	subUnits := fs.Int64("sub-units", 0, "number of simulated sub-units")
	recorded := fs.String("recorded", "", "when the run was recorded (RFC3339)")
	status := fs.String("status", "", "initial status")
	reportLoc := fs.String("report", "", "location of an existing report")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	inputConfig, err := payloadValue(*input)
	if err != nil {
		return err
	}
	recordedAt, err := parseTimeFlag("recorded", *recorded)
	if err != nil {
		return err
	}
	initial, err := parseStatusFlag(*status)
	if err != nil {
		return err
	}

	in := usecase.CreateRunInput{
		ProjectPath:    *projectPath,
		ProjectName:    *name,
		ToolVersion:    *toolVersion,
		InputConfig:    inputConfig,
		Duration:       *duration,
		UnitCount:      *units,
		SubUnitCount:   *subUnits,
		Status:         initial,
		ReportLocation: *reportLoc,
	}
	if recordedAt != nil {
		in.RecordedAt = *recordedAt
	}

	run, _, err := c.app.simulations.CreateRun(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, run.ID())
	return nil
}

func (c *commands) runTransition(ctx context.Context, sub string, args []string) error {
	id, rest, err := leadingArg(args, "run id")
	if err != nil {
		return err
	}
	fs := newFlagSet("runs " + sub)
	var result *string
	if sub == "complete" || sub == "fail" || sub == "result" {
		result = fs.String("result", "", "result payload, or @file")
	}
	if err := parseFlags(fs, rest); err != nil {
		return err
	}

	var payload string
	if result != nil {
		if payload, err = payloadValue(*result); err != nil {
			return err
		}
	}

	sims := c.app.simulations
	var event simulation.Event
	switch sub {
	case "start":
		_, event, err = sims.StartRun(ctx, id)
	case "cancel":
		_, event, err = sims.CancelRun(ctx, id)
	case "retry":
		_, event, err = sims.RetryRun(ctx, id)
	case "complete":
		_, event, err = sims.CompleteRun(ctx, id, payload)
	case "fail":
		_, event, err = sims.FailRun(ctx, id, payload)
	case "result":
		_, event, err = sims.UpdateResult(ctx, id, payload)
	}
	if err != nil {
		return err
	}
	c.printEvent(event)
	return nil
}

func (c *commands) runList(ctx context.Context, args []string) error {
	fs := newFlagSet("runs list")
	name := fs.String("name", "", "project name substring")
	path := fs.String("path", "", "exact project path")
	status := fs.String("status", "", "status")
	from := fs.String("from", "", "recorded at or after (RFC3339)")
	to := fs.String("to", "", "recorded at or before (RFC3339)")
	page := fs.Int("page", 1, "page number")
	perPage := fs.Int("per-page", search.DefaultPerPage, "runs per page")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	filter := simulation.Filter{ProjectName: *name, ProjectPath: *path}
	var err error
	if filter.Status, err = parseStatusFlag(*status); err != nil {
		return err
	}
	if filter.RecordedFrom, err = parseTimeFlag("from", *from); err != nil {
		return err
	}
	if filter.RecordedTo, err = parseTimeFlag("to", *to); err != nil {
		return err
	}

	res, err := c.app.simulations.SearchRuns(ctx, filter, search.PageRequest{Page: *page, PerPage: *perPage})
	if err != nil {
		return err
	}

	if *asJSON {
		snaps := make([]simulation.Snapshot, 0, len(res.Items))
		for _, r := range res.Items {
			snaps = append(snaps, r.Snapshot())
		}
		return c.printJSON(search.PageResult[simulation.Snapshot]{
			Items: snaps, Total: res.Total, Page: res.Page, PerPage: res.PerPage, LastPage: res.LastPage,
		})
	}

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPROJECT\tTOOL\tRECORDED\tREPORT")
	for _, r := range res.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID(), r.Status(), r.ProjectName(), r.ToolVersion(),
			r.RecordedAt().Format(time.RFC3339), r.ReportLocation())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Page %d of %d (%d runs)\n", res.Page, res.LastPage, res.Total)
	return nil
}

func (c *commands) runShow(ctx context.Context, args []string) error {
	id, rest, err := leadingArg(args, "run id")
	if err != nil {
		return err
	}
	fs := newFlagSet("runs show")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parseFlags(fs, rest); err != nil {
		return err
	}

	run, err := c.app.simulations.GetRun(ctx, id)
	if err != nil {
		return err
	}
	snap := run.Snapshot()
	if *asJSON {
		return c.printJSON(snap)
	}

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"ID", snap.ID},
		{"Status", snap.Status.String()},
		{"Project", snap.ProjectName},
		{"Path", snap.ProjectPath},
		{"Tool version", snap.ToolVersion},
		{"Duration", fmt.Sprintf("%gs", snap.Duration)},
		{"Units", fmt.Sprintf("%d / %d", snap.UnitCount, snap.SubUnitCount)},
		{"Recorded", snap.RecordedAt.Format(time.RFC3339)},
		{"Created", snap.CreatedAt.Format(time.RFC3339)},
		{"Updated", snap.UpdatedAt.Format(time.RFC3339)},
		{"Report", snap.ReportLocation},
		{"Input", string(snap.InputConfig)},
		{"Result", string(snap.Result)},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1])
	}
	return tw.Flush()
}

func (c *commands) runReport(ctx context.Context, args []string) error {
	id, rest, err := leadingArg(args, "run id")
	if err != nil {
		return err
	}
	fs := newFlagSet("runs report")
	format := fs.String("format", "", "markdown or json (default from preferences)")
	if err := parseFlags(fs, rest); err != nil {
		return err
	}

	rpt, err := c.app.reports.GenerateRunReport(ctx, id, report.ReportFormat(*format))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, rpt.FilePath)
	return nil
}

// projects dispatches the recent projects subcommands.
func (c *commands) projects(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: projects requires a subcommand", errUsage)
	}
	sub, args := args[0], args[1:]
	uc := c.app.projects

	switch sub {
	case "open":
		path, rest, err := leadingArg(args, "project path")
		if err != nil {
			return err
		}
		fs := newFlagSet("projects open")
		name := fs.String("name", "", "project name")
		toolVersion := fs.String("tool-version", "", "simulation tool version")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		p, err := uc.Open(ctx, path, *name, *toolVersion)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Opened %s (%d times)\n", p.Path, p.OpenCount)
		return nil

	case "list":
		fs := newFlagSet("projects list")
		name := fs.String("name", "", "name or path substring")
		toolVersion := fs.String("tool-version", "", "exact tool version")
		page := fs.Int("page", 1, "page number")
		perPage := fs.Int("per-page", search.DefaultPerPage, "projects per page")
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		res, err := uc.Search(ctx, project.Filter{Name: *name, ToolVersion: *toolVersion},
			search.PageRequest{Page: *page, PerPage: *perPage})
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "PATH\tNAME\tTOOL\tLAST OPENED\tOPENS")
		for _, p := range res.Items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
				p.Path, p.Name, p.ToolVersion, p.LastOpenedAt.Format(time.RFC3339), p.OpenCount)
		}
		return tw.Flush()

	case "remove":
		path, rest, err := leadingArg(args, "project path")
		if err != nil {
			return err
		}
		if err := parseFlags(newFlagSet("projects remove"), rest); err != nil {
			return err
		}
		if err := uc.Remove(ctx, path); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Removed %s\n", path)
		return nil

	case "clear":
		if err := parseFlags(newFlagSet("projects clear"), args); err != nil {
			return err
		}
		if err := uc.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Recent projects cleared")
		return nil

	default:
		return fmt.Errorf("%w: unknown projects subcommand: %s", errUsage, sub)
	}
}

// prefs dispatches the preferences subcommands.
func (c *commands) prefs(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: prefs requires a subcommand", errUsage)
	}
	uc := c.app.preferences

	switch args[0] {
	case "show":
		p, err := uc.Get(ctx)
		if err != nil {
			return err
		}
		return c.printJSON(p)
	case "set":
		if len(args) != 3 {
			return fmt.Errorf("%w: prefs set KEY VALUE (keys: %s)", errUsage, strings.Join(preferences.Keys(), ", "))
		}
		p, err := uc.Set(ctx, args[1], args[2])
		if err != nil {
			if errors.Is(err, preferences.ErrUnknownKey) {
				return fmt.Errorf("%w (keys: %s)", err, strings.Join(preferences.Keys(), ", "))
			}
			return err
		}
		return c.printJSON(p)
	case "reset":
		if err := uc.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Preferences reset to defaults")
		return nil
	default:
		return fmt.Errorf("%w: unknown prefs subcommand: %s", errUsage, args[0])
	}
}

func (c *commands) prune(ctx context.Context) error {
	res, err := c.app.retention.Prune(ctx, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Deleted %d runs, trimmed %d projects\n", res.RunsDeleted, res.ProjectsTrimmed)
	return nil
}

// daemon runs the retention schedule and the status server until ctx ends.
func (c *commands) daemon(ctx context.Context) error {
	cfg := c.app.cfg

	sched := scheduler.New(c.app.retention)
	if cfg.Retention.Schedule != "" {
		if err := sched.Start(ctx, cfg.Retention.Schedule); err != nil {
			return err
		}
		defer sched.Stop()
	}

	if cfg.Metrics.ListenAddr == "" {
		fmt.Fprintln(c.out, "SimDesk daemon running, press Ctrl+C to stop")
		<-ctx.Done()
		return nil
	}

	srv := server.New(cfg.Metrics.ListenAddr, c.app.simulations, c.app.metrics.Handler())
	fmt.Fprintf(c.out, "SimDesk daemon listening on %s, press Ctrl+C to stop\n", cfg.Metrics.ListenAddr)
	return srv.Run(ctx)
}
