package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/cafe01/timestats"
)

var (
	demoStructured bool
	demoConfigPath string
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Instrument a sample workload and print the timing report",
	Long: `Demo runs a small nested workload through the profiler and prints the
resulting report: an ANSI table by default, or the raw row sequence as
JSON with --structured.`,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().BoolVar(&demoStructured, "structured", false, "Emit raw rows as JSON instead of a rendered table")
	demoCmd.Flags().StringVar(&demoConfigPath, "config", "", "Path to a "+timestats.ConfigFileName+" config file")
}

func runDemo(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(demoConfigPath)
	if err != nil {
		return err
	}
	opts, err := cfg.ProfilerOptions()
	if err != nil {
		return err
	}

	p := timestats.New(opts...)
	if err := sampleWorkload(p); err != nil {
		return err
	}

	if demoStructured {
		out, err := rowsJSON(p.CollectRows())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), p.RenderTable())
	return nil
}

func loadConfig(path string) (*timestats.Config, error) {
	if path == "" {
		return timestats.DetectConfig()
	}
	return timestats.LoadConfig(path)
}

// sampleWorkload nests a few scopes and checkpoints with short sleeps
// so the report shows distinct severities.
func sampleWorkload(p *timestats.Profiler) error {
	steps := []struct {
		sleep time.Duration
		args  []any
	}{
		{0, []any{"begin", "dispatch"}},
		{2 * time.Millisecond, []any{"begin", "render", "comment", "template lookup"}},
		{15 * time.Millisecond, []any{"checkpoint: assets"}},
		{60 * time.Millisecond, []any{"end", "render"}},
		{5 * time.Millisecond, []any{"end", "dispatch", "comment", "request done"}},
	}
	for _, step := range steps {
		time.Sleep(step.sleep)
		if _, err := p.Profile(step.args...); err != nil {
			return err
		}
	}
	return nil
}

// rowsJSON serializes rows as a JSON array; open scopes carry no
// elapsed field.
func rowsJSON(rows []timestats.Row) ([]byte, error) {
	out := "[]"
	var err error
	for i, row := range rows {
		prefix := fmt.Sprintf("%d.", i)
		if out, err = sjson.Set(out, prefix+"depth", row.Depth); err != nil {
			return nil, err
		}
		if out, err = sjson.Set(out, prefix+"label", row.Label); err != nil {
			return nil, err
		}
		if out, err = sjson.Set(out, prefix+"is_scope", row.IsScope); err != nil {
			return nil, err
		}
		if row.HasElapsed {
			if out, err = sjson.Set(out, prefix+"elapsed_seconds", row.Elapsed.Seconds()); err != nil {
				return nil, err
			}
		}
	}
	return pretty.Pretty([]byte(out)), nil
}
