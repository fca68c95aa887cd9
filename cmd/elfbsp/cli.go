// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"code.cloudfoundry.org/bytefmt"
	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/google/uuid"
	colorable "github.com/mattn/go-colorable"
	isatty "github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/sisatech/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rfomin/elfbsp/pkg/builder"
	"github.com/rfomin/elfbsp/pkg/elog"
)

var log elog.View

var (
	flagVerbose bool
	flagBackup  bool
	flagFast    bool
	flagMap     string
	flagNoGL    bool
	flagGL5     bool
	flagXNOD    bool
	flagSsect   bool
	flagCost    int
	flagOutput  string
	flagVersion bool
)

func commandInit() {
	flags := rootCmd.Flags()
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&flagBackup, "backup", "b", false, "copy the input file to <name>-<uuid>.bak before rebuilding")
	flags.BoolVarP(&flagFast, "fast", "f", false, "sample partition candidates instead of scanning every seg")
	flags.StringVarP(&flagMap, "map", "m", "", "comma-separated map name or NAME1-NAME2 ranges to restrict the build to")
	flags.BoolVarP(&flagNoGL, "nogl", "n", false, "disable forced extended output (-x, -s, -g); overflow promotion to XNOD and XGL3 for UDMF maps still apply")
	flags.BoolVarP(&flagGL5, "gl5", "g", false, "store XGL3 nodes in SSECTORS (same as -s)")
	flags.BoolVarP(&flagXNOD, "xnod", "x", false, "force extended XNOD output even when classic would fit")
	flags.BoolVarP(&flagSsect, "ssect", "s", false, "store XGL3 nodes in SSECTORS instead of ZNODES/NODES")
	flags.IntVarP(&flagCost, "cost", "c", 11, "partition split cost factor, 1..32")
	flags.StringVarP(&flagOutput, "output", "o", "", "write the rebuilt WAD to this path instead of mutating in place")
	flags.BoolVar(&flagVersion, "version", false, "print version information and exit")

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

var rootCmd = &cobra.Command{
	Use:   "elfbsp [FILE...]",
	Short: "Build BSP node data for classic DOOM-family WAD levels",
	Long: `elfbsp rebuilds the SEGS, SSECTORS, NODES, BLOCKMAP and REJECT lumps
of every map in one or more WAD files, mutating each file in place unless
-o/--output is given.`,
	Args: cobra.ArbitraryArgs,
	RunE: runBuild,
}

// flagSet exposes the root command's pflag.FlagSet for callers (such as
// tests) that want to parse arguments without going through cobra.Execute.
func flagSet() *pflag.FlagSet {
	return rootCmd.Flags()
}

func exitCodeFor(err error) int {
	var fe *fatalError
	if errors.As(err, &fe) {
		return 3
	}
	var nb *nothingBuiltError
	if errors.As(err, &nb) {
		return 1
	}
	return 2
}

type fatalError struct{ msg string }

func (e *fatalError) Error() string { return e.msg }

type nothingBuiltError struct{ msg string }

func (e *nothingBuiltError) Error() string { return e.msg }

func runBuild(cmd *cobra.Command, args []string) error {
	if flagVersion {
		fmt.Printf("elfbsp %s (%s, %s)\n", release, commit, date)
		return nil
	}
	if len(args) == 0 {
		return &fatalError{msg: "no input files given"}
	}

	logger := &elog.CLI{IsVerbose: flagVerbose}
	logrus.SetFormatter(logger)
	log = newDiagLogger(logger)

	fc, err := loadUserConfig()
	if err != nil {
		log.Warnf("ignoring ~/.elfbsprc: %v", err)
	}

	args, err = resolveInputFiles(args, fc.Defaults.Ignore)
	if err != nil {
		return &fatalError{msg: err.Error()}
	}
	if len(args) == 0 {
		return &fatalError{msg: "no input files matched after applying ignore patterns"}
	}

	if flagOutput != "" {
		flagOutput = sanitizeOutputPath(flagOutput)
		if len(args) > 1 {
			return &fatalError{msg: "-o/--output can only be used with a single input file"}
		}
	}

	mapSpec := flagMap
	if mapSpec == "" {
		mapSpec = fc.Defaults.Map
	}
	mapFilter, err := parseMapFilter(mapSpec)
	if err != nil {
		return &fatalError{msg: err.Error()}
	}

	cfg := builder.Config{
		Fast:       flagFast,
		DoBlockmap: true,
		DoReject:   true,
		ForceXNOD:  flagXNOD && !flagNoGL,
		SsectXGL3:  flagSsect || flagGL5,
		SplitCost:  flagCost,
		MapFilter:  mapFilter,
	}
	if err := applyUserConfig(&cfg, fc); err != nil {
		log.Warnf("ignoring ~/.elfbsprc: %v", err)
	}
	if flagNoGL {
		cfg.SsectXGL3 = false
		cfg.ForceXNOD = false
	}

	rows := newSummaryTable()

	var anyBuilt bool
	var anyFailed bool

	for _, path := range args {
		target := path
		if flagOutput != "" {
			target = flagOutput
		}

		if err := prepareTarget(path, target); err != nil {
			log.Errorf("%s: %v", path, err)
			anyFailed = true
			continue
		}

		if flagBackup {
			if err := backupFile(target); err != nil {
				log.Errorf("%s: backup failed: %v", target, err)
				anyFailed = true
				continue
			}
		}

		progress := log.NewProgress(filepath.Base(target), "", 0)

		tele, outcomes, err := builder.BuildFile(context.Background(), target, cfg, log)
		if err != nil {
			progress.Finish(false)
			log.Errorf("%s: %v", target, err)
			anyFailed = true
			continue
		}

		fileOK := true
		for _, o := range outcomes {
			rows.addRow(filepath.Base(target), o.Header, o.Result.String())
			progress.Increment(1)
			if o.Result != builder.OK {
				anyFailed = true
				fileOK = false
			} else {
				anyBuilt = true
			}
		}
		progress.Finish(fileOK)

		if flagVerbose {
			log.Debugf("telemetry for %s: %s", target, spew.Sdump(tele))
		}
		log.Infof("%s: %d map(s) built, %d skipped, %s total warnings",
			target, tele.MapsBuilt, tele.MapsSkipped, bytefmt.ByteSize(uint64(tele.TotalWarnings)))
	}

	rows.render(summaryWriter())

	switch {
	case !anyBuilt && !anyFailed:
		return &nothingBuiltError{msg: "no maps matched the given filters"}
	case anyFailed && !anyBuilt:
		msg := "every input file failed"
		if dl, ok := log.(*diagLogger); ok {
			if dump := dl.Dump(); dump != "" {
				msg = fmt.Sprintf("%s:\n%s", msg, dump)
			}
		}
		return &fatalError{msg: msg}
	case anyFailed:
		return errors.New("one or more files failed")
	default:
		return nil
	}
}

// prepareTarget ensures target exists and is ready to be opened for
// mutation: when -o/--output names a different path than the source, the
// source is copied there first so the build can mutate the copy in place.
func prepareTarget(src, target string) error {
	if src == target {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// backupFile copies path to a sibling "<name>-<uuid>.bak" file before the
// build mutates it in place.
func backupFile(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	backupPath := path + "-" + uuid.New().String() + ".bak"
	out, err := os.Create(backupPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

type summaryTable struct {
	rows [][]string
}

func newSummaryTable() *summaryTable { return &summaryTable{} }

func (t *summaryTable) addRow(file, mapName, result string) {
	t.rows = append(t.rows, []string{file, mapName, colorizeResult(result)})
}

// colorizeResult tints "ok" green and anything else yellow/red so a long
// build's summary table is easy to scan.
func colorizeResult(result string) string {
	switch result {
	case "ok":
		return color.GreenString(result)
	case "cancelled", "lump overflow":
		return color.YellowString(result)
	default:
		return color.RedString(result)
	}
}

// summaryWriter wraps os.Stdout with go-colorable on Windows consoles that
// don't natively understand ANSI escapes, and disables color entirely when
// stdout isn't a terminal (piped into a file, CI logs).
func summaryWriter() io.Writer {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		color.NoColor = true
		return os.Stdout
	}
	return colorable.NewColorableStdout()
}

func (t *summaryTable) render(w io.Writer) {
	if len(t.rows) == 0 {
		return
	}
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"file", "map", "result"})
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, r := range t.rows {
		tw.Append(r)
	}
	tw.Render()
}

