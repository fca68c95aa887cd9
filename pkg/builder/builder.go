// SPDX-License-Identifier: GPL-2.0-or-later

// Package builder is the driver: it sequences map loading, BSP
// construction, blockmap/reject building and lump emission across every
// map in a WAD file, the way pkg/vdisk.Build sequences a disk image build
// in the teacher repo.
package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/rfomin/elfbsp/pkg/blockmap"
	"github.com/rfomin/elfbsp/pkg/bsp"
	"github.com/rfomin/elfbsp/pkg/elog"
	"github.com/rfomin/elfbsp/pkg/maploader"
	"github.com/rfomin/elfbsp/pkg/nodeio"
	"github.com/rfomin/elfbsp/pkg/reject"
	"github.com/rfomin/elfbsp/pkg/wad"
)

// Result is the per-map outcome spec.md §4.8 defines.
type Result int

const (
	OK Result = iota
	Cancelled
	BadFile
	LumpOverflow
)

func (r Result) String() string {
	switch r {
	case OK:
		return "ok"
	case Cancelled:
		return "cancelled"
	case BadFile:
		return "bad file"
	case LumpOverflow:
		return "lump overflow"
	default:
		return "unknown"
	}
}

// Config is the build configuration exposed to callers (spec.md §6).
type Config struct {
	Fast       bool
	DoBlockmap bool
	DoReject   bool
	ForceXNOD  bool
	SsectXGL3  bool
	SplitCost  int

	// MapFilter, if non-nil, restricts the build to maps for which it
	// returns true (the CLI's -m/--map range filter).
	MapFilter func(levelIdx int, header string) bool
}

// Telemetry aggregates non-fatal diagnostics across every map built in one
// file (spec.md §6).
type Telemetry struct {
	TotalWarnings    int
	TotalMinorIssues int
	MapsBuilt        int
	MapsSkipped      int
}

// MapOutcome reports what happened to one map.
type MapOutcome struct {
	Header string
	Result Result
	Err    error
}

var ErrLumpOverflow = errors.New("builder: output lump count exceeds even the extended format's limits")

// BuildFile opens path, builds every map it contains (in ascending order,
// spec.md §5), and writes the mutated WAD back. A Cancelled outcome on any
// map aborts the whole file without writing anything.
func BuildFile(ctx context.Context, path string, cfg Config, log elog.Logger) (Telemetry, []MapOutcome, error) {
	if log == nil {
		log = noopLogger{}
	}

	c, err := wad.Open(path)
	if err != nil {
		return Telemetry{}, nil, fmt.Errorf("builder: opening %q: %w", path, err)
	}
	defer c.Close()

	var tele Telemetry
	var outcomes []MapOutcome

	if err := c.BeginWrite(); err != nil {
		return tele, nil, err
	}

	for i := 0; i < c.LevelCount(); i++ {
		header := c.LevelHeader(i)

		if cfg.MapFilter != nil && !cfg.MapFilter(i, header) {
			tele.MapsSkipped++
			continue
		}

		res, err := BuildMap(ctx, c, i, cfg, log, &tele)
		outcomes = append(outcomes, MapOutcome{Header: header, Result: res, Err: err})

		switch res {
		case Cancelled:
			log.Warnf("build cancelled while processing map %q", header)
			return tele, outcomes, ErrCancelledBuild
		case OK:
			tele.MapsBuilt++
		default:
			log.Warnf("map %q: %s: %v", header, res, err)
		}
	}

	if err := c.EndWrite(); err != nil {
		return tele, outcomes, fmt.Errorf("builder: writing %q: %w", path, err)
	}

	return tele, outcomes, nil
}

// ErrCancelledBuild is returned by BuildFile when the build was cancelled
// partway through; the WAD is left untouched.
var ErrCancelledBuild = errors.New("builder: build cancelled")

// BuildMap runs the full per-map sequence: load, detect polyobjects (done
// during load), build the BSP tree, order subsectors clockwise, save, emit
// blockmap and reject (spec.md §4.8).
func BuildMap(ctx context.Context, c *wad.Container, levelIdx int, cfg Config, log elog.Logger, tele *Telemetry) (Result, error) {
	lv, format, err := maploader.Load(c, levelIdx)
	if err != nil {
		return BadFile, err
	}

	if len(lv.Linedefs) > 0 && lv.NumRealLines > 0 {
		b := bsp.NewBuilder(ctx, lv, bsp.Config{Fast: cfg.Fast, SplitCost: cfg.SplitCost})
		if err := b.Build(); err != nil {
			if errors.Is(err, bsp.ErrCancelled) {
				return Cancelled, err
			}
			return BadFile, err
		}
		bsp.ClockwiseOrder(lv)
	}

	tele.TotalWarnings += lv.Warnings
	tele.TotalMinorIssues += lv.MinorIssues

	res, err := save(c, levelIdx, lv, format, cfg, log)
	if err != nil {
		return res, err
	}

	if cfg.DoBlockmap {
		bm := blockmap.Build(lv)
		writeBlockmap(c, levelIdx, bm, log)
	}

	if cfg.DoReject {
		matrix := reject.Build(lv)
		w := c.EnsureOutputLump(levelIdx, "REJECT", len(matrix))
		w.Write(matrix)
		w.Finish()
	}

	return OK, nil
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{})   {}
func (noopLogger) Errorf(string, ...interface{})   {}
func (noopLogger) Infof(string, ...interface{})    {}
func (noopLogger) Printf(string, ...interface{})   {}
func (noopLogger) Warnf(string, ...interface{})    {}
func (noopLogger) IsInfoEnabled() bool  { return false }
func (noopLogger) IsDebugEnabled() bool { return false }
