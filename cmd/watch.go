package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"flowtop/collector"
	"flowtop/engine"
	"flowtop/model"
	"flowtop/render"
)

// ── Main Watch Loop ─────────────────────────────────────────────────────────

// runWatch prints one plain-text frame per interval until interrupted, the
// recording runs out, or -count frames have been printed. Frames are
// append-only and carry no escape sequences, so output pipes cleanly into
// tee, grep and log files.
func runWatch(eng *engine.Engine, sess *model.Session, cfg Config) error {
	// Warm-up sample. The first tick only seeds the counter store, so the
	// first printed frame carries real rates instead of a column of zeros.
	if _, err := eng.Tick(); errors.Is(err, collector.ErrEndOfRecording) {
		printSummary(eng)
		return nil
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(sess.Interval)
	defer ticker.Stop()

	iteration := 0

	for {
		select {
		case <-sig:
			fmt.Println("\nExiting.")
			printSummary(eng)
			return nil
		case <-ticker.C:
			iteration++
			frame, err := eng.Tick()
			if err != nil {
				if errors.Is(err, collector.ErrEndOfRecording) {
					printSummary(eng)
					return nil
				}
				fmt.Print(render.Batch{}.RenderUnavailable(headerInfo(eng, time.Now()), sess, err))
			} else {
				rows := engine.Rank(frame.Groups, sess.Sort, sess.Top)
				fmt.Print(render.Batch{}.RenderFrame(headerInfo(eng, frame.At), rows, sess))
			}

			if cfg.WatchCount > 0 && iteration >= cfg.WatchCount {
				printSummary(eng)
				return nil
			}
		}
	}
}

func headerInfo(eng *engine.Engine, at time.Time) render.HeaderInfo {
	in, out := eng.Totals()
	return render.HeaderInfo{
		At:       at,
		CmdEcho:  eng.Describe(),
		TotalIn:  in,
		TotalOut: out,
		PeakKBs:  eng.History.PeakKBs(),
	}
}

func printSummary(eng *engine.Engine) {
	in, out := eng.Totals()
	fmt.Printf("session: in %s  out %s  peak %.1f KB/s\n",
		humanize.IBytes(in), humanize.IBytes(out), eng.History.PeakKBs())
}
