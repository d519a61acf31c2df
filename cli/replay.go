package cli

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/arplane/anchor"
	"go.viam.com/arplane/debugconsole"
	"go.viam.com/arplane/logging"
	"go.viam.com/arplane/recording"
)

// ReplayAction runs a recording through a Processor and prints the debug console.
func ReplayAction(c *cli.Context) (err error) {
	if c.Args().Len() != 1 {
		return errors.New("replay takes exactly one recording file")
	}
	path := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, closeLogger := newLogger(c, cfg)
	defer func() {
		err = multierr.Combine(err, closeLogger())
	}()

	console := debugconsole.NewConsole(cfg.Console.MaxLines)
	console.SetEnabled(*cfg.Console.Enabled)

	// sent counts every line the console accepted, including ones it later trimmed. With
	// --stream each line is also printed before the next event is handled.
	var sent int
	stream := c.Bool(replayFlagStream)
	sink := debugconsole.Multi(console, debugconsole.SinkFunc(func(line string) {
		if !console.Enabled() {
			return
		}
		sent++
		if stream {
			printf(c.App.Writer, "%s", line)
		}
	}))

	opts := []anchor.Option{
		anchor.WithTimestampFormat(cfg.TimestampFormat),
		anchor.WithDescribePlanes(cfg.DescribePlanes),
	}
	var history *anchor.PlaneHistory
	if c.Bool(replayFlagSummary) {
		history = anchor.NewPlaneHistory()
		opts = append(opts, anchor.WithHistory(history))
	}
	processor := anchor.NewProcessor(sink, logger.Sublogger("anchor"), opts...)

	count, err := replayFile(path, processor, logger)
	console.Close()
	if err != nil {
		return err
	}

	logger.Debugw("replay finished", "path", path, "events", count, "lines", sent)
	if !stream && console.Len() > 0 {
		if sent > console.Len() {
			warningf(c.App.ErrWriter,
				"console kept the last %d of %d lines; use --stream or console.max_lines -1 to print all of them",
				console.Len(), sent)
		}
		printf(c.App.Writer, "%s", console.Text())
	}
	if history != nil {
		summary, err := history.Table()
		if err != nil {
			return err
		}
		printf(c.App.Writer, "%s", summary)
	}
	return nil
}

// replayFile feeds every event of the recording at path to processor and returns how many
// events were replayed.
func replayFile(path string, processor *anchor.Processor, logger logging.Logger) (int, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warnw("cannot close recording", "path", path, "error", err)
		}
	}()

	reader := recording.NewReader(f)
	for {
		ev, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return reader.Count(), nil
		}
		if err != nil {
			return reader.Count(), errors.Wrapf(err, "cannot read %q", path)
		}
		if err := replayEvent(ev, processor); err != nil {
			return reader.Count(), errors.Wrapf(err, "event %d of %q", reader.Count(), path)
		}
	}
}

func replayEvent(ev recording.Event, processor *anchor.Processor) error {
	kind, err := ev.EventKind()
	if err != nil {
		return err
	}
	anchors, err := ev.ToAnchors()
	if err != nil {
		return err
	}
	frame, err := ev.Frame()
	if err != nil {
		return err
	}
	processor.HandleAnchors(kind, anchors, frame)
	return nil
}
