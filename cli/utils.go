package cli

import (
	"fmt"
	"io"
	"runtime/debug"
	"strconv"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/arplane/config"
	"go.viam.com/arplane/logging"
	"go.viam.com/arplane/recording"
	"go.viam.com/arplane/spatialmath"
)

// printf prints a line to w.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// warningf prints a warning line to w with a highlighted prefix.
func warningf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	color.New(color.FgYellow, color.Bold).Fprint(w, "Warning: ")
	printf(w, format, a...)
}

// ParseTransform parses 16 column-major matrix values separated by commas or whitespace.
// "identity" returns the identity transform.
func ParseTransform(raw string) (spatialmath.RigidTransform, error) {
	if strings.EqualFold(strings.TrimSpace(raw), "identity") {
		return spatialmath.NewIdentityTransform(), nil
	}
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	values := make([]float32, 0, len(fields))
	for _, field := range fields {
		v, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return spatialmath.RigidTransform{}, errors.Wrapf(err, "bad matrix value %q", field)
		}
		values = append(values, float32(v))
	}
	return recording.TransformFromSlice(values)
}

// loadConfig reads the --config file, or the defaults when none is given. --debug overrides
// the configured level.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String(flagConfig); path != "" {
		var err error
		if cfg, err = config.Read(path); err != nil {
			return nil, err
		}
	}
	if c.Bool(flagDebug) {
		cfg.Debug = true
	}
	return cfg, nil
}

// newLogger returns a logger writing to the app's error writer and, when configured, to a
// rotating log file. The returned function releases the file.
func newLogger(c *cli.Context, cfg *config.Config) (logging.Logger, func() error) {
	appenders := []logging.Appender{logging.NewWriterAppender(c.App.ErrWriter)}
	closeFile := func() error { return nil }
	if cfg.LogFile != nil {
		fileAppender, closer := logging.NewFileAppender(cfg.LogFile.FileAppenderConfig())
		appenders = append(appenders, fileAppender)
		closeFile = closer.Close
	}
	return logging.NewLogger("arplane", cfg.Level(), appenders...), closeFile
}

// VersionAction prints the module version this binary was built from.
func VersionAction(c *cli.Context) error {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return errors.New("error reading build info")
	}
	if c.Bool(flagDebug) {
		printf(c.App.Writer, "%s", info.String())
	}
	version := info.Main.Version
	if version == "" {
		version = "(devel)"
	}
	printf(c.App.Writer, "version: %s", version)
	printf(c.App.Writer, "go: %s", info.GoVersion)
	return nil
}
