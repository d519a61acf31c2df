// Package cli contains the arplane command line tool.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

// CLI flags.
const (
	flagConfig = "config"
	flagDebug  = "debug"

	solveFlagPlane  = "plane"
	solveFlagCamera = "camera"

	replayFlagStream  = "stream"
	replayFlagSummary = "summary"
)

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "arplane",
		Usage:           "solve camera-space plane equations for tracked AR planes",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "solve",
				Usage:     "express a plane in a camera's frame",
				UsageText: "arplane solve --plane <16 values> --camera <16 values>",
				Description: "Transforms are 4x4 matrices given as 16 column-major values separated by commas or spaces.\n" +
					"The word \"identity\" may be used in place of the values.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     solveFlagPlane,
						Required: true,
						Usage:    "plane anchor transform (plane local to world)",
					},
					&cli.StringFlag{
						Name:     solveFlagCamera,
						Required: true,
						Usage:    "camera transform (camera to world)",
					},
				},
				Action: SolveAction,
			},
			{
				Name:      "replay",
				Usage:     "run a recorded anchor session and print the debug console",
				ArgsUsage: "<recording>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  replayFlagStream,
						Usage: "print debug lines as they are produced instead of once the replay is done",
					},
					&cli.BoolFlag{
						Name:  replayFlagSummary,
						Usage: "print a table summarizing how each plane's equation changed over the session",
					},
				},
				Action: ReplayAction,
			},
			{
				Name:   "version",
				Usage:  "print version info for this program",
				Action: VersionAction,
			},
		},
	}
}
