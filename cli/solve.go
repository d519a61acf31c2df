package cli

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/arplane/spatialmath"
)

// SolveAction prints the plane equation of --plane in the frame of --camera.
func SolveAction(c *cli.Context) error {
	plane, err := ParseTransform(c.String(solveFlagPlane))
	if err != nil {
		return errors.Wrapf(err, "invalid --%s", solveFlagPlane)
	}
	camera, err := ParseTransform(c.String(solveFlagCamera))
	if err != nil {
		return errors.Wrapf(err, "invalid --%s", solveFlagCamera)
	}
	if !camera.IsRigid(1e-3) {
		warningf(c.App.ErrWriter, "camera transform is not rigid, the result may be meaningless")
	}

	eq, err := spatialmath.SolvePlaneEquation(plane, camera)
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", eq)
	return nil
}
