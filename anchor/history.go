package anchor

import (
	"fmt"
	"sync"

	"github.com/golang/geo/s1"
	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/arplane/spatialmath"
)

// PlaneStats summarizes the equations solved for one plane anchor over a session.
type PlaneStats struct {
	ID     uuid.UUID
	Solves int
	Latest spatialmath.PlaneEquation
	MeanD  float64
	// StdDevD is the population standard deviation of d.
	StdDevD float64
	// NormalDrift is the largest angle between the first solved normal and any later one.
	NormalDrift s1.Angle
}

// PlaneHistory records every equation solved for each plane anchor, keeping anchors in the
// order they were first seen. It is safe for concurrent use.
type PlaneHistory struct {
	mu    sync.Mutex
	order []uuid.UUID
	byID  map[uuid.UUID][]spatialmath.PlaneEquation
}

// NewPlaneHistory returns an empty history.
func NewPlaneHistory() *PlaneHistory {
	return &PlaneHistory{byID: map[uuid.UUID][]spatialmath.PlaneEquation{}}
}

// Record appends an equation solved for the anchor id.
func (h *PlaneHistory) Record(id uuid.UUID, eq spatialmath.PlaneEquation) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.byID[id]; !ok {
		h.order = append(h.order, id)
	}
	h.byID[id] = append(h.byID[id], eq)
}

// Len returns the number of distinct planes recorded.
func (h *PlaneHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.order)
}

// Equations returns a copy of the equations recorded for id, oldest first.
func (h *PlaneHistory) Equations(id uuid.UUID) []spatialmath.PlaneEquation {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]spatialmath.PlaneEquation(nil), h.byID[id]...)
}

// Stats summarizes every recorded plane in first-seen order.
func (h *PlaneHistory) Stats() ([]PlaneStats, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]PlaneStats, 0, len(h.order))
	for _, id := range h.order {
		eqs := h.byID[id]
		ds := stats.Float64Data(lo.Map(eqs, func(eq spatialmath.PlaneEquation, _ int) float64 {
			return float64(eq.D)
		}))
		mean, err := stats.Mean(ds)
		if err != nil {
			return nil, errors.Wrapf(err, "plane %s", id)
		}
		stdDev, err := stats.StandardDeviation(ds)
		if err != nil {
			return nil, errors.Wrapf(err, "plane %s", id)
		}

		first := eqs[0].Normal()
		var drift s1.Angle
		for _, eq := range eqs[1:] {
			if angle := first.Angle(eq.Normal()); angle > drift {
				drift = angle
			}
		}

		out = append(out, PlaneStats{
			ID:          id,
			Solves:      len(eqs),
			Latest:      eqs[len(eqs)-1],
			MeanD:       mean,
			StdDevD:     stdDev,
			NormalDrift: drift,
		})
	}
	return out, nil
}

// Table renders Stats as a text table.
func (h *PlaneHistory) Table() (string, error) {
	planeStats, err := h.Stats()
	if err != nil {
		return "", err
	}
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Anchor", "Solves", "Latest", "Mean d", "Std dev d", "Normal drift"})
	for i, ps := range planeStats {
		t.AppendRow(table.Row{
			i + 1,
			ps.ID.String(),
			ps.Solves,
			ps.Latest.String(),
			fmt.Sprintf("%.4f", ps.MeanD),
			fmt.Sprintf("%.4f", ps.StdDevD),
			fmt.Sprintf("%.2f°", ps.NormalDrift.Degrees()),
		})
	}
	return t.Render(), nil
}
