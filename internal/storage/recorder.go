package storage

import (
	"github.com/san-kum/droptower/internal/particles"
	"github.com/san-kum/droptower/internal/sim"
)

// Row is one line of status.csv.
type Row struct {
	Time            float64 `json:"time"`
	Phase           string  `json:"phase"`
	GEff            float64 `json:"g_eff"`
	ChamberVelocity float64 `json:"chamber_velocity"`
	KineticEnergy   float64 `json:"kinetic_energy"`
	MeanHeight      float64 `json:"mean_height"`
}

// Recorder is a sim.Observer that samples the system into Rows. Every
// tick is kept when Every is zero or one.
type Recorder struct {
	Every int
	rows  []Row
}

func NewRecorder(every int) *Recorder {
	return &Recorder{Every: every}
}

func (r *Recorder) OnStep(sys *particles.System, tick sim.Tick) {
	if r.Every > 1 && tick.Step%r.Every != 0 {
		return
	}
	r.rows = append(r.rows, Row{
		Time:            tick.Time,
		Phase:           tick.Phase.String(),
		GEff:            tick.GEff,
		ChamberVelocity: tick.ChamberVelocity,
		KineticEnergy:   sys.KineticEnergy(),
		MeanHeight:      sys.MeanHeight(),
	})
}

func (r *Recorder) Rows() []Row { return r.rows }
func (r *Recorder) Reset()      { r.rows = r.rows[:0] }
