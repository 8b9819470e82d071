package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/droptower/internal/particles"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// WriteStatusCSV writes rows with a header line.
func WriteStatusCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(statusHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			formatFloat(r.Time),
			r.Phase,
			formatFloat(r.GEff),
			formatFloat(r.ChamberVelocity),
			formatFloat(r.KineticEnergy),
			formatFloat(r.MeanHeight),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePositionsCSV writes one line per particle with a header line.
func WritePositionsCSV(w io.Writer, ps []particles.Particle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(positionsHeader); err != nil {
		return err
	}
	for _, p := range ps {
		record := []string{
			formatFloat(p.X), formatFloat(p.Y),
			formatFloat(p.VX), formatFloat(p.VY),
			formatFloat(p.Radius), formatFloat(p.Mass),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type ExportData struct {
	Meta      *RunMetadata         `json:"meta"`
	Trace     []Row                `json:"trace"`
	Positions []particles.Particle `json:"positions"`
}

// ExportJSON writes a saved run as a single JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	trace, err := s.LoadTrace(runID)
	if err != nil {
		return err
	}
	positions, err := s.LoadPositions(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Meta: meta, Trace: trace, Positions: positions})
}

// ExportCSV copies the status trace of a saved run to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	trace, err := s.LoadTrace(runID)
	if err != nil {
		return err
	}
	return WriteStatusCSV(w, trace)
}
