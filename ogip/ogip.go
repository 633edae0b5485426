package ogip

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-gamma/dataset"
	"github.com/cwbudde/algo-gamma/gti"
	"github.com/cwbudde/algo-gamma/irf"
	"github.com/cwbudde/algo-gamma/spectrum"
)

// ErrNoARF is returned when the exposure file of a dataset group is missing.
// Unlike the background and response files, the exposure is required to
// reconstruct the dataset geometry.
var ErrNoARF = errors.New("ogip: missing arf file")

// PHAName returns the counts filename for a dataset name. The companion
// files substitute bkg, arf and rmf for the pha prefix.
func PHAName(name string) string { return "pha_obs" + name + ".yaml" }

func bkgName(name string) string { return "bkg_obs" + name + ".yaml" }
func arfName(name string) string { return "arf_obs" + name + ".yaml" }
func rmfName(name string) string { return "rmf_obs" + name + ".yaml" }

type intervalRecord struct {
	Start float64 `yaml:"start"`
	Stop  float64 `yaml:"stop"`
}

type metaColumn struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"values"`
}

type phaFile struct {
	Name        string           `yaml:"name"`
	EnergyEdges []float64        `yaml:"energy_edges"`
	Counts      []float64        `yaml:"counts"`
	MaskSafe    []bool           `yaml:"mask_safe,omitempty"`
	Acceptance  []float64        `yaml:"acceptance,omitempty"`
	Livetime    float64          `yaml:"livetime,omitempty"`
	GTI         []intervalRecord `yaml:"gti,omitempty"`
	Meta        []metaColumn     `yaml:"meta,omitempty"`
}

type bkgFile struct {
	EnergyEdges   []float64 `yaml:"energy_edges"`
	CountsOff     []float64 `yaml:"counts_off"`
	AcceptanceOff []float64 `yaml:"acceptance_off,omitempty"`
}

type arfFile struct {
	EnergyEdges []float64 `yaml:"energy_edges"`
	Exposure    []float64 `yaml:"exposure"`
	Unit        string    `yaml:"unit,omitempty"`
}

type rmfFile struct {
	EnergyEdgesTrue []float64   `yaml:"energy_edges_true"`
	EnergyEdgesReco []float64   `yaml:"energy_edges_reco"`
	Matrix          [][]float64 `yaml:"matrix"`
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("ogip: marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("ogip: %w", err)
	}
	return nil
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ogip: %w", err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("ogip: parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Write stores the dataset as a four-file group under dir. Absent components
// produce absent files; a later Read restores exactly what was written.
func Write(d *dataset.SpectrumDatasetOnOff, dir string) error {
	name := d.Name()

	pha := phaFile{
		Name:     name,
		Livetime: d.Livetime(),
	}
	if d.Counts() != nil {
		pha.EnergyEdges = d.Counts().Axis().Edges()
		pha.Counts = d.Counts().Data()
	}
	if m := d.MaskSafe(); m != nil {
		pha.MaskSafe = m.Data()
		if pha.EnergyEdges == nil {
			pha.EnergyEdges = m.Axis().Edges()
		}
	}
	if a := d.Acceptance(); a != nil {
		pha.Acceptance = a.Data()
	}
	if g := d.GTI(); g != nil {
		for _, iv := range g.Intervals() {
			pha.GTI = append(pha.GTI, intervalRecord{Start: iv.Start, Stop: iv.Stop})
		}
	}
	if m := d.Meta(); m != nil {
		for _, col := range m.Names() {
			pha.Meta = append(pha.Meta, metaColumn{Name: col, Values: m.Column(col)})
		}
	}
	if err := writeYAML(filepath.Join(dir, PHAName(name)), pha); err != nil {
		return err
	}

	if off := d.CountsOff(); off != nil {
		bkg := bkgFile{
			EnergyEdges: off.Axis().Edges(),
			CountsOff:   off.Data(),
		}
		if a := d.AcceptanceOff(); a != nil {
			bkg.AcceptanceOff = a.Data()
		}
		if err := writeYAML(filepath.Join(dir, bkgName(name)), bkg); err != nil {
			return err
		}
	}

	if exp := d.Exposure(); exp != nil {
		arf := arfFile{
			EnergyEdges: exp.Axis().Edges(),
			Exposure:    exp.Data(),
			Unit:        exp.Unit(),
		}
		if err := writeYAML(filepath.Join(dir, arfName(name)), arf); err != nil {
			return err
		}
	}

	if k := d.EDisp(); k != nil {
		rmf := rmfFile{
			EnergyEdgesTrue: k.AxisTrue().Edges(),
			EnergyEdgesReco: k.AxisReco().Edges(),
		}
		nTrue, nReco := k.AxisTrue().NBins(), k.AxisReco().NBins()
		rmf.Matrix = make([][]float64, nTrue)
		for l := 0; l < nTrue; l++ {
			row := make([]float64, nReco)
			for j := 0; j < nReco; j++ {
				row[j] = k.At(l, j)
			}
			rmf.Matrix[l] = row
		}
		if err := writeYAML(filepath.Join(dir, rmfName(name)), rmf); err != nil {
			return err
		}
	}

	return nil
}

// Read reconstructs an on/off dataset from the file group anchored at a
// counts (pha) file. A missing background or response file is logged and
// leaves the component absent; a missing exposure file is an error.
func Read(phaPath string) (*dataset.SpectrumDatasetOnOff, error) {
	var pha phaFile
	if err := readYAML(phaPath, &pha); err != nil {
		return nil, err
	}
	axis, err := spectrum.NewEnergyAxis(pha.EnergyEdges)
	if err != nil {
		return nil, fmt.Errorf("ogip: %s: %w", filepath.Base(phaPath), err)
	}

	cfg := dataset.OnOffConfig{
		Config: dataset.Config{
			Name:     pha.Name,
			Livetime: pha.Livetime,
		},
	}
	if pha.Counts != nil {
		if cfg.Counts, err = spectrum.FromData(axis, pha.Counts, ""); err != nil {
			return nil, fmt.Errorf("ogip: counts: %w", err)
		}
	}
	if pha.MaskSafe != nil {
		if cfg.MaskSafe, err = spectrum.MaskFromData(axis, pha.MaskSafe); err != nil {
			return nil, fmt.Errorf("ogip: mask_safe: %w", err)
		}
	}
	if pha.Acceptance != nil {
		if cfg.Acceptance, err = spectrum.FromData(axis, pha.Acceptance, ""); err != nil {
			return nil, fmt.Errorf("ogip: acceptance: %w", err)
		}
	}
	if len(pha.GTI) > 0 {
		intervals := make([]gti.Interval, len(pha.GTI))
		for i, iv := range pha.GTI {
			intervals[i] = gti.Interval{Start: iv.Start, Stop: iv.Stop}
		}
		if cfg.GTI, err = gti.New(intervals); err != nil {
			return nil, fmt.Errorf("ogip: gti: %w", err)
		}
	}
	if len(pha.Meta) > 0 {
		cfg.Meta = dataset.NewMetaTable()
		for _, col := range pha.Meta {
			cfg.Meta.AddColumn(col.Name, col.Values)
		}
	}

	dir := filepath.Dir(phaPath)

	bkgPath := filepath.Join(dir, bkgName(pha.Name))
	var bkg bkgFile
	switch err := readYAML(bkgPath, &bkg); {
	case err == nil:
		bkgAxis, err := spectrum.NewEnergyAxis(bkg.EnergyEdges)
		if err != nil {
			return nil, fmt.Errorf("ogip: %s: %w", bkgName(pha.Name), err)
		}
		if cfg.CountsOff, err = spectrum.FromData(bkgAxis, bkg.CountsOff, ""); err != nil {
			return nil, fmt.Errorf("ogip: counts_off: %w", err)
		}
		if bkg.AcceptanceOff != nil {
			if cfg.AcceptanceOff, err = spectrum.FromData(bkgAxis, bkg.AcceptanceOff, ""); err != nil {
				return nil, fmt.Errorf("ogip: acceptance_off: %w", err)
			}
		}
	case errors.Is(err, os.ErrNotExist):
		log.Printf("ogip: no background file %s, continuing without off counts", bkgPath)
	default:
		return nil, err
	}

	arfPath := filepath.Join(dir, arfName(pha.Name))
	var arf arfFile
	switch err := readYAML(arfPath, &arf); {
	case err == nil:
		arfAxis, err := spectrum.NewEnergyAxis(arf.EnergyEdges)
		if err != nil {
			return nil, fmt.Errorf("ogip: %s: %w", arfName(pha.Name), err)
		}
		if cfg.Exposure, err = spectrum.FromData(arfAxis, arf.Exposure, arf.Unit); err != nil {
			return nil, fmt.Errorf("ogip: exposure: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrNoARF, arfPath)
	default:
		return nil, err
	}

	rmfPath := filepath.Join(dir, rmfName(pha.Name))
	var rmf rmfFile
	switch err := readYAML(rmfPath, &rmf); {
	case err == nil:
		axisTrue, err := spectrum.NewEnergyAxis(rmf.EnergyEdgesTrue)
		if err != nil {
			return nil, fmt.Errorf("ogip: %s: %w", rmfName(pha.Name), err)
		}
		axisReco, err := spectrum.NewEnergyAxis(rmf.EnergyEdgesReco)
		if err != nil {
			return nil, fmt.Errorf("ogip: %s: %w", rmfName(pha.Name), err)
		}
		flat := make([]float64, 0, axisTrue.NBins()*axisReco.NBins())
		for _, row := range rmf.Matrix {
			flat = append(flat, row...)
		}
		if cfg.EDisp, err = irf.NewEDispKernel(axisTrue, axisReco, flat); err != nil {
			return nil, fmt.Errorf("ogip: %s: %w", rmfName(pha.Name), err)
		}
	case errors.Is(err, os.ErrNotExist):
		log.Printf("ogip: no response file %s, continuing without energy dispersion", rmfPath)
	default:
		return nil, err
	}

	return dataset.NewOnOff(cfg)
}
