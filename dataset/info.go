package dataset

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-gamma/stats"
)

// Info is a scalar summary of a dataset, aggregated over the safe mask.
// Rates are per second of livetime; Significance is the signed square root
// of the test statistic of the excess.
type Info struct {
	Name           string
	StatType       string
	Livetime       float64 // seconds
	NBins          int
	NBinsSafe      int
	CountsSum      float64
	BackgroundSum  float64
	ExcessSum      float64
	Significance   float64
	CountsRate     float64 // 1/s
	BackgroundRate float64 // 1/s
	ExcessRate     float64 // 1/s

	// On/off extras; zero for plain datasets.
	CountsOffSum     float64
	Alpha            float64 // average acceptance ratio
	AcceptanceSum    float64
	AcceptanceOffSum float64
}

// effectiveLivetime prefers the GTI time sum over the stored livetime.
func (d *SpectrumDataset) effectiveLivetime() float64 {
	if d.gtis != nil && d.gtis.Len() > 0 {
		return d.gtis.TimeSum()
	}
	return d.livetime
}

// Info returns the scalar summary of the dataset over its safe mask.
func (d *SpectrumDataset) Info() (Info, error) {
	info := Info{
		Name:     d.name,
		StatType: d.StatType(),
		Livetime: d.effectiveLivetime(),
	}
	safe := d.MaskSafe()
	if axis, err := d.recoAxis(); err == nil {
		info.NBins = axis.NBins()
	}
	if safe != nil {
		info.NBinsSafe = safe.CountTrue()
	}

	if d.counts != nil {
		sum, err := d.counts.MaskedSum(safe)
		if err != nil {
			return Info{}, err
		}
		info.CountsSum = sum
	}
	if d.background != nil {
		sum, err := d.background.Evaluate().MaskedSum(safe)
		if err != nil {
			return Info{}, err
		}
		info.BackgroundSum = sum
	}
	info.ExcessSum = info.CountsSum - info.BackgroundSum

	cs := stats.CashCountsStatistic{NOn: info.CountsSum, MuBkg: info.BackgroundSum}
	info.Significance = cs.Significance()

	if t := info.Livetime; t > 0 {
		info.CountsRate = info.CountsSum / t
		info.BackgroundRate = info.BackgroundSum / t
		info.ExcessRate = info.ExcessSum / t
	}
	return info, nil
}

// String returns a multi-line human-readable summary.
func (d *SpectrumDataset) String() string {
	info, err := d.Info()
	if err != nil {
		return fmt.Sprintf("SpectrumDataset %q (invalid: %v)", d.name, err)
	}
	return formatInfo("SpectrumDataset", info, nil)
}

// Info returns the scalar summary of the on/off dataset over its safe mask.
// The background column reports alpha * counts_off and the significance uses
// the on/off counts statistic.
func (d *SpectrumDatasetOnOff) Info() (Info, error) {
	info, err := d.SpectrumDataset.Info()
	if err != nil {
		return Info{}, err
	}
	info.StatType = d.StatType()
	safe := d.MaskSafe()

	if d.countsOff != nil {
		sum, err := d.countsOff.MaskedSum(safe)
		if err != nil {
			return Info{}, err
		}
		info.CountsOffSum = sum
	}
	if d.acceptance != nil {
		sum, err := d.acceptance.MaskedSum(safe)
		if err != nil {
			return Info{}, err
		}
		info.AcceptanceSum = sum
	}
	if d.acceptanceOff != nil {
		sum, err := d.acceptanceOff.MaskedSum(safe)
		if err != nil {
			return Info{}, err
		}
		info.AcceptanceOffSum = sum
	}
	if info.AcceptanceOffSum > 0 {
		info.Alpha = info.AcceptanceSum / info.AcceptanceOffSum
	}
	info.BackgroundSum = info.Alpha * info.CountsOffSum
	info.ExcessSum = info.CountsSum - info.BackgroundSum

	ws := stats.WStatCountsStatistic{NOn: info.CountsSum, NOff: info.CountsOffSum, Alpha: info.Alpha}
	info.Significance = ws.Significance()

	if t := info.Livetime; t > 0 {
		info.BackgroundRate = info.BackgroundSum / t
		info.ExcessRate = info.ExcessSum / t
	}
	return info, nil
}

// String returns a multi-line human-readable summary.
func (d *SpectrumDatasetOnOff) String() string {
	info, err := d.Info()
	if err != nil {
		return fmt.Sprintf("SpectrumDatasetOnOff %q (invalid: %v)", d.name, err)
	}
	extra := []string{
		fmt.Sprintf("  counts off       : %.0f", info.CountsOffSum),
		fmt.Sprintf("  alpha            : %.4g", info.Alpha),
	}
	return formatInfo("SpectrumDatasetOnOff", info, extra)
}

func formatInfo(kind string, info Info, extra []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %q\n", kind, info.Name)
	fmt.Fprintf(&b, "  stat type        : %s\n", info.StatType)
	fmt.Fprintf(&b, "  livetime         : %.4g s\n", info.Livetime)
	fmt.Fprintf(&b, "  bins (safe/total): %d/%d\n", info.NBinsSafe, info.NBins)
	fmt.Fprintf(&b, "  counts           : %.0f\n", info.CountsSum)
	fmt.Fprintf(&b, "  background       : %.4g\n", info.BackgroundSum)
	fmt.Fprintf(&b, "  excess           : %.4g\n", info.ExcessSum)
	fmt.Fprintf(&b, "  significance     : %.3g\n", info.Significance)
	for _, line := range extra {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
