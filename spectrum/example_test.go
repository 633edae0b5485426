package spectrum_test

import (
	"fmt"

	"github.com/cwbudde/algo-gamma/spectrum"
)

func ExampleBinnedSpectrum_Stack() {
	axis, _ := spectrum.NewEnergyAxis([]float64{1, 2, 4, 8})
	counts, _ := spectrum.FromData(axis, []float64{10, 20, 30}, "")
	other, _ := spectrum.FromData(axis, []float64{1, 1, 1}, "")
	safe, _ := spectrum.MaskFromData(axis, []bool{true, true, false})

	_ = counts.Stack(other, safe)
	fmt.Println(counts.Data())

	// Output:
	// [11 21 30]
}

func ExampleBinnedSpectrum_Resample() {
	axis, _ := spectrum.NewEnergyAxis([]float64{1, 2, 4, 8, 16})
	counts, _ := spectrum.FromData(axis, []float64{1, 2, 3, 4}, "")

	coarse, _ := spectrum.NewEnergyAxis([]float64{1, 4, 16})
	out, _ := counts.Resample(coarse, nil)
	fmt.Println(out.Data())

	// Output:
	// [3 7]
}
