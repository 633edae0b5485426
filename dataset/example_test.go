package dataset_test

import (
	"fmt"

	"github.com/cwbudde/algo-gamma/dataset"
	"github.com/cwbudde/algo-gamma/model"
	"github.com/cwbudde/algo-gamma/spectrum"
)

func onOffRun(counts []float64) *dataset.SpectrumDatasetOnOff {
	axis, _ := spectrum.NewEnergyAxis([]float64{1, 2, 4, 8})
	on, _ := spectrum.FromData(axis, counts, "")
	off, _ := spectrum.FromData(axis, []float64{5, 5, 5}, "")
	d, _ := dataset.NewOnOff(dataset.OnOffConfig{
		Config:        dataset.Config{Counts: on},
		CountsOff:     off,
		Acceptance:    spectrum.Full(axis, 1, ""),
		AcceptanceOff: spectrum.Full(axis, 2, ""),
	})
	return d
}

func ExampleSpectrumDatasetOnOff_Stack() {
	run1 := onOffRun([]float64{10, 20, 30})
	run2 := onOffRun([]float64{10, 20, 30})

	_ = run1.Stack(run2)

	excess, _ := run1.Excess()
	fmt.Println(run1.Counts().Data())
	fmt.Println(excess.Data())

	// Output:
	// [20 40 60]
	// [15 35 55]
}

func ExampleSpectrumDataset_Residuals() {
	axis, _ := spectrum.NewEnergyAxis([]float64{1, 2, 4})
	counts, _ := spectrum.FromData(axis, []float64{4, 9}, "")
	template, _ := spectrum.FromData(axis, []float64{1, 4}, "")
	background, _ := model.NewBackgroundModel(template)
	d, _ := dataset.New(dataset.Config{
		Name:       "example",
		Counts:     counts,
		Background: background,
	})

	res, _ := d.Residuals("diff/sqrt(model)")
	fmt.Println(res.Data())

	// Output:
	// [3 2.5]
}
