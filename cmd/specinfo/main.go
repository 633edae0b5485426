// Command specinfo prints summary information for spectrum dataset files.
//
// Usage:
//
//	specinfo [flags] pha_obs*.yaml ...
//
// Each argument is the counts (pha) file of an OGIP-style dataset group;
// companion bkg/arf/rmf files are picked up from the same directory.
//
// Examples:
//
//	specinfo pha_obs23523.yaml
//	specinfo -safe-only=false data/pha_obs*.yaml
//	specinfo -summary pha_obs23523.yaml
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-gamma/dataset"
	"github.com/cwbudde/algo-gamma/ogip"
	"github.com/cwbudde/algo-gamma/spectrum"
)

func main() {
	safeOnly := flag.Bool("safe-only", true, "aggregate only bins inside the safe-energy mask")
	summary := flag.Bool("summary", false, "print one multi-line summary block per dataset instead of a table")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: specinfo [flags] pha_obs*.yaml ...\n\n")
		fmt.Fprintf(os.Stderr, "Prints summary information for spectrum dataset file groups.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  specinfo pha_obs23523.yaml\n")
		fmt.Fprintf(os.Stderr, "  specinfo -safe-only=false data/pha_obs*.yaml\n")
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var datasets []*dataset.SpectrumDatasetOnOff
	for _, path := range paths {
		d, err := ogip.Read(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %s: %v\n", path, err)
			continue
		}
		if !*safeOnly {
			includeAllBins(d)
		}
		datasets = append(datasets, d)
	}
	if len(datasets) == 0 {
		fmt.Fprintf(os.Stderr, "error: no readable datasets\n")
		os.Exit(1)
	}

	if *summary {
		for _, d := range datasets {
			fmt.Print(d.String())
		}
		return
	}
	printTable(datasets)
}

func includeAllBins(d *dataset.SpectrumDatasetOnOff) {
	if d.Counts() == nil {
		return
	}
	d.SetMaskSafe(spectrum.NewMask(d.Counts().Axis(), true))
}

func printTable(datasets []*dataset.SpectrumDatasetOnOff) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name\tLivetime [s]\tBins (safe/total)\tOn\tOff\tAlpha\tBackground\tExcess\tSignificance\n")
	fmt.Fprintf(tw, "----\t------------\t-----------------\t--\t---\t-----\t----------\t------\t------------\n")

	for _, d := range datasets {
		info, err := d.Info()
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %s: %v\n", d.Name(), err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%.4g\t%d/%d\t%.0f\t%.0f\t%.4g\t%.4g\t%.4g\t%.3g\n",
			info.Name,
			info.Livetime,
			info.NBinsSafe,
			info.NBins,
			info.CountsSum,
			info.CountsOffSum,
			info.Alpha,
			info.BackgroundSum,
			info.ExcessSum,
			info.Significance,
		)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}
