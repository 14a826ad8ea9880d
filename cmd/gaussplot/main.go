// Command gaussplot draws samples from the discrete Gaussian samplers of
// ring/gaussian, prints their empirical mean and standard deviation and
// renders their histogram as an HTML page.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/montanaflynn/stats"

	"github.com/latticore/latticore/ring/gaussian"
	"github.com/latticore/latticore/utils/sampling"
)

// generic sampler settings
const (
	genericLogBase   = 2
	genericBaseSigma = 4.0
	genericSmoothing = 1.0
)

// newPRNG returns a PRNG keyed by seed, or one reading crypto/rand if seed is empty.
func newPRNG(seed string) (sampling.PRNG, error) {
	if seed == "" {
		return sampling.NewPRNG()
	}
	return sampling.NewKeyedPRNGFromSeed([]byte(seed))
}

func newSampler(name string, prng sampling.PRNG, mean, sigma float64) (func() int64, error) {
	switch name {
	case "ky", "peikert":
		t := gaussian.KnuthYao
		if name == "peikert" {
			t = gaussian.Peikert
		}
		s, err := gaussian.NewBaseSampler(prng, mean, sigma, t)
		if err != nil {
			return nil, err
		}
		return s.GenerateInteger, nil
	case "dgg":
		if mean != 0 {
			return nil, fmt.Errorf("sampler dgg is zero-centered, use -sampler generic for mean %f", mean)
		}
		s, err := gaussian.NewDiscreteGaussian(prng, sigma)
		if err != nil {
			return nil, err
		}
		return s.GenerateInteger, nil
	case "generic":
		base, err := gaussian.NewBaseSamplers(prng, genericBaseSigma, genericLogBase, gaussian.Peikert)
		if err != nil {
			return nil, err
		}
		s, err := gaussian.NewDiscreteGaussianGeneric(base, genericBaseSigma, genericLogBase, genericSmoothing)
		if err != nil {
			return nil, err
		}
		if sigma*sigma <= s.SamplerVariance() {
			return nil, fmt.Errorf("sampler generic needs sigma^2 > %f", s.SamplerVariance())
		}
		return func() int64 { return s.GenerateIntegerWithParams(mean, sigma) }, nil
	default:
		return nil, fmt.Errorf("unknown sampler %q: want ky|peikert|dgg|generic", name)
	}
}

func newHistogramChart(title string, samples []int64, mean, std float64) *charts.Bar {

	lo, hi := samples[0], samples[0]
	for _, v := range samples {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	counts := make([]int, hi-lo+1)
	for _, v := range samples {
		counts[v-lo]++
	}

	xLabels := make([]string, len(counts))
	items := make([]opts.BarData, len(counts))
	for i := range counts {
		xLabels[i] = fmt.Sprintf("%d", lo+int64(i))
		items[i] = opts.BarData{Value: counts[i]}
	}

	bar := charts.NewBar()
	subtitle := fmt.Sprintf("n=%d, mean=%.4f, std=%.4f", len(samples), mean, std)
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}, opts.DataZoom{Type: "slider"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(xLabels).
		AddSeries("count", items).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}))

	return bar
}

func main() {
	sigma := flag.Float64("sigma", 3.2, "standard deviation")
	mean := flag.Float64("mean", 0, "mean")
	n := flag.Int("n", 100000, "number of samples")
	name := flag.String("sampler", "ky", "sampler: ky|peikert|dgg|generic")
	out := flag.String("out", "gaussplot.html", "output HTML file")
	seed := flag.String("seed", "", "seed of a reproducible run (default crypto/rand)")
	flag.Parse()

	if *n < 1 {
		log.Fatalf("invalid number of samples %d", *n)
	}

	prng, err := newPRNG(*seed)
	if err != nil {
		log.Fatalf("prng: %v", err)
	}

	gen, err := newSampler(*name, prng, *mean, *sigma)
	if err != nil {
		log.Fatalf("sampler: %v", err)
	}

	samples := make([]int64, *n)
	data := make(stats.Float64Data, *n)
	for i := range samples {
		samples[i] = gen()
		data[i] = float64(samples[i])
	}

	m, err := stats.Mean(data)
	if err != nil {
		log.Fatalf("mean: %v", err)
	}

	std, err := stats.StandardDeviationSample(data)
	if err != nil {
		log.Fatalf("std: %v", err)
	}

	fmt.Printf("sampler=%s sigma=%g mean=%g: empirical mean=%.4f std=%.4f\n", *name, *sigma, *mean, m, std)

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("create html: %v", err)
	}
	defer f.Close()

	title := fmt.Sprintf("%s (sigma=%g, mean=%g)", *name, *sigma, *mean)
	if err := newHistogramChart(title, samples, m, std).Render(f); err != nil {
		log.Fatalf("render html: %v", err)
	}

	fmt.Println("Histogram:", *out)
}
