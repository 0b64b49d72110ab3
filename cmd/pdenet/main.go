package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/pde-ml/pdenet/autodiff"
	"github.com/pde-ml/pdenet/backend/cpu"
	"github.com/pde-ml/pdenet/config"
	"github.com/pde-ml/pdenet/nn"
	"github.com/pde-ml/pdenet/optim"
	"github.com/pde-ml/pdenet/pde"
	"github.com/pde-ml/pdenet/tensor"
	"github.com/pde-ml/pdenet/train"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "pdenet",
		Short: "PDE discovery and physics-informed training",
	}

	trainCmd := &cobra.Command{
		Use:   "train",
		Short: "run the training loop",
		RunE:  runTrain,
	}
	trainCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Save(args[0], config.DefaultConfig())
		},
	}

	rootCmd.AddCommand(trainCmd, initCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	switch cfg.DType {
	case "float32":
		return runFor[float32](cfg)
	default:
		return runFor[float64](cfg)
	}
}

// runFor drives the full run for one element type: sample the domain,
// build the networks and optimizer, alternate training epochs with
// periodic testing, and render the loss history.
func runFor[T tensor.Float](cfg *config.Config) error {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	rng := rand.New(rand.NewSource(cfg.Seed))

	dom := pde.Domain{
		T0:    cfg.Domain.T0,
		T1:    cfg.Domain.T1,
		XLow:  cfg.Domain.XLow,
		XHigh: cfg.Domain.XHigh,
	}
	if err := dom.Validate(); err != nil {
		return err
	}
	d := dom.SpatialDims()

	solNN, err := nn.NewNetwork[T](nn.NetworkConfig{
		InputDim: 1 + d,
		Hidden:   cfg.Solution.Hidden,
	}, rng, backend)
	if err != nil {
		return err
	}
	pdeNN, err := nn.NewNetwork[T](nn.NetworkConfig{
		InputDim: 1 + 2*d,
		Hidden:   cfg.PDE.Hidden,
	}, rng, backend)
	if err != nil {
		return err
	}

	params := append(solNN.Parameters(), pdeNN.Parameters()...)
	opt, err := buildOptimizer(params, cfg.Opt)
	if err != nil {
		return err
	}

	colloc := pde.CollocationPoints[T](dom, cfg.Points.Collocation, rng, backend)
	dataCoords := pde.CollocationPoints[T](dom, cfg.Points.Data, rng, backend)
	dataValues := pde.Solution(dataCoords, referenceSolution, backend)
	icCoords := pde.InitialSlice[T](dom, cfg.Points.Initial, rng, backend)
	icValues := pde.Solution(icCoords, referenceSolution, backend)
	lower, upper := pde.BoundaryPairs[T](dom, cfg.Points.Boundary, rng, backend)

	tape.StartRecording()

	history := make([]float64, 0, cfg.Epochs/cfg.TestEvery+1)
	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		switch cfg.Mode {
		case "discovery":
			train.Discovery(solNN, pdeNN, colloc, dataCoords, dataValues, opt)
		case "pinns":
			train.PINNs(solNN, pdeNN, icCoords, icValues, lower, upper, cfg.PDE.Order, colloc, opt)
		}

		if epoch%cfg.TestEvery == 0 || epoch == cfg.Epochs {
			tape.Clear()
			var total float64
			switch cfg.Mode {
			case "discovery":
				collocLoss, dataLoss := train.DiscoveryTest(solNN, pdeNN, colloc, dataCoords, dataValues)
				total = float64(collocLoss) + float64(dataLoss)
				fmt.Printf("epoch %6d  collocation %.6e  data %.6e\n",
					epoch, float64(collocLoss), float64(dataLoss))
			case "pinns":
				icLoss, bcLoss, collocLoss := train.PINNsTest(
					solNN, pdeNN, icCoords, icValues, lower, upper, cfg.PDE.Order, colloc)
				total = float64(icLoss) + float64(bcLoss) + float64(collocLoss)
				fmt.Printf("epoch %6d  ic %.6e  bc %.6e  collocation %.6e\n",
					epoch, float64(icLoss), float64(bcLoss), float64(collocLoss))
			}
			history = append(history, math.Log10(total+1e-30))
			tape.Clear()
		}
	}

	if len(history) > 1 {
		graph := asciigraph.Plot(history,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("log10 total test loss"),
		)
		fmt.Println(graph)
	}
	return nil
}

func buildOptimizer[T tensor.Float](
	params []*nn.Parameter[T, *autodiff.AutodiffBackend[*cpu.CPUBackend]],
	cfg config.OptimizerConfig,
) (optim.Optimizer[T, *autodiff.AutodiffBackend[*cpu.CPUBackend]], error) {
	switch cfg.Name {
	case "sgd":
		return optim.NewSGD(params, optim.SGDConfig{LR: cfg.LR, Momentum: cfg.Momentum}), nil
	case "adam":
		return optim.NewAdam(params, optim.AdamConfig{LR: cfg.LR}), nil
	case "lbfgs":
		return optim.NewLBFGS(params, optim.LBFGSConfig{
			LR:            cfg.LR,
			HistorySize:   cfg.HistorySize,
			MaxLineSearch: cfg.LineSearch,
		}), nil
	default:
		return nil, fmt.Errorf("unknown optimizer %q", cfg.Name)
	}
}

// referenceSolution is the manufactured solution the data-fit and
// initial-condition targets are sampled from: a decaying sine wave,
// periodic in every spatial axis over [-1, 1].
func referenceSolution(coord []float64) float64 {
	t := coord[0]
	u := math.Exp(-t)
	for _, x := range coord[1:] {
		u *= math.Sin(math.Pi * x)
	}
	return u
}
