/*
Autonomy is a set of small robotics demos built around an incremental grid path planner:
histogram localization, a behavior state machine, A* planning, PID control, and a
simulation loop that ties them together, with an optional live view in the browser.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"autonomy/logs"
	"autonomy/server"
	"autonomy/simulation"

	"golang.org/x/sync/errgroup"
)

var (
	module     *string
	configPath *string
	dbg        *bool
	serve      *bool
	host       *string
	port       *string
)

func init() {
	module = flag.String("module", "plan", "demo to run: nav, fsm, plan, control or sim")
	configPath = flag.String("config", "./config.yaml", "simulation config file")
	dbg = flag.Bool("debug", false, "debug mode")
	serve = flag.Bool("serve", false, "serve a live view of the sim module")
	host = flag.String("host", "", "The host ip")
	port = flag.String("port", "8080", "The host port")
}

func main() {
	flag.Parse()
	logs.SetDebug(*dbg)
	logger := logs.New(os.Stderr)

	if err := runApp(logger); err != nil {
		logger.Error("exiting", "module", *module, "error", err)
		os.Exit(1)
	}
}

func runApp(logger *slog.Logger) (err error) {
	var cfg *simulation.Config
	if cfg, err = loadConfig(*configPath, logger); err != nil {
		return
	}

	switch *module {
	case "nav":
		fmt.Println("\n--- Navigation (histogram filter) ---")
		return runNav(os.Stdout, cfg)
	case "fsm":
		fmt.Println("\n--- Decision making (state machine) ---")
		return runFsm(os.Stdout, logger)
	case "plan":
		fmt.Println("\n--- Guidance (A* path planning) ---")
		return runPlan(os.Stdout)
	case "control":
		fmt.Println("\n--- Control (PID) ---")
		return runControl(os.Stdout, cfg)
	case "sim":
		return runSim(cfg, logger)
	}
	return fmt.Errorf("unknown module %q", *module)
}

// loadConfig reads the config file, falling back to the defaults when there is none.
func loadConfig(path string, logger *slog.Logger) (*simulation.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Debug("no config file, using defaults", "path", path)
		return simulation.DefaultConfig(), nil
	}
	return simulation.FromYaml(path)
}

// runSim runs the simulation until it finishes, its deadline passes or it is interrupted.
// With -serve the live view stays up until interrupted.
func runSim(cfg *simulation.Config, logger *slog.Logger) error {
	appCtx, appCancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer appCancel()

	runCtx, runCancel, err := cfg.WithDeadline(appCtx)
	if err != nil {
		return err
	}
	defer runCancel()

	runLogger, runId := logs.WithRun(logger)
	sim, err := simulation.NewSim(cfg, runLogger)
	if err != nil {
		return err
	}
	runLogger.Info("simulation starting", "run", runId, "seed", cfg.Seed)

	if !*serve {
		err = sim.Run(runCtx, nil)
		showFinal(os.Stdout, sim.Snapshot())
		return ignoreCancel(err)
	}

	snapshots := make(chan simulation.Snapshot)
	srv, err := server.NewServer(appCtx, *host+":"+*port, sim.Snapshot(), snapshots, runLogger)
	if err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(appCtx)
	group.Go(func() error {
		return srv.Serve(groupCtx)
	})
	group.Go(func() error {
		err := sim.Run(runCtx, exportSnapshots(snapshots))
		showFinal(os.Stdout, sim.Snapshot())
		return ignoreCancel(err)
	})
	return group.Wait()
}

// exportSnapshots hands each tick's snapshot to the server, giving up when ctx ends.
func exportSnapshots(snapshots chan<- simulation.Snapshot) simulation.ProgressFunc {
	return func(ctx context.Context, snap simulation.Snapshot) {
		select {
		case snapshots <- snap:
		case <-ctx.Done():
		}
	}
}

func showFinal(w io.Writer, snap simulation.Snapshot) {
	fmt.Fprintf(w, "tick %d: %v mode=%s status=%s battery=%.0f replans=%d\n",
		snap.Tick, snap.Pose, snap.Mode, snap.Status, snap.Battery, snap.Replans)
	goal := snap.Pose
	if snap.HasGoal {
		goal = snap.Goal
	}
	fmt.Fprint(w, snap.Grid.Render(snap.Path, snap.Pose, goal))
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
