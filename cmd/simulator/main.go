package main

import (
	"context"
	"flag"
	"log"

	"github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"github.com/thewhitelisted/Agent-Based-Market-Simulator/internal/agent"
	"github.com/thewhitelisted/Agent-Based-Market-Simulator/internal/ops"
	"github.com/thewhitelisted/Agent-Based-Market-Simulator/internal/report"
	"github.com/thewhitelisted/Agent-Based-Market-Simulator/internal/sim"
	"github.com/thewhitelisted/Agent-Based-Market-Simulator/internal/tape"
	"github.com/thewhitelisted/Agent-Based-Market-Simulator/pkg/conn"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config (default: built-in two noise traders)")
	steps := flag.Int("steps", 0, "Override tick count from config")
	csvPath := flag.String("csv", "", "Override CSV report path from config")
	tapePath := flag.String("tape", "", "Override fill tape path from config")
	quiet := flag.Bool("quiet", false, "Suppress per-tick progress logs")
	pyroscopeAddr := flag.String("pyroscope", "", "Pyroscope server address (empty=disabled)")
	flag.Parse()

	if *pyroscopeAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "market-simulator",
			ServerAddress:   *pyroscopeAddr,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	loaded, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *steps > 0 {
		loaded.Steps = *steps
	}
	if *csvPath != "" {
		loaded.Report.CSVPath = *csvPath
	}
	if *tapePath != "" {
		loaded.Tape.Path = *tapePath
	}

	simulator := sim.New(sim.Config{
		StartingCash: loaded.StartingCash,
		Quiet:        *quiet,
	})
	if err := registerAgents(simulator, loaded); err != nil {
		log.Fatalf("agent setup failed: %v", err)
	}
	if err := attachSinks(simulator, loaded.Report); err != nil {
		log.Fatalf("sink setup failed: %v", err)
	}
	if loaded.Tape.Path != "" {
		w, err := tape.NewWriter(loaded.Tape.Path)
		if err != nil {
			log.Fatalf("tape setup failed: %v", err)
		}
		simulator.SetTape(w)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-sys.Shutdown()
		cancel()
	}()

	logs.Infof("simulation starting: %d ticks, %d agents", loaded.Steps, len(loaded.Agents))
	runErr := simulator.Run(ctx, loaded.Steps)
	if closeErr := simulator.Close(); closeErr != nil {
		logs.Errorf("shutdown: %+v", closeErr)
	}
	if runErr != nil && runErr != context.Canceled {
		log.Fatalf("simulation failed: %v", runErr)
	}

	for _, row := range simulator.Rows() {
		logs.Infof(
			"participant %d: cash=%.2f inventory=%d realized=%.2f unrealized=%.2f total=%.2f",
			row.ParticipantID, row.Cash, row.Inventory,
			row.RealizedPnL, row.UnrealizedPnL, row.TotalPnL,
		)
	}
	logs.Info("simulation complete")
}

// loadConfig resolves the config file, falling back to the historical
// default run: ten ticks, two noise traders.
func loadConfig(path string) (ops.Loaded, error) {
	if path == "" {
		return ops.Loaded{
			Steps:        10,
			StartingCash: 10000,
			Agents: []ops.AgentSpec{
				{Type: ops.AgentNoise, Count: 2},
			},
		}, nil
	}
	return ops.Load(path)
}

func registerAgents(simulator *sim.Simulator, loaded ops.Loaded) error {
	nextID := 1
	for _, spec := range loaded.Agents {
		for i := 0; i < spec.Count; i++ {
			var a agent.Agent
			switch spec.Type {
			case ops.AgentMaker:
				a = agent.NewMarketMaker(nextID, spec.Maker)
			default:
				a = agent.NewNoiseTrader(nextID, spec.Noise, loaded.Seed+int64(nextID))
			}
			if err := simulator.AddAgent(a); err != nil {
				return err
			}
			nextID++
		}
	}
	return nil
}

func attachSinks(simulator *sim.Simulator, cfg ops.ReportConfig) error {
	if cfg.CSVPath != "" {
		sink, err := report.NewCSVSink(cfg.CSVPath)
		if err != nil {
			return err
		}
		simulator.AddSink(sink)
	}
	if cfg.Console {
		simulator.AddSink(report.NewLogSink())
	}
	if pg := cfg.Postgres; pg != nil {
		client, err := conn.New(conn.Option{
			Host:     pg.Host,
			Port:     pg.Port,
			User:     pg.User,
			Password: pg.Password,
			Database: pg.Database,
			SSLMode:  pg.SSLMode,
		})
		if err != nil {
			return err
		}
		sink, err := report.NewPostgresSink(client)
		if err != nil {
			return err
		}
		simulator.AddSink(sink)
	}
	return nil
}
