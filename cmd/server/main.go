package main

import (
	"flag"
	"log"

	"biomassopt/pkg/api"
	"biomassopt/pkg/common"
	"biomassopt/pkg/config"
	"biomassopt/pkg/model"
	"biomassopt/pkg/monitor"
	"biomassopt/pkg/network"
	"biomassopt/pkg/store"
	"biomassopt/pkg/training"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (default: configs/biomass.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	stats := monitor.NewWorkloadStats()

	st, err := store.Open(cfg.Storage.Path, cfg.Storage.CacheSize, stats)
	if err != nil {
		log.Fatalf("Failed to open result store: %v", err)
	}
	defer st.Close()
	log.Printf("[Store] Database initialized at %s (%d records)", cfg.Storage.Path, st.Count())

	// A missing or unusable training table degrades the model, it does
	// not stop the service: calculate requests report the failure.
	interp := buildModel(cfg.Model.TrainingCSV)

	tcpSrv := network.NewTCPServer(st, interp, stats, cfg.Storage.HistoryLimit)
	go func() {
		if err := tcpSrv.Start(cfg.Server.TCPAddr); err != nil {
			log.Fatalf("TCP server failed: %v", err)
		}
	}()

	httpSrv := api.NewServer(st, interp, stats, cfg.Storage.HistoryLimit)
	log.Fatal(httpSrv.Start(cfg.Server.Addr))
}

func buildModel(csvPath string) model.Interpolator {
	samples, err := training.LoadCSV(csvPath)
	if err != nil {
		log.Printf("[Model] ERROR loading training data: %v", err)
		return model.Unavailable(err.Error())
	}
	log.Printf("[Model] Loaded %d data points from %s", len(samples), csvPath)

	points := make([][common.Dims]float64, len(samples))
	values := make([]float64, len(samples))
	for i, s := range samples {
		points[i] = s.Inputs
		values[i] = s.Output
	}

	interp, err := model.Fit(points, values)
	if err != nil {
		log.Printf("[Model] ERROR initializing interpolator: %v", err)
		return model.Unavailable(err.Error())
	}
	log.Printf("[Model] Interpolator initialized with %d data points", interp.Len())
	return interp
}
