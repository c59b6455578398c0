package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"time"

	"biomassopt/pkg/client"
	"biomassopt/pkg/common"
)

func main() {
	httpAddr := flag.String("http", "http://localhost:8000", "HTTP API base URL")
	tcpAddr := flag.String("tcp", "localhost:9000", "TCP server address")
	nReq := flag.Int("n", 2000, "Number of calculate requests per run")
	flag.Parse()

	fmt.Printf("Biomass Optimizer Protocol Benchmark (N=%d)\n", *nReq)
	fmt.Printf("  HTTP=%s  TCP=%s\n", *httpAddr, *tcpAddr)
	fmt.Println("---------------------------------------------------")

	fmt.Println(">> Starting HTTP Benchmark (JSON over HTTP 1.1)...")
	httpDuration := runHTTPBenchmark(*httpAddr, *nReq)
	fmt.Printf("   HTTP Time: %v | QPS: %.0f\n\n", httpDuration, float64(*nReq)/httpDuration.Seconds())

	fmt.Println(">> Starting TCP Benchmark (Binary Protocol)...")
	tcpDuration := runTCPBenchmark(*tcpAddr, *nReq)
	fmt.Printf("   TCP  Time: %v | QPS: %.0f\n", tcpDuration, float64(*nReq)/tcpDuration.Seconds())

	fmt.Println("---------------------------------------------------")
	speedup := httpDuration.Seconds() / tcpDuration.Seconds()
	fmt.Printf("Conclusion: TCP is %.2fx faster than HTTP!\n", speedup)
}

func randomInputs(rng *rand.Rand) common.InputVector {
	return common.InputVector{
		FuelPrice:     rng.Float64() * 10,
		CommodityCost: rng.Float64() * 20,
		EnergyPrice:   rng.Float64() * 5,
		WeatherIndex:  rng.Float64() * 100,
	}
}

func runHTTPBenchmark(httpAddr string, n int) time.Duration {
	rng := rand.New(rand.NewSource(1))
	start := time.Now()
	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 100,
		},
	}

	for i := 0; i < n; i++ {
		in := randomInputs(rng)
		url := fmt.Sprintf("%s/calculate?fuel_price=%f&commodity_cost=%f&energy_price=%f&weather_index=%f",
			httpAddr, in.FuelPrice, in.CommodityCost, in.EnergyPrice, in.WeatherIndex)

		resp, err := httpClient.Get(url)
		if err != nil {
			log.Fatalf("HTTP Req failed: %v", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
	return time.Since(start)
}

func runTCPBenchmark(addr string, n int) time.Duration {
	rng := rand.New(rand.NewSource(1))
	start := time.Now()

	cli, err := client.Dial(addr)
	if err != nil {
		log.Fatalf("TCP Connect failed: %v", err)
	}
	defer cli.Close()

	for i := 0; i < n; i++ {
		if _, err := cli.Calc(randomInputs(rng)); err != nil {
			log.Fatalf("TCP Calc failed: %v", err)
		}
	}

	return time.Since(start)
}
