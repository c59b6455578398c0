package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"biomassopt/pkg/client"
	"biomassopt/pkg/common"
)

const Prompt = "biomass> "

func main() {
	serverAddr := flag.String("addr", "localhost:9000", "Biomass Optimizer TCP Server Address")
	flag.Parse()

	fmt.Printf("Biomass Optimizer CLI (Target: %s)\n", *serverAddr)
	fmt.Println("Connecting...")

	cli, err := client.Dial(*serverAddr)
	if err != nil {
		fmt.Printf("Connection failed: %v\n", err)
		fmt.Println("Tip: Ensure the server is running (e.g. go run cmd/server/main.go).")
		return
	}
	defer cli.Close()
	fmt.Println("Connected! Type 'help' for commands.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(Prompt)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])

		switch cmd {
		case "calc":
			handleCalc(cli, parts)
		case "latest":
			handleLatest(cli)
		case "history":
			handleHistory(cli, parts)
		case "clear":
			handleClear(cli)
		case "help":
			printHelp()
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Printf("Unknown command: '%s'. Type 'help'.\n", cmd)
		}
	}
}

func handleCalc(cli *client.Client, parts []string) {
	if len(parts) != common.Dims+1 {
		fmt.Println("Usage: calc <fuel_price> <commodity_cost> <energy_price> <weather_index>")
		return
	}

	var vals [common.Dims]float64
	for i := 0; i < common.Dims; i++ {
		v, err := strconv.ParseFloat(parts[i+1], 64)
		if err != nil {
			fmt.Printf("Invalid number '%s': %v\n", parts[i+1], err)
			return
		}
		vals[i] = v
	}

	rec, err := cli.Calc(common.VectorOf(vals))
	if err != nil {
		fmt.Printf("Calc failed: %v\n", err)
		return
	}
	fmt.Printf("OK (id=%d): calculated_output = %.2f\n", rec.ID, rec.CalculatedOutput)
}

func handleLatest(cli *client.Client) {
	rec, ok, err := cli.Latest()
	if err != nil {
		fmt.Printf("Latest failed: %v\n", err)
		return
	}
	if !ok {
		fmt.Println("No results yet.")
		return
	}
	printRecord(rec)
}

func handleHistory(cli *client.Client, parts []string) {
	limit := uint32(0) // server default
	if len(parts) > 1 {
		n, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			fmt.Printf("Invalid limit '%s': %v\n", parts[1], err)
			return
		}
		limit = uint32(n)
	}

	records, err := cli.History(limit)
	if err != nil {
		fmt.Printf("History failed: %v\n", err)
		return
	}
	if len(records) == 0 {
		fmt.Println("No results yet.")
		return
	}
	for _, rec := range records {
		printRecord(rec)
	}
	fmt.Printf("(%d records)\n", len(records))
}

func handleClear(cli *client.Client) {
	if err := cli.Clear(); err != nil {
		fmt.Printf("Clear failed: %v\n", err)
		return
	}
	fmt.Println("Database cleared.")
}

func printRecord(rec common.CalcRecord) {
	fmt.Printf("#%d %s  fuel=%.2f commodity=%.2f energy=%.2f weather=%.2f  =>  %.2f\n",
		rec.ID, rec.Timestamp,
		rec.FuelPrice, rec.CommodityCost, rec.EnergyPrice, rec.WeatherIndex,
		rec.CalculatedOutput)
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  calc <fuel_price> <commodity_cost> <energy_price> <weather_index>")
	fmt.Println("      Evaluate the model and store the result.")
	fmt.Println("  latest          Show the most recent calculation.")
	fmt.Println("  history [n]     Show the n most recent calculations (default: server limit).")
	fmt.Println("  clear           Delete all stored calculations.")
	fmt.Println("  exit | quit     Leave the CLI.")
}
