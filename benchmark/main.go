// Package main provides a latency benchmarking tool for the sonar-cli commands.
// It runs each query command several times against a live server, treating the
// first successful run as cold and averaging the rest as warm, and writes the
// results to a CSV file for performance analysis and documentation.
//
// Prerequisites:
// - sonar-cli binary installed and available in PATH
// - A reachable server with an analyzed project
// - SONAR_TOKEN set when the server requires authentication
//
// Usage: go run benchmark/main.go [server-url] [project-key]
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (cold run and average of warm runs).
type BenchmarkResult struct {
	Command  string
	ColdTime string
	WarmTime string
	Failures int
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	ServerURL string
	Project   string
	Timeout   time.Duration
	Runs      int
	Commands  [][]string
}

func main() {
	if len(os.Args) != 3 {
		fmt.Printf("Usage: %s [server-url] [project-key]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		ServerURL: os.Args[1],
		Project:   os.Args[2],
		Timeout:   2 * time.Minute,
		Runs:      5,
		Commands: [][]string{
			{"health"},
			{"quality-gate"},
			{"measures"},
			{"issues"},
			{"coverage"},
			{"duplications", "--details", "--limit", "20"},
			{"hotspots"},
			{"history", "--metrics", "coverage,bugs"},
		},
	}

	if _, err := exec.LookPath("sonar-cli"); err != nil {
		fmt.Printf("Prerequisites check failed: sonar-cli binary not found in PATH\n")
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks executes every configured command against the server
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	fmt.Printf("Starting benchmark: %s project %s, %d commands, %d runs each, %v timeout\n",
		config.ServerURL, config.Project, len(config.Commands), config.Runs, config.Timeout)

	results := make([]BenchmarkResult, 0, len(config.Commands))
	for _, command := range config.Commands {
		fmt.Printf("Benchmarking %s\n", command[0])
		results = append(results, runBenchmark(config, command))
	}
	return results
}

// runBenchmark executes one command several times and summarizes its timings
func runBenchmark(config BenchmarkConfig, command []string) BenchmarkResult {
	args := append([]string{}, command...)
	args = append(args, "--url", config.ServerURL, "--project", config.Project, "--json", "--output-file", os.DevNull)

	result := BenchmarkResult{Command: command[0], ColdTime: "FAILED", WarmTime: "FAILED"}
	var times []float64
	for run := 1; run <= config.Runs; run++ {
		start := time.Now()

		cmd := exec.Command("sonar-cli", args...)
		done := make(chan error, 1)
		go func() {
			done <- cmd.Run()
		}()

		select {
		case err := <-done:
			if err == nil {
				times = append(times, time.Since(start).Seconds())
			} else {
				result.Failures++
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
			<-done
			result.Failures++
		}
	}

	if len(times) > 0 {
		result.ColdTime = fmt.Sprintf("%.3fs", times[0])
	}
	if len(times) > 1 {
		var sum float64
		for _, t := range times[1:] {
			sum += t
		}
		result.WarmTime = fmt.Sprintf("%.3fs", sum/float64(len(times)-1))
	}
	fmt.Printf("  Cold time: %s, Warm average: %s, Failures: %d\n", result.ColdTime, result.WarmTime, result.Failures)
	return result
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s/sonar_cli_benchmark_%s.csv", os.TempDir(), timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"cmd", "cold_time", "warm_avg", "failures"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Command, result.ColdTime, result.WarmTime, fmt.Sprint(result.Failures)}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-14s: Cold: %s, Warm: %s, Failures: %d\n", result.Command, result.ColdTime, result.WarmTime, result.Failures)
	}
}
