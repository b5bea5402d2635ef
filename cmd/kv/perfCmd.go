package kv

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pbeckmann/fKV/cmd/util"
	"github.com/pbeckmann/fKV/rpc/common"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for fKV servers",
		Long:    "",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 32
	perfNumWorkers       = 10
	perfOpsPerWorker     = 1000
	perfKeySpread        = 100
	perfSkip             = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "workers"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of concurrent workers to use for the benchmark"))
	key = "ops"
	perfTestCmd.Flags().Int(key, 1000, util.WrapString("Number of operations per worker and benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 32, util.WrapString("How large the value for the set-large test should be (in KB, capped by the 64 KiB frame limit)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = viper.GetInt("keys")
	perfNumWorkers = viper.GetInt("workers")
	perfOpsPerWorker = viper.GetInt("ops")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func run(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for fKV servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Workers: %d, Ops/Worker: %d\n", perfNumWorkers, perfOpsPerWorker)
	fmt.Println()

	fmt.Println("starting tests...")

	// Create results map
	results := make(map[string]benchResult)

	// set: write a small value under rotating keys
	{
		getKey, iter := getKeys("set")
		res := runBench("set", func(i int) error {
			_, err := rpcClient.Put(getKey(i), []byte("test"))
			return err
		})
		cleanupKeys("set", iter)
		results["set"] = res
		printPerfResult("set", res)
	}

	// set-large: write a payload close to the frame limit
	{
		largeValue := make([]byte, perfLargeValueSizeKB*1024)
		getKey, iter := getKeys("set-large")
		res := runBench("set-large", func(i int) error {
			_, err := rpcClient.Put(getKey(i), largeValue)
			return err
		})
		cleanupKeys("set-large", iter)
		results["set-large"] = res
		printPerfResult("set-large", res)
	}

	// get: read back keys that exist
	{
		getKey, iter := getKeys("get")
		iter(func(k string) {
			if _, err := rpcClient.Put(k, []byte("test")); err != nil {
				log.Printf("(get) - error setting key: %v\n", err)
			}
		})
		res := runBench("get", func(i int) error {
			_, err := rpcClient.Get(getKey(i))
			return err
		})
		cleanupKeys("get", iter)
		results["get"] = res
		printPerfResult("get", res)
	}

	// get-miss: read keys that were never written (404 expected)
	{
		res := runBench("get-miss", func(i int) error {
			key := fmt.Sprintf("%s/get-miss-%d", perfKeyPrefix, i%perfKeySpread)
			_, err := rpcClient.Get(key)
			return err
		})
		results["get-miss"] = res
		printPerfResult("get-miss", res)
	}

	// del: delete rotating keys (only the first round hits)
	{
		getKey, iter := getKeys("del")
		iter(func(k string) {
			if _, err := rpcClient.Put(k, []byte("test")); err != nil {
				log.Printf("(del) - error setting key: %v\n", err)
			}
		})
		res := runBench("del", func(i int) error {
			_, err := rpcClient.Del(getKey(i))
			return err
		})
		results["del"] = res
		printPerfResult("del", res)
	}

	// mixed: rotate through put, get and del
	{
		getKey, iter := getKeys("mixed")
		res := runBench("mixed", func(i int) error {
			var err error
			switch i % 3 {
			case 0: // put
				_, err = rpcClient.Put(getKey(i), []byte("test"))
			case 1: // get
				_, err = rpcClient.Get(getKey(i))
			case 2: // del
				_, err = rpcClient.Del(getKey(i))
			}
			return err
		})
		cleanupKeys("mixed", iter)
		results["mixed"] = res
		printPerfResult("mixed", res)
	}

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, util.GetClientConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// benchResult bundles the latency timer of one benchmark with its error count
type benchResult struct {
	timer   gometrics.Timer
	errors  int64
	skipped bool
}

// runBench drives op from perfNumWorkers goroutines until every worker has
// performed its share of operations, recording each round trip in a timer
func runBench(name string, op func(i int) error) benchResult {
	if shouldSkip(name) {
		return benchResult{skipped: true}
	}

	timer := gometrics.NewTimer()
	total := int64(perfNumWorkers * perfOpsPerWorker)

	var (
		wg       sync.WaitGroup
		next     atomic.Int64
		errCount atomic.Int64
	)

	for w := 0; w < perfNumWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := next.Add(1) - 1
				if i >= total {
					return
				}
				start := time.Now()
				if err := op(int(i)); err != nil {
					errCount.Add(1)
					log.Printf("(%s) - operation error: %v\n", name, err)
				}
				timer.UpdateSince(start)
			}
		}()
	}
	wg.Wait()

	return benchResult{timer: timer, errors: errCount.Load()}
}

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// cleanupKeys removes the keys planted by a benchmark
func cleanupKeys(test string, iter func(func(string))) {
	iter(func(k string) {
		if _, err := rpcClient.Del(k); err != nil {
			log.Printf("(%s) - error deleting key: %v\n", test, err)
		}
	})
}

// printPerfResult prints the latency distribution of a benchmark
func printPerfResult(test string, res benchResult) {
	if res.skipped {
		fmt.Printf("%-12sskipped\n", test)
		return
	}

	snap := res.timer.Snapshot()
	ps := snap.Percentiles([]float64{0.5, 0.95, 0.99})

	fmt.Printf("%-12s%d ops\tmean %s\tp50 %s\tp95 %s\tp99 %s\tmax %s\t%.0f ops/sec\t%d errors\n",
		test,
		snap.Count(),
		time.Duration(int64(snap.Mean())),
		time.Duration(int64(ps[0])),
		time.Duration(int64(ps[1])),
		time.Duration(int64(ps[2])),
		time.Duration(snap.Max()),
		snap.RateMean(),
		res.errors,
	)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]benchResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "Count", "MeanNs", "P50Ns", "P95Ns", "P99Ns", "MaxNs",
		"OpsPerSec", "Errors", "Skipped",
		"Endpoints", "TimeoutSec", "ConnectionsPerEndpoint", "Transport",
		"Workers", "OpsPerWorker", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, res := range results {
		row := []string{test, "0", "0", "0", "0", "0", "0", "0", "0", "true"}

		if !res.skipped {
			snap := res.timer.Snapshot()
			ps := snap.Percentiles([]float64{0.5, 0.95, 0.99})
			row = []string{
				test,
				strconv.FormatInt(snap.Count(), 10),
				fmt.Sprintf("%.0f", snap.Mean()),
				fmt.Sprintf("%.0f", ps[0]),
				fmt.Sprintf("%.0f", ps[1]),
				fmt.Sprintf("%.0f", ps[2]),
				strconv.FormatInt(snap.Max(), 10),
				fmt.Sprintf("%.0f", snap.RateMean()),
				strconv.FormatInt(res.errors, 10),
				"false",
			}
		}

		row = append(row,
			strings.Join(config.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.ConnectionsPerEndpoint),
			viper.GetString("transport"),
			strconv.Itoa(perfNumWorkers),
			strconv.Itoa(perfOpsPerWorker),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		)

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
