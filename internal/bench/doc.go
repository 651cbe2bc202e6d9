// Package bench measures retrieval quality and throughput.
//
// A Coordinator runs the four retrieval modes through a Harness, persists
// each run to JSON history files, compares the results against the stored
// baseline with Detect and dispatches any regression alerts. Load tests run
// a fixed pool of workers, each with its own lexical index handle, for a
// bounded burst and report throughput, latency and process resource usage.
//
// Persisted files under the benchmark directory:
//
//	benchmark-history.json   append-only []Record
//	benchmark-baseline.json  one Record per mode, replaced after each suite
//	load-test-history.json   append-only []LoadTestRecord
package bench
