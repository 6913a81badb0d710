package workers

import (
	"os"
	"runtime"
	"strconv"
)

// OverrideEnv names the environment variable that fixes the worker count.
const OverrideEnv = "PROBE_WORKERS"

// Load scales the CPU budget for a pool: workers per available CPU.
type Load float64

const (
	// CPUBound suits work that keeps a core busy, such as a full image decode.
	CPUBound Load = 1
	// IOBound suits work that mostly waits on a reader, such as header parsing.
	IOBound Load = 2
)

// Size returns the worker count for a pool with the given load. The budget
// is GOMAXPROCS, which follows container CPU limits. A positive limit caps
// the result, including an OverrideEnv value.
func Size(load Load, limit int) int {
	n, ok := override()
	if !ok {
		n = max(1, int(float64(runtime.GOMAXPROCS(0))*float64(load)))
	}
	return capAt(n, limit)
}

func override() (int, bool) {
	n, err := strconv.Atoi(os.Getenv(OverrideEnv))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func capAt(n, limit int) int {
	if limit > 0 && n > limit {
		return limit
	}
	return n
}
