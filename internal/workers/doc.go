/*
Package workers sizes worker pools from the CPU budget the process actually
has.

Go sets GOMAXPROCS from container CPU limits, while runtime.NumCPU reports
the host. Size scales GOMAXPROCS by a Load and caps the result:

	// Header-only dimension reads, capped at 16
	n := workers.Size(workers.IOBound, 16)

The PROBE_WORKERS environment variable overrides the computed value, still
subject to the cap.
*/
package workers
