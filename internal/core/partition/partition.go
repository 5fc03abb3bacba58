// Package partition maps source identities onto a fixed set of logical partitions
// so that every change for one identity is handled by the same worker.
package partition

import "hash/fnv"

// Count is the fixed number of logical partitions.
const Count = 256

// For returns the partition for a source identity. The same id always maps to
// the same partition.
func For(sourceID string) int {
	h := fnv.New32a()
	h.Write([]byte(sourceID))
	return int(h.Sum32() % Count)
}

// Worker assigns sourceID to one of n workers. Partitions are spread across
// workers round-robin, so a worker owns every partition p with p % n == worker.
func Worker(sourceID string, n int) int {
	if n <= 1 {
		return 0
	}
	return For(sourceID) % n
}
