package common

import (
	"runtime"
	"sync"
)

// Parallelize splits nbIterations into contiguous ranges and runs work on
// each range in its own goroutine. Ranges are disjoint, so workers never
// touch the same index.
func Parallelize(nbIterations int, work func(start, end int), maxCpus ...int) {
	nbTasks := runtime.NumCPU()
	if len(maxCpus) == 1 {
		nbTasks = maxCpus[0]
	}
	nbIterationsPerCpus := nbIterations / nbTasks

	// more CPUs than tasks: a CPU works on exactly one iteration
	if nbIterationsPerCpus < 1 {
		nbIterationsPerCpus = 1
		nbTasks = nbIterations
	}

	var wg sync.WaitGroup

	extraTasks := nbIterations - (nbTasks * nbIterationsPerCpus)
	extraTasksOffset := 0

	for i := 0; i < nbTasks; i++ {
		wg.Add(1)
		start := i*nbIterationsPerCpus + extraTasksOffset
		end := start + nbIterationsPerCpus
		if extraTasks > 0 {
			end++
			extraTasks--
			extraTasksOffset++
		}
		go func() {
			work(start, end)
			wg.Done()
		}()
	}

	wg.Wait()
}
