package modification

import (
	"fmt"
	"runtime"
	"sync"
)

// WorkItem is a read queued for decoding.
type WorkItem struct {
	Seq   int
	Input Input
}

// WorkResult holds the decoded calls for one read.
type WorkResult struct {
	Seq  int
	Mods Map
}

// ParallelDecode decodes work items using a pool of workers.
// Results are sent in arrival order; use OrderedCollect to consume them
// in sequence-number order. If workers is 0, runtime.NumCPU() is used.
func ParallelDecode(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				results <- WorkResult{Seq: item.Seq, Mods: item.Input.Decode()}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// Out-of-order results are buffered until the next expected sequence
// number arrives. Blocks until the results channel is closed. Results
// still buffered at that point mean a sequence number never arrived.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	if len(pending) > 0 {
		return fmt.Errorf("ordered collect: %d results after missing sequence %d", len(pending), nextSeq)
	}
	return nil
}

// DecodeAll decodes every input and returns the maps in input order.
func DecodeAll(inputs []Input, workers int) ([]Map, error) {
	items := make(chan WorkItem, len(inputs))
	for i, in := range inputs {
		items <- WorkItem{Seq: i, Input: in}
	}
	close(items)

	out := make([]Map, 0, len(inputs))
	err := OrderedCollect(ParallelDecode(items, workers), func(r WorkResult) error {
		out = append(out, r.Mods)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("decoding modifications: %w", err)
	}
	return out, nil
}
