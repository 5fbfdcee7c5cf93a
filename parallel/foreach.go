// Package parallel contains the bounded worker pool used to process folds concurrently.
package parallel

import "sync"

// ForEach executes a for loop with a limited number of concurrent goroutines.
// Each goroutine processes one integer, from 0 to length.
func ForEach(length, limit int, body func(i int)) {
	if limit <= 0 {
		limit = 1 // Default to 1 if limit is zero or negative
	}
	if length <= 0 {
		return // No iterations to perform
	}

	sem := make(chan struct{}, limit) // Semaphore with buffer size 'limit'
	var wg sync.WaitGroup
	wg.Add(length)

	for i := 0; i < length; i++ {
		sem <- struct{}{} // Acquire semaphore
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }() // Release semaphore after function exits

			body(i)
		}(i)
	}

	wg.Wait() // Wait for all goroutines to finish
}

// ForEachErr is ForEach for bodies which can fail. Every index still runs;
// the error of the lowest failing index is returned.
func ForEachErr(length, limit int, body func(i int) error) error {
	if length <= 0 {
		return nil
	}
	errs := make([]error, length)
	ForEach(length, limit, func(i int) {
		errs[i] = body(i)
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
