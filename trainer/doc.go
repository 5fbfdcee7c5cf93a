// Package trainer drives co-training over all folds of a Handler for a
// number of iterations, recording metrics after every fold step. An
// interrupted or failed run keeps the metrics of its completed iterations.
package trainer
