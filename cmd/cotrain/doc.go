// Package main provides the cotrain command. It co-trains one base learner
// per feature view subset on a small tagged seed and a large untagged pool,
// cross-validated over folds, and plots the F-measure of every view and of
// their combination per iteration.
//
// Usage:
//
//	cotrain tagged.json untagged.json --positive 2 --negative 2 --unlabeled 75
//
// --positive and --negative are required, on the command line or as
// COTRAIN_POSITIVE and COTRAIN_NEGATIVE. Other settings can also come from a
// YAML file (--config) or COTRAIN_* environment variables; flags win over both.
package main
