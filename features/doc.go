// Package features turns raw records into named feature views.
// Each view is a sparse feature dictionary; a Subset groups views into the
// input of one co-training classifier.
package features
