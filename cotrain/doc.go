// Package cotrain implements multi-view co-training.
//
// A Handler owns, for every cross-validation fold, four disjoint sets of
// examples: Training, Testing, the Untagged batch currently offered for
// labeling and the Reserve it is refilled from. Each round a Cotrainer fits
// one model per feature view subset on Training, lets every view promote its
// most confident positive and negative predictions out of the Untagged
// batch, and the Handler moves the promoted examples into Training and tops
// the batch up from Reserve.
package cotrain
