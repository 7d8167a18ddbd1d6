// Package resource groups flat statement lists by subject.
//
// A Resource holds everything a batch says about one subject; a Batch maps
// subjects to Resources. Both are plain values used as input to identification
// and merging. Methods that change a Resource operate on a clone so a Batch
// handed to one component is never modified behind another's back.
package resource
