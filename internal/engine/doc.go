// Package engine identifies incoming resource descriptions against the
// store and merges them.
//
// Identification maps the subjects of a batch (blank placeholders and,
// depending on the Mode, foreign identifiers) to stored resources. A subject
// with a nie:url is matched by location only. Any other subject is matched
// by its types, which must all hold, and its identifying property values,
// each of which adds one to a candidate's score. The candidates with the
// highest positive score win; a tie is handed to the DuplicateMatchFunc and
// fails without one. Values that reference other staged subjects are
// identified first, guarded against cycles.
//
// Merging runs in two phases:
//
// Validation (no writes):
//  1. graph metadata types and properties
//  2. reference resolution through the identification mapping
//  3. cardinality, with OverwriteProperties and LazyCardinalities
//  4. domain and range
//
// Commit:
//  5. duplicate statements are left in their graph when its metadata
//     already describes the batch, otherwise moved to a graph carrying the
//     union of both metadata sets
//  6. remaining placeholders become new resources
//  7. types, properties and resource metadata are written into one new
//     graph per merge
//
// Engine runs both inside a store transaction and publishes the changes to
// a watcher.Manager once the transaction has committed.
package engine
