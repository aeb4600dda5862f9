// Package calcium implements the corrected calcium engine. It contains:
//
//   - Unit: the two calcium units (mg/dL and mmol/L)
//   - ParsedValue: the interpretation of a raw text input
//   - Validation: the per-field plausibility feedback
//   - Engine: the reactive holder of raw inputs that re-derives every output
//     after each mutation
//
// Everything in this package is pure and synchronous. An Engine is not safe
// for concurrent use; callers that share one must serialize access.
package calcium
