// Package ir provides the typed value representation shared by the query
// compiler and every backend factory.
//
// This package contains value types only. All other internal packages
// import ir; ir imports nothing internal. This keeps IR the foundational
// layer with no circular dependencies.
//
// Key design constraints:
//   - NO float types anywhere - use int64 for numbers
//   - Temporal values carry their kind (date, datetime, time)
//   - Canonical JSON is the only serialization used for fingerprints
package ir
