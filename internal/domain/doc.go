// Package domain models the noise-level readings shown by the dashboard.
//
// # Data Source
//
// Readings arrive as user-uploaded CSV files, one measurement per row. The
// dashboard never stores them: each request parses the upload into a [Table],
// validates its columns, aggregates it and renders the result, then drops it.
//
// # Column Conventions
//
// Heatmap generator uploads must carry the exact (case-sensitive) columns:
//
//	latitude, longitude, noise_level
//
// Map overlay uploads are matched case-insensitively. Only latitude and
// longitude are required there; the intensity column is the first of these
// aliases present, in priority order:
//
//	value, noise, noise_level, average_db, avg_db
//
// Without an alias every point carries the same weight.
//
// The two matching modes are kept apart on purpose ([MatchExact] and
// [MatchFold]); the heatmap generator has always rejected "Latitude".
//
// # Missing Values
//
// Empty cells and the usual NA spellings (NA, N/A, NaN, null, None, #N/A, ...)
// are missing. Rows with a missing latitude, longitude or, when one is in use,
// intensity are dropped before aggregation; the remaining rows keep file order.
//
// # Coordinates
//
// Latitude must fall in [-90, 90] and longitude in [-180, 180]. Rows outside
// those ranges are dropped and counted, never clamped. When nothing survives
// the filter the map centre falls back to the caller-supplied default
// (the Maharashtra centre) instead of dividing by zero.
package domain
