// Package render turns elapsed time and an optional historical total into the
// single progress line shown while an operation runs.
//
// Everything here is pure: no I/O and no state beyond the arguments.
//
// # Output Format
//
//	Loading "org/model" ... 00:07
//	Loading "org/model" ... 00:07/00:42 [███                 ] (16%)
//	Loading "org/model" ... 1:02:03/1:10:00 [██████████████████  ] (88%)
package render
