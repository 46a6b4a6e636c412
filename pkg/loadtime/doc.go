// Package loadtime shows a live progress line for operations that give no
// progress signal of their own, estimating completion from how long the same
// operation took last time.
//
// # Usage
//
//	model, err := loadtime.Run(loadtime.Config{Name: "org/model-7b"}, func() (*Model, error) {
//	    return LoadModel("org/model-7b")
//	})
//
// The first run shows elapsed time only:
//
//	Loading "org/model-7b" ... 00:41
//
// Later runs show elapsed against the previous total, with a bar:
//
//	Loading "org/model-7b" ... 00:12/00:41 [██████              ] (29%)
//
// Durations are stored as JSON under ~/.cache/loadtime, one file per name.
// Storage failures are ignored; they only cost the estimate.
package loadtime
