// Package annotate turns a staged image and audio recording into an
// encoded annotation. It validates the incoming parts, runs the
// external encoder, places the result in the account outputs directory,
// and records the annotation row.
package annotate
