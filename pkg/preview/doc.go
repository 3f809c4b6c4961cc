// Package preview holds the state of a live form preview: the mounted
// schema, the form controller, the transient success notice and the submit
// flow that hands accepted values to a Sink.
package preview
