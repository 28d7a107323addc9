// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package sim

type kind int

const (
	kindSource kind = iota + 1
	kindFilter
	kindSink
)

type factory struct {
	kind kind
	// blocksize is the default payload size of generated buffers.
	blocksize int
	// needsLocation elements refuse PAUSED without a location property.
	needsLocation bool
	// generates marks sources that produce buffers on their own.
	generates bool
}

var factories = map[string]factory{
	"videotestsrc": {kind: kindSource, blocksize: 320 * 240 * 3 / 2, generates: true},
	"audiotestsrc": {kind: kindSource, blocksize: 4096, generates: true},
	"fakesrc":      {kind: kindSource, blocksize: 4096, generates: true},
	"appsrc":       {kind: kindSource},
	"filesrc":      {kind: kindSource, blocksize: 4096, needsLocation: true},

	"queue":        {kind: kindFilter},
	"tee":          {kind: kindFilter},
	"identity":     {kind: kindFilter},
	"capsfilter":   {kind: kindFilter},
	"videoconvert": {kind: kindFilter},
	"audioconvert": {kind: kindFilter},
	"videoscale":   {kind: kindFilter},
	"x264enc":      {kind: kindFilter},
	"mp4mux":       {kind: kindFilter},
	"matroskamux":  {kind: kindFilter},

	"appsink":       {kind: kindSink},
	"fakesink":      {kind: kindSink},
	"filesink":      {kind: kindSink, needsLocation: true},
	"autovideosink": {kind: kindSink},
	"autoaudiosink": {kind: kindSink},
}

func lookup(name string) (factory, bool) {
	f, ok := factories[name]
	return f, ok
}

func kindOf(name string) kind {
	return factories[name].kind
}
