// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package gst

import (
	"github.com/ManuGH/gstmgr/internal/log"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Option customises a Manager.
type Option func(*options)

type options struct {
	logger   *zerolog.Logger
	id       string
	sinkName string
	srcName  string
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// WithID sets the pipeline ID used in logs. A random UUID is used otherwise.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithAppSink selects the appsink by element name instead of the first one.
func WithAppSink(name string) Option {
	return func(o *options) { o.sinkName = name }
}

// WithAppSrc selects the appsrc by element name instead of the first one.
func WithAppSrc(name string) Option {
	return func(o *options) { o.srcName = name }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}
	if o.logger == nil {
		l := log.WithComponent("gst")
		o.logger = &l
	}
	return o
}
