// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package gst

import (
	"fmt"
	"sync"
)

type initResult struct {
	once sync.Once
	err  error
}

var (
	initMu sync.Mutex
	inits  = make(map[string]*initResult)
)

// Setup initialises engine once per process, keyed by engine name. It is safe
// to call from every constructor and from concurrent goroutines; all callers
// observe the result of the first initialisation.
func Setup(engine Engine) error {
	if engine == nil {
		return fmt.Errorf("%w: nil engine", ErrEngineUnavailable)
	}
	name := engine.Name()

	initMu.Lock()
	r, ok := inits[name]
	if !ok {
		r = &initResult{}
		inits[name] = r
	}
	initMu.Unlock()

	r.once.Do(func() {
		r.err = engine.Init()
	})
	return r.err
}
