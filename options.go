// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package zone

// rootOptions holds configuration applied to the process-wide singleton by
// [ConfigureRoot] (spec §4.C5, §9 "Global mutable state").
type rootOptions struct {
	logger             Logger
	onUnhandledError   func(task *Task, err error)
	microtaskDrainDone func()
}

// --- Root Options ---

// RootOption configures the process-wide zone singleton. Options take
// effect only when passed to [ConfigureRoot], which may be called once per
// process; the root zone itself is built at package initialization and is
// not affected by them. The settings they apply remain changeable later
// through [SetLogger], [SetOnUnhandledError] and [SetMicrotaskDrainDone].
type RootOption interface {
	applyRoot(*rootOptions)
}

// rootOptionImpl implements RootOption.
type rootOptionImpl struct {
	applyRootFunc func(*rootOptions)
}

func (r *rootOptionImpl) applyRoot(opts *rootOptions) {
	r.applyRootFunc(opts)
}

// WithLogger installs a structured [Logger] for zone lifecycle events
// (fork, schedule, run, cancel, hasTask transitions). The default is a
// no-op logger.
func WithLogger(logger Logger) RootOption {
	return &rootOptionImpl{func(opts *rootOptions) {
		opts.logger = logger
	}}
}

// WithOnUnhandledError installs the handler invoked when a microtask
// throws during [drainMicroTaskQueue] (spec §4.C5, §7 "Microtask-drain
// error: never rethrown ... dispatched to onUnhandledError").
func WithOnUnhandledError(fn func(task *Task, err error)) RootOption {
	return &rootOptionImpl{func(opts *rootOptions) {
		opts.onUnhandledError = fn
	}}
}

// WithMicrotaskDrainDone installs the hook invoked once after every
// microtask-queue drain completes (spec §6 privateApi.microtaskDrainDone).
func WithMicrotaskDrainDone(fn func()) RootOption {
	return &rootOptionImpl{func(opts *rootOptions) {
		opts.microtaskDrainDone = fn
	}}
}

// resolveRootOptions applies RootOption instances to rootOptions.
func resolveRootOptions(opts []RootOption) *rootOptions {
	cfg := &rootOptions{
		logger: noopLogger{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue // Skip nil options gracefully
		}
		opt.applyRoot(cfg)
	}
	return cfg
}
