package pipeline

import "errors"

// Domain-specific errors for the processing pipeline.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnknownCamera is returned when a notification's camera identifier
	// matches no configured profile. There is no default profile.
	ErrUnknownCamera = errors.New("pipeline: unknown camera")

	// ErrEmptyEventID is returned when a notification payload holds no
	// usable event identifier.
	ErrEmptyEventID = errors.New("pipeline: empty event identifier")

	// ErrConvertFailed is returned when the transcoding tool reports a
	// non-zero exit status.
	ErrConvertFailed = errors.New("pipeline: conversion failed")

	// ErrQueueFull is returned when the bounded work queue cannot accept
	// another notification.
	ErrQueueFull = errors.New("pipeline: work queue full")

	// ErrPoolStopped is returned when enqueueing after the pool has been
	// stopped.
	ErrPoolStopped = errors.New("pipeline: worker pool stopped")
)
