// Package errors defines all exported error sentinels for the lfsrindex library.
//
// Both the top-level lfsrindex package and the command-line tools import from
// here, so errors.Is checks work across package boundaries.
package errors

import "errors"

// Build errors
var (
	ErrBuilderClosed    = errors.New("lfsrindex: builder is closed")
	ErrNoPolynomials    = errors.New("lfsrindex: polynomial set is empty")
	ErrTooManyChannels  = errors.New("lfsrindex: polynomial set exceeds maximum channel count")
	ErrInvalidLayout    = errors.New("lfsrindex: invalid index layout")
	ErrBucketOverflow   = errors.New("lfsrindex: bucket record count exceeds descriptor capacity")
	ErrOffsetOverflow   = errors.New("lfsrindex: data region offset exceeds descriptor capacity")
	ErrInvalidFlushSize = errors.New("lfsrindex: flush buffer smaller than one record")
)

// Index errors
var (
	ErrTruncatedFile = errors.New("lfsrindex: index file is truncated")
	ErrNotFound      = errors.New("lfsrindex: state not found")
)

// Query errors
var (
	ErrIndexClosed = errors.New("lfsrindex: index is closed")
)
