package project

import "errors"

var (
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = errors.New("invalid project input")
	// ErrInvalidTransition indicates a phase change other than INCEPTION -> CONSTRUCTION.
	ErrInvalidTransition = errors.New("invalid phase transition")
	// ErrInvalidPath indicates a file path that cannot be normalized.
	ErrInvalidPath = errors.New("invalid file path")
	// ErrDuplicatePath indicates two file paths normalizing to the same key.
	ErrDuplicatePath = errors.New("duplicate file path")
	// ErrEmptyFileSet indicates a CONSTRUCTION project without files.
	ErrEmptyFileSet = errors.New("empty file set")
)
