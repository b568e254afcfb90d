package mana

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to the caller, per spec.md §7. All of them abort
// execution with no SearchResult; none are recovered locally.
var (
	// ErrDataIntegrity marks a violation of the invariant that every FST
	// word has a corresponding entry in the word->docids map, or malformed
	// UTF-8 read back from the FST.
	ErrDataIntegrity = errors.New("mana: data integrity violation")

	// ErrStorageRead marks a failure of the underlying read transaction.
	ErrStorageRead = errors.New("mana: storage read failure")

	// ErrConfiguration marks a caller-supplied ordering criterion that
	// cannot be honored: an unknown field id, or a string-typed field.
	ErrConfiguration = errors.New("mana: configuration error")
)

// dataIntegrityf wraps ErrDataIntegrity with a formatted message, preserving
// errors.Is(err, ErrDataIntegrity).
func dataIntegrityf(format string, args ...any) error {
	return wrapf(ErrDataIntegrity, format, args...)
}

func storageReadf(format string, args ...any) error {
	return wrapf(ErrStorageRead, format, args...)
}

func configurationf(format string, args ...any) error {
	return wrapf(ErrConfiguration, format, args...)
}

func wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
