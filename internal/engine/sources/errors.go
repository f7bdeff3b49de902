package sources

import "errors"

var (
	// ErrNotPlaylist is returned when a locator is not a YouTube playlist URL.
	ErrNotPlaylist = errors.New("not a youtube playlist")

	// ErrUnsupportedLocator is returned by Registry.Expand when no parser accepts the URL.
	ErrUnsupportedLocator = errors.New("unsupported locator")

	// ErrEmptyPlaylist is returned when the bootstrap page carries neither
	// identifiers nor a continuation token.
	ErrEmptyPlaylist = errors.New("playlist has no available media")

	// ErrProtocolInconsistency is returned when the page announces a continuation
	// but omits what is needed to follow it.
	ErrProtocolInconsistency = errors.New("continuation protocol inconsistency")
)
