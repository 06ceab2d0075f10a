package snapshot

import "unicode/utf8"

// TryDecodeUTF8 attempts to decode data as UTF-8 text. The boolean result is
// false when the bytes are not valid UTF-8, which is how binary files are
// detected: failing to decode is exclusion policy, not an error condition.
// Valid UTF-8 content is returned verbatim, including NUL bytes and without
// any line-ending normalization.
func TryDecodeUTF8(data []byte) (string, bool) {
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}
