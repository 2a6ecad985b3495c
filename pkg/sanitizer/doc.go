// Package sanitizer normalizes user input before it is validated and sent to
// the API.
//
// All normalization functions are idempotent. Invalid input yields an empty
// string or an empty slice rather than an error; validation reports the
// problem afterwards.
//
// Normalization includes:
//   - Phone numbers: E.164 format, national numbers read as Uzbek (+998)
//   - Strings: collapse whitespace, trim leading/trailing spaces
//   - Usernames: trimmed, no inner whitespace
//   - Slices: remove duplicates and empty values after normalization
package sanitizer
