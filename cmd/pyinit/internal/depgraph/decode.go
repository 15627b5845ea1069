// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package depgraph

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUndecodable is returned for source files that are neither UTF-8 nor
// BOM-marked UTF-16.
var ErrUndecodable = errors.New("not valid UTF-8 or UTF-16 text")

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DecodeSource converts raw file bytes to text.
//
// # Description
//
// A byte order mark selects the encoding: UTF-8 with BOM and both UTF-16
// byte orders are decoded through golang.org/x/text. Without a BOM the data
// must already be valid UTF-8, which is the Python 3 source default.
// Anything else yields ErrUndecodable, including a truncated UTF-16 code
// unit, an unpaired surrogate or invalid bytes after a UTF-8 BOM.
func DecodeSource(data []byte) (string, error) {
	if !hasBOM(data) {
		if !utf8.Valid(data) {
			return "", ErrUndecodable
		}
		return string(data), nil
	}

	switch {
	case bytes.HasPrefix(data, bomUTF8):
		if !utf8.Valid(data[len(bomUTF8):]) {
			return "", ErrUndecodable
		}
	case bytes.HasPrefix(data, bomUTF16LE):
		if err := checkUTF16(data[len(bomUTF16LE):], binary.LittleEndian); err != nil {
			return "", err
		}
	case bytes.HasPrefix(data, bomUTF16BE):
		if err := checkUTF16(data[len(bomUTF16BE):], binary.BigEndian); err != nil {
			return "", err
		}
	}

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if !utf8.Valid(out) {
		return "", ErrUndecodable
	}
	return string(out), nil
}

// checkUTF16 rejects payloads the x/text decoder would silently repair
// with U+FFFD.
func checkUTF16(payload []byte, order binary.ByteOrder) error {
	if len(payload)%2 != 0 {
		return fmt.Errorf("%w: odd UTF-16 byte count", ErrUndecodable)
	}
	for i := 0; i < len(payload); i += 2 {
		u := rune(order.Uint16(payload[i:]))
		if !utf16.IsSurrogate(u) {
			continue
		}
		if u >= 0xDC00 || i+4 > len(payload) {
			return fmt.Errorf("%w: unpaired UTF-16 surrogate at byte %d", ErrUndecodable, i)
		}
		next := rune(order.Uint16(payload[i+2:]))
		if utf16.DecodeRune(u, next) == utf8.RuneError {
			return fmt.Errorf("%w: unpaired UTF-16 surrogate at byte %d", ErrUndecodable, i)
		}
		i += 2
	}
	return nil
}

func hasBOM(data []byte) bool {
	return bytes.HasPrefix(data, bomUTF8) ||
		bytes.HasPrefix(data, bomUTF16LE) ||
		bytes.HasPrefix(data, bomUTF16BE)
}
