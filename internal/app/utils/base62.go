// Package utils содержит вспомогательные функции,
// в том числе кодирование счётчика в короткий код.
package utils

import (
	"errors"
	"strings"
)

const charset = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const base = uint64(len(charset))

// DefaultCodeLength - длина короткого кода по умолчанию.
const DefaultCodeLength = 6

// ErrCodeOverflow возвращается, если число не помещается в код заданной длины.
var ErrCodeOverflow = errors.New("value does not fit into code length")

// MaxCodeValue возвращает наибольшее число, которое кодируется length символами: 62^length - 1.
func MaxCodeValue(length int) uint64 {
	if length <= 0 {
		return 0
	}
	limit := uint64(1)
	for i := 0; i < length; i++ {
		if limit > ^uint64(0)/base {
			return ^uint64(0)
		}
		limit *= base
	}
	return limit - 1
}

// EncodeBase62 кодирует n позиционно по основанию 62 и дополняет результат слева
// нулевым символом алфавита до длины length.
func EncodeBase62(n uint64, length int) (string, error) {
	if length <= 0 || n > MaxCodeValue(length) {
		return "", ErrCodeOverflow
	}

	b := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		b[i] = charset[n%base]
		n /= base
	}
	return string(b), nil
}

// IsValidCode проверяет, что code имеет длину length и состоит только из символов алфавита.
func IsValidCode(code string, length int) bool {
	if len(code) != length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(charset, code[i]) < 0 {
			return false
		}
	}
	return true
}
