package utils

import (
	"math/rand/v2"
	"strconv"
)

// CardCode returns a pseudo-random six digit card code.
func CardCode() string {
	return strconv.Itoa(100000 + rand.IntN(900000))
}

// UniqueCardCode draws codes until taken reports false, giving up after
// attempts tries and returning the last draw.
func UniqueCardCode(attempts int, taken func(code string) bool) string {
	code := CardCode()
	for i := 1; i < attempts && taken(code); i++ {
		code = CardCode()
	}
	return code
}
