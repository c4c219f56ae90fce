package utils

import (
	"bytes"
	"crypto/rand"
	"math/big"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var Json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// 出现在任意位置都视为 HTML 页面
	pageMarkers = [][]byte{
		[]byte("<!doctype html"),
		[]byte("<html"),
	}
	// 只有文本本身以标签开头时才算
	fragmentMarkers = [][]byte{
		[]byte("<head"),
		[]byte("<body"),
	}
)

// LooksLikeMarkup 判断响应体是否是 HTML 错误页（通常是反代或框架的默认错误页）
func LooksLikeMarkup(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return false
	}
	lower := bytes.ToLower(trimmed)
	for _, m := range pageMarkers {
		if bytes.Contains(lower, m) {
			return true
		}
	}
	if lower[0] != '<' {
		return false
	}
	for _, m := range fragmentMarkers {
		if bytes.Contains(lower, m) {
			return true
		}
	}
	return false
}

// JoinURL joins a base URL and an API path with exactly one slash between them.
func JoinURL(base, path string) string {
	base = strings.TrimRight(base, "/")
	path = strings.TrimLeft(path, "/")
	if path == "" {
		return base
	}
	return base + "/" + path
}

func IsFileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func GenerateRandomString(n int) (string, error) {
	const letters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	lettersLength := big.NewInt(int64(len(letters)))
	ret := make([]byte, n)
	for i := 0; i < n; i++ {
		num, err := rand.Int(rand.Reader, lettersLength)
		if err != nil {
			return "", err
		}
		ret[i] = letters[num.Int64()]
	}
	return string(ret), nil
}

// Mask keeps the head and tail of a secret for log output.
func Mask(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + "****" + s[len(s)-4:]
}
