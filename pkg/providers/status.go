package providers

import (
	"net/http"
	"strconv"
	"strings"
)

// contextLengthMarkers 上游在超出上下文时返回的文本特征
var contextLengthMarkers = []string{
	"context_length_exceeded",
	"maximum context length",
	"context window",
	"too many tokens",
}

// LooksLikeContextLength 通过错误码或错误消息识别上下文超限
func LooksLikeContextLength(code, message string) bool {
	if code == ErrCodeContextLength {
		return true
	}
	msg := strings.ToLower(message)
	for _, marker := range contextLengthMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func httpStatus(code int) string {
	if text := http.StatusText(code); text != "" {
		return strconv.Itoa(code) + " " + text
	}
	return strconv.Itoa(code)
}
