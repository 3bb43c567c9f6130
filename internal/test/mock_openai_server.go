package test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"
)

// MockOpenAIServer 是一个模拟的 OpenAI 兼容服务器，按记录协议应答
type MockOpenAIServer struct {
	Server *httptest.Server
	URL    string // 以 /v1/ 结尾，可直接作为 base_url

	mu           sync.Mutex
	transform    func(string) string
	reply        func(payload string) string
	contextLimit int
	payloads     []string
}

// NewMockOpenAIServer 创建一个新的模拟服务器，默认原样返回记录
func NewMockOpenAIServer(t *testing.T) *MockOpenAIServer {
	mock := &MockOpenAIServer{
		transform: func(s string) string { return s },
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var requestBody struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
			writeError(w, http.StatusBadRequest, "无法解析请求体", "invalid_request_error")
			return
		}

		var userMessage string
		for _, msg := range requestBody.Messages {
			if msg.Role == "user" {
				userMessage = msg.Content
				break
			}
		}
		records := extractRecords(userMessage)
		payload := strings.Join(records, "\n\n")

		mock.mu.Lock()
		mock.payloads = append(mock.payloads, payload)
		limit := mock.contextLimit
		transform := mock.transform
		reply := mock.reply
		mock.mu.Unlock()

		if limit > 0 && utf8.RuneCountInString(payload) > limit {
			writeError(w, http.StatusBadRequest,
				"This model's maximum context length is exceeded. Please reduce the length of the messages.",
				"context_length_exceeded")
			return
		}

		var content string
		if reply != nil {
			content = reply(payload)
		} else {
			out := make([]string, len(records))
			for i, rec := range records {
				out[i] = rec[:14] + transform(rec[14:])
			}
			content = strings.Join(out, "\n\n")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-mock",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   requestBody.Model,
			"choices": []map[string]interface{}{
				{
					"message": map[string]interface{}{
						"role":    "assistant",
						"content": content,
					},
					"finish_reason": "stop",
					"index":         0,
				},
			},
			"usage": map[string]interface{}{
				"prompt_tokens":     100,
				"completion_tokens": 50,
				"total_tokens":      150,
			},
		})
	}))

	mock.Server = server
	mock.URL = server.URL + "/v1/"

	t.Cleanup(server.Close)
	return mock
}

// SetTransform 设置对每条记录文本的变换
func (m *MockOpenAIServer) SetTransform(fn func(string) string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transform = fn
}

// SetReply 直接指定响应内容，忽略记录变换
func (m *MockOpenAIServer) SetReply(fn func(payload string) string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reply = fn
}

// SetContextLimit 负载超过该字符数时返回 context_length_exceeded
func (m *MockOpenAIServer) SetContextLimit(limit int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contextLimit = limit
}

// Payloads 返回收到的所有负载
func (m *MockOpenAIServer) Payloads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.payloads...)
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"message": message,
			"type":    "invalid_request_error",
			"code":    code,
		},
	})
}

// extractRecords 从用户消息中挑出 "<12位标识符>: 文本" 形式的段落
func extractRecords(message string) []string {
	var records []string
	for _, block := range strings.Split(message, "\n\n") {
		if isRecord(block) {
			records = append(records, block)
		}
	}
	return records
}

func isRecord(block string) bool {
	if len(block) < 14 || block[12:14] != ": " {
		return false
	}
	for _, c := range block[:12] {
		if !strings.ContainsRune("0123456789abcdef-", c) {
			return false
		}
	}
	return true
}
