package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"iwala99_backend/internal/config"
	"iwala99_backend/internal/util"
	"iwala99_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
)

// cyberGuardPrompt frames every upstream conversation. User history is
// appended after it, never before.
const cyberGuardPrompt = "You are CyberGuard, the resident AI of the IWALA99 cybersecurity community. " +
	"You help members with ethical hacking concepts, CTF techniques, defensive security, and career advice. " +
	"Explain clearly and practically, favor hands-on examples, and never assist with attacks against systems the user does not own or have permission to test. " +
	"If a request is clearly malicious, refuse and point the user toward legal practice environments instead."

const (
	ProviderGateway  = "gateway"
	ProviderBlackbox = "blackbox"
)

type CyberChatService struct {
	Cfg   *config.AIConfig
	Redis *redis.Client
}

func NewCyberChatService(cfg *config.AIConfig, rdb *redis.Client) *CyberChatService {
	return &CyberChatService{Cfg: cfg, Redis: rdb}
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionChunk struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
		Delta   AIChatMessage `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// resolveProvider defaults to the gateway; unknown names fall back too.
func (s *CyberChatService) resolveProvider(name string) (string, config.AIProviderConfig) {
	if name == ProviderBlackbox && s.Cfg.Blackbox.BaseURL != "" {
		return ProviderBlackbox, s.Cfg.Blackbox
	}
	return ProviderGateway, s.Cfg.Gateway
}

// chatWindowScript trims the window, counts it, and records the request
// in one atomic step so concurrent requests cannot both slip under the
// limit.
var chatWindowScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], 0, ARGV[1])
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[2]) then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[3], ARGV[3])
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return 1
`)

// Allow applies the per-user sliding window over Redis: a sorted set of
// request timestamps trimmed to the last minute. Shared state keeps the
// limit honest across instances.
func (s *CyberChatService) Allow(ctx context.Context, userID uint) (bool, error) {
	limit := s.Cfg.ChatRequestsPerMinute
	if limit <= 0 {
		limit = 10
	}

	key := fmt.Sprintf("chat:ratelimit:%d", userID)
	now := time.Now().UnixNano()
	windowStart := now - time.Minute.Nanoseconds()

	res, err := chatWindowScript.Run(ctx, s.Redis, []string{key},
		windowStart, limit, now, (2 * time.Minute).Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

// ChatStream proxies the conversation upstream with stream on and
// relays content deltas as they arrive. The caller owns the channels'
// consumption; both close when the stream ends.
func (s *CyberChatService) ChatStream(ctx context.Context, userID uint, providerName string, history []AIChatMessage) (<-chan string, <-chan error, error) {
	allowed, err := s.Allow(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if !allowed {
		monitoring.ChatProxyCounter.WithLabelValues(providerName, "rate_limited").Inc()
		return nil, nil, util.ErrRateLimited
	}

	provider, providerCfg := s.resolveProvider(providerName)

	messages := make([]AIChatMessage, 0, len(history)+1)
	messages = append(messages, AIChatMessage{Role: "system", Content: cyberGuardPrompt})
	for _, h := range history {
		if h.Role != "user" && h.Role != "assistant" {
			continue
		}
		messages = append(messages, h)
	}

	reqBody := map[string]interface{}{
		"model":    providerCfg.Model,
		"messages": messages,
		"stream":   true,
	}
	jsonData, _ := json.Marshal(reqBody)

	out := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errChan)

		req, err := http.NewRequestWithContext(ctx, "POST", providerCfg.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
		if err != nil {
			monitoring.ChatProxyCounter.WithLabelValues(provider, "error").Inc()
			errChan <- err
			return
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+providerCfg.APIKey)

		client := &http.Client{Timeout: 2 * time.Minute}
		resp, err := client.Do(req)
		if err != nil {
			monitoring.ChatProxyCounter.WithLabelValues(provider, "error").Inc()
			errChan <- err
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			monitoring.ChatProxyCounter.WithLabelValues(provider, "upstream_error").Inc()
			errChan <- fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
			return
		}

		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err != io.EOF {
					errChan <- err
				}
				break
			}

			line = strings.TrimSpace(line)
			if line == "" || !strings.HasPrefix(line, "data: ") {
				continue
			}

			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				break
			}

			var chunk chatCompletionChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue
			}

			if len(chunk.Choices) > 0 {
				content := chunk.Choices[0].Delta.Content
				if content != "" {
					out <- content
				}
			}
		}

		monitoring.ChatProxyCounter.WithLabelValues(provider, "ok").Inc()
	}()

	return out, errChan, nil
}
