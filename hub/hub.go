package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/BaSui01/ragkit/internal/cache"
	"github.com/BaSui01/ragkit/internal/metrics"
	"github.com/BaSui01/ragkit/internal/telemetry"
	"github.com/BaSui01/ragkit/internal/tlsutil"
	"github.com/BaSui01/ragkit/types"
)

// ModelConfig 是模型仓库 config.json 中工厂关心的部分。
type ModelConfig struct {
	ModelType     string   `json:"model_type"`
	Architectures []string `json:"architectures,omitempty"`
	// Raw 保存完整的 config.json，便于调用方读取其他字段
	Raw map[string]any `json:"raw,omitempty"`
}

// Fetcher 将模型路径或仓库 ID 解析为模型配置。
type Fetcher interface {
	FetchModelConfig(ctx context.Context, path string) (*ModelConfig, error)
}

// FetcherFunc 将普通函数适配为 Fetcher。
type FetcherFunc func(ctx context.Context, path string) (*ModelConfig, error)

// FetchModelConfig 调用 f。
func (f FetcherFunc) FetchModelConfig(ctx context.Context, path string) (*ModelConfig, error) {
	return f(ctx, path)
}

// Config 配置 Client。
type Config struct {
	// Endpoint Hugging Face 兼容端点，例如 https://huggingface.co
	Endpoint string
	// Token 访问令牌（可选）
	Token string
	// Revision 分支或提交，默认 main
	Revision string
	// Timeout 单次 HTTP 请求超时
	Timeout time.Duration
	// CacheTTL 远端结果写入缓存的过期时间
	CacheTTL time.Duration
	// RateLimitRPS 每秒请求上限，0 表示不限速
	RateLimitRPS float64
}

// Option 配置 Client 的可选依赖。
type Option func(*Client)

// WithHTTPClient 替换默认 HTTP 客户端。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCache 启用 Redis 元数据缓存。
func WithCache(m *cache.Manager) Option {
	return func(c *Client) { c.cache = m }
}

// WithMetrics 设置指标收集器。
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) { c.metrics = m }
}

// Client 是默认的 Fetcher 实现：本地目录优先，其次缓存，最后远端仓库。
type Client struct {
	cfg     Config
	http    *http.Client
	cache   *cache.Manager
	metrics *metrics.Collector
	limiter *rate.Limiter
	group   singleflight.Group
	logger  *zap.Logger
}

var _ Fetcher = (*Client)(nil)

// NewClient 创建 Client。
func NewClient(cfg Config, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://huggingface.co"
	}
	if cfg.Revision == "" {
		cfg.Revision = "main"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := &Client{
		cfg:    cfg,
		http:   tlsutil.SecureHTTPClient(cfg.Timeout),
		logger: logger.With(zap.String("component", "hub")),
	}
	if cfg.RateLimitRPS > 0 {
		burst := int(cfg.RateLimitRPS)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchModelConfig 解析 path 对应的模型配置。
// path 可以是包含 config.json 的本地目录、config.json 文件本身，或仓库 ID（org/name）。
func (c *Client) FetchModelConfig(ctx context.Context, path string) (*ModelConfig, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "hub.FetchModelConfig",
		trace.WithAttributes(attribute.String("model.path", path)))
	defer span.End()

	start := time.Now()
	cfg, source, err := c.fetch(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("model.type", cfg.ModelType),
		attribute.String("model.source", source),
	)
	telemetry.RecordMetadataFetch(ctx, source, time.Since(start))
	return cfg, nil
}

func (c *Client) fetch(ctx context.Context, path string) (*ModelConfig, string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, "", types.NewError(types.ErrInvalidRequest, "model path is empty").WithComponent("hub")
	}

	start := time.Now()
	if file, ok := localConfigFile(path); ok {
		cfg, err := readConfigFile(file)
		if err != nil {
			return nil, "", metadataError(path, err)
		}
		c.metrics.RecordMetadataFetch("local", time.Since(start))
		c.logger.Debug("model config loaded from disk", zap.String("path", file))
		return cfg, "local", nil
	}

	key := "hub:config:" + path
	if c.cache != nil {
		var cached ModelConfig
		err := c.cache.GetJSON(ctx, key, &cached)
		switch {
		case err == nil:
			c.metrics.RecordCacheHit("hub")
			c.metrics.RecordMetadataFetch("cache", time.Since(start))
			return &cached, "cache", nil
		case cache.IsCacheMiss(err):
			c.metrics.RecordCacheMiss("hub")
		default:
			c.metrics.RecordCacheError("hub")
			c.logger.Warn("model config cache read failed", zap.String("path", path), zap.Error(err))
		}
	}

	// 共享的远程请求及缓存写回不绑定首个调用方的 ctx，每个调用方各自等待自己的 ctx
	ch := c.group.DoChan(path, func() (any, error) {
		fetchCtx := context.WithoutCancel(ctx)
		cfg, err := c.fetchRemote(fetchCtx, path)
		if err != nil {
			return nil, err
		}
		if c.cache != nil {
			if err := c.cache.SetJSON(fetchCtx, key, cfg, c.cfg.CacheTTL); err != nil {
				c.metrics.RecordCacheError("hub")
				c.logger.Warn("model config cache write failed", zap.String("path", path), zap.Error(err))
			}
		}
		return cfg, nil
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, "", metadataError(path, ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, "", res.Err
	}
	c.metrics.RecordMetadataFetch("remote", time.Since(start))
	return res.Val.(*ModelConfig), "remote", nil
}

func (c *Client) fetchRemote(ctx context.Context, repo string) (*ModelConfig, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, metadataError(repo, err)
		}
	}

	endpoint := strings.TrimRight(c.cfg.Endpoint, "/") + "/" + escapeRepo(repo) +
		"/resolve/" + url.PathEscape(c.cfg.Revision) + "/config.json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, metadataError(repo, err)
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	c.logger.Debug("fetching model config", zap.String("repo", repo), zap.String("url", endpoint))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, metadataError(repo, err).WithRetryable(true)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, metadataError(repo, err).WithRetryable(true)
	}
	if resp.StatusCode != http.StatusOK {
		e := metadataError(repo, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200))).
			WithHTTPStatus(resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			e.WithRetryable(true)
		}
		return nil, e
	}

	cfg, err := parseModelConfig(body)
	if err != nil {
		return nil, metadataError(repo, err)
	}
	return cfg, nil
}

// localConfigFile 返回 path 对应的本地 config.json。
func localConfigFile(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		file := filepath.Join(path, "config.json")
		if _, err := os.Stat(file); err != nil {
			return "", false
		}
		return file, true
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return path, true
	}
	return "", false
}

func readConfigFile(file string) (*ModelConfig, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return parseModelConfig(data)
}

func parseModelConfig(data []byte) (*ModelConfig, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config.json: %w", err)
	}
	cfg := &ModelConfig{Raw: raw}
	if v, ok := raw["model_type"].(string); ok {
		cfg.ModelType = v
	}
	if archs, ok := raw["architectures"].([]any); ok {
		for _, a := range archs {
			if s, ok := a.(string); ok {
				cfg.Architectures = append(cfg.Architectures, s)
			}
		}
	}
	return cfg, nil
}

func escapeRepo(repo string) string {
	parts := strings.Split(repo, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func metadataError(path string, cause error) *types.Error {
	var te *types.Error
	if errors.As(cause, &te) && te.Code == types.ErrModelMetadata {
		return te
	}
	return types.Errorf(types.ErrModelMetadata, "fetch model config for %q", path).
		WithCause(cause).
		WithComponent("hub")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
