package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/ragkit/internal/tlsutil"
	"github.com/BaSui01/ragkit/types"
)

// tgiRequest text-generation-inference /generate 请求体。
type tgiRequest struct {
	Inputs     string        `json:"inputs"`
	Parameters tgiParameters `json:"parameters"`
}

type tgiParameters struct {
	MaxNewTokens   int      `json:"max_new_tokens"`
	Temperature    *float64 `json:"temperature,omitempty"`
	TopP           *float64 `json:"top_p,omitempty"`
	Stop           []string `json:"stop,omitempty"`
	DoSample       bool     `json:"do_sample"`
	ReturnFullText bool     `json:"return_full_text"`
}

type tgiResponse struct {
	GeneratedText string `json:"generated_text"`
}

// tgiClient 调用 /generate 端点，按 prompt 并发请求。
type tgiClient struct {
	endpoint    string
	http        *http.Client
	params      Params
	concurrency int
	logger      *zap.Logger
}

func newTGIClient(cfg Config, hc *http.Client, logger *zap.Logger) (*tgiClient, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, types.NewError(types.ErrInvalidRequest, "generator endpoint is required").WithComponent("generator")
	}
	hc = tlsutil.ClientOrDefault(hc, cfg.Timeout)
	return &tgiClient{
		endpoint:    strings.TrimRight(cfg.Endpoint, "/") + "/generate",
		http:        hc,
		params:      cfg.Params,
		concurrency: cfg.Concurrency,
		logger:      logger,
	}, nil
}

func (c *tgiClient) generateAll(ctx context.Context, prompts []string) ([]string, error) {
	out := make([]string, len(prompts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, p := range prompts {
		g.Go(func() error {
			text, err := c.generate(gctx, p)
			if err != nil {
				return fmt.Errorf("prompt %d: %w", i, err)
			}
			out[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tgiClient) generate(ctx context.Context, prompt string) (string, error) {
	params := tgiParameters{
		MaxNewTokens: c.params.MaxTokens,
		Stop:         c.params.Stop,
	}
	if c.params.Temperature > 0 {
		t := c.params.Temperature
		params.Temperature = &t
		params.DoSample = true
	}
	if c.params.TopP > 0 && c.params.TopP < 1 {
		p := c.params.TopP
		params.TopP = &p
		params.DoSample = true
	}

	body, err := json.Marshal(tgiRequest{Inputs: prompt, Parameters: params})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		code := types.ErrUpstreamError
		var ne net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
			code = types.ErrUpstreamTimeout
		}
		return "", types.NewError(code, "generate request failed").
			WithCause(err).
			WithRetryable(true).
			WithComponent("generator")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", types.NewError(types.ErrUpstreamError, "read generate response").WithCause(err).WithComponent("generator")
	}
	if resp.StatusCode != http.StatusOK {
		e := types.Errorf(types.ErrUpstreamError, "generate returned status %d", resp.StatusCode).
			WithHTTPStatus(resp.StatusCode).
			WithCause(fmt.Errorf("%s", bytes.TrimSpace(data))).
			WithComponent("generator")
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			e.WithRetryable(true)
		}
		return "", e
	}

	// /generate 对单条输入返回对象，部分网关返回数组
	var single tgiResponse
	if err := json.Unmarshal(data, &single); err == nil {
		return single.GeneratedText, nil
	}
	var list []tgiResponse
	if err := json.Unmarshal(data, &list); err != nil || len(list) == 0 {
		return "", types.NewError(types.ErrUpstreamError, "decode generate response").WithCause(err).WithComponent("generator")
	}
	return list[0].GeneratedText, nil
}
