package loadtest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sync"
	"time"
)

// RequestFunc 单次请求，返回错误计为失败
type RequestFunc func(ctx context.Context) error

// Scenario 压测场景：在 Duration 内以 Concurrency 个协程轮流执行 Requests
type Scenario struct {
	Name        string
	Concurrency int
	Duration    time.Duration
	Requests    []RequestFunc
}

// Result 场景结果
type Result struct {
	Name            string        `json:"name"`
	Concurrency     int           `json:"concurrency"`
	Duration        time.Duration `json:"duration"`
	TotalRequests   int64         `json:"total_requests"`
	SuccessRequests int64         `json:"success_requests"`
	FailedRequests  int64         `json:"failed_requests"`
	QPS             float64       `json:"qps"`
	ErrorRate       float64       `json:"error_rate"`
	Average         time.Duration `json:"average"`
	Min             time.Duration `json:"min"`
	Max             time.Duration `json:"max"`
	P50             time.Duration `json:"p50"`
	P95             time.Duration `json:"p95"`
	P99             time.Duration `json:"p99"`
}

type recorder struct {
	mu      sync.Mutex
	samples []time.Duration
	failed  int64
}

func (r *recorder) add(d time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, d)
	if err != nil {
		r.failed++
	}
}

// Run 执行场景，ctx 取消时提前结束
func Run(ctx context.Context, s Scenario) Result {
	if s.Concurrency <= 0 {
		s.Concurrency = 1
	}
	ctx, cancel := context.WithTimeout(ctx, s.Duration)
	defer cancel()

	rec := &recorder{}
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < s.Concurrency; i++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for n := offset; ctx.Err() == nil && len(s.Requests) > 0; n++ {
				req := s.Requests[n%len(s.Requests)]
				t := time.Now()
				err := req(ctx)
				// 截止时刻被打断的请求不计入
				if ctx.Err() != nil {
					return
				}
				rec.add(time.Since(t), err)
			}
		}(i)
	}
	wg.Wait()

	return summarize(s, time.Since(start), rec)
}

func summarize(s Scenario, elapsed time.Duration, rec *recorder) Result {
	res := Result{Name: s.Name, Concurrency: s.Concurrency, Duration: elapsed}
	n := len(rec.samples)
	if n == 0 {
		return res
	}

	sorted := slices.Clone(rec.samples)
	slices.Sort(sorted)

	var total time.Duration
	for _, d := range sorted {
		total += d
	}
	res.TotalRequests = int64(n)
	res.FailedRequests = rec.failed
	res.SuccessRequests = res.TotalRequests - rec.failed
	res.ErrorRate = float64(rec.failed) / float64(n)
	if elapsed > 0 {
		res.QPS = float64(n) / elapsed.Seconds()
	}
	res.Average = total / time.Duration(n)
	res.Min = sorted[0]
	res.Max = sorted[n-1]
	res.P50 = percentile(sorted, 0.50)
	res.P95 = percentile(sorted, 0.95)
	res.P99 = percentile(sorted, 0.99)
	return res
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)) * p)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// String 单行摘要
func (r Result) String() string {
	return fmt.Sprintf("%-18s | 并发: %-4d | 请求: %-7d | QPS: %-8.2f | P50: %-10v | P95: %-10v | 错误率: %.2f%%",
		r.Name, r.Concurrency, r.TotalRequests, r.QPS, r.P50, r.P95, r.ErrorRate*100)
}

// Client 针对 LearnHub API 的请求构造器
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// NewClient 创建请求构造器
func NewClient(baseURL, token string) *Client {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 512
	t.MaxIdleConnsPerHost = 512
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Transport: t, Timeout: 10 * time.Second},
	}
}

// Get 返回一个 GET 请求，状态码不在 expect 中视为失败
func (c *Client) Get(path string, expect ...int) RequestFunc {
	if len(expect) == 0 {
		expect = []int{http.StatusOK}
	}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
		if err != nil {
			return err
		}
		if c.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.Token)
		}
		resp, err := c.HTTP.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if !slices.Contains(expect, resp.StatusCode) {
			return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
		}
		return nil
	}
}
