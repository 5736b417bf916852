package app

import (
	"context"
	"log"
	"strings"
	"time"

	"DomainAI/domain"
)

// ResolverService 是唯一看得到 Throttled 状态的组件：它把一个候选词
// 解析为最终记录，吸收限流与瞬时错误，向调用方只暴露
// available / taken / error 三种结果。
type ResolverService struct {
	Transport  Transport
	Classifier Classifier
	Backoff    *BackoffState
	TLD        string

	// ThrottleRetries 是被限流时允许的总查询次数，用尽后定格为 error。
	ThrottleRetries int
	// Retries 是非限流错误额外重试的次数，间隔固定为 RetrySleep。
	Retries    int
	RetrySleep time.Duration
	Debug      bool

	// lastQuery 是全局节奏的基准：距上一次对任何词发出查询的时刻。
	lastQuery time.Time

	// 测试注入点，缺省用真实时钟。
	nowFn   func() time.Time
	sleepFn func(ctx context.Context, d time.Duration) error
}

// Resolve 解析单个候选词，永不返回中间态 Throttled。
func (s *ResolverService) Resolve(ctx context.Context, word string) domain.Result {
	label := strings.ToLower(strings.TrimSpace(word))
	name := domain.DomainFor(word, s.TLD)
	rec := domain.Result{Word: word, Domain: name}

	if ok, reason := domain.ValidateLabel(label); !ok {
		rec.Status = domain.StatusError
		rec.Reason = reason
		return rec
	}

	throttles := 0
	errs := 0
	// wait < 0 表示按常规全局节奏等待；>= 0 表示限流/重试的显式等待，
	// 它替代本次的常规节奏，避免双重休眠。
	wait := time.Duration(-1)
	for {
		var err error
		if wait >= 0 {
			err = s.sleep(ctx, wait)
		} else {
			err = s.pace(ctx)
		}
		if err != nil {
			rec.Status = domain.StatusError
			rec.Reason = err.Error()
			return rec
		}

		resp := s.Transport.Fetch(ctx, name)
		s.lastQuery = s.now()
		status, reason := s.Classifier.Classify(resp)
		if ctx.Err() != nil {
			rec.Status = domain.StatusError
			rec.Reason = ctx.Err().Error()
			return rec
		}

		switch status {
		case domain.StatusAvailable, domain.StatusTaken:
			s.Backoff.Settle()
			rec.Status = status
			rec.Reason = reason
			return rec

		case domain.StatusThrottled:
			throttles++
			if throttles >= s.maxThrottleAttempts() {
				rec.Status = domain.StatusError
				rec.Reason = "throttle retries exhausted"
				return rec
			}
			wait = s.Backoff.Next()
			if s.Debug {
				log.Printf("[debug] %s 被限流 (%s)，退避 %v 后重试", name, reason, wait)
			}

		default:
			if s.Debug {
				if head := responseHead(resp.Text, 8); head != "" {
					log.Printf("[debug] %s 响应开头:\n%s", name, head)
				}
			}
			if errs >= s.Retries {
				s.Backoff.Settle()
				rec.Status = domain.StatusError
				rec.Reason = reason
				return rec
			}
			errs++
			wait = s.RetrySleep
			if s.Debug {
				log.Printf("[debug] %s 第 %d 次查询失败: %s", name, errs, reason)
			}
		}
	}
}

// responseHead 截取响应正文开头若干行，供诊断输出。
func responseHead(text string, lines int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	parts := strings.Split(text, "\n")
	if len(parts) > lines {
		parts = parts[:lines]
	}
	return strings.Join(parts, "\n")
}

// pace 执行全局节奏：距上一次查询不足当前退避间隔时补足差额。
// 首次查询不等待。
func (s *ResolverService) pace(ctx context.Context) error {
	if s.lastQuery.IsZero() {
		return nil
	}
	wait := s.Backoff.Delay() - s.now().Sub(s.lastQuery)
	if wait <= 0 {
		return nil
	}
	return s.sleep(ctx, wait)
}

func (s *ResolverService) maxThrottleAttempts() int {
	if s.ThrottleRetries < 1 {
		return 1
	}
	return s.ThrottleRetries
}

func (s *ResolverService) now() time.Time {
	if s.nowFn != nil {
		return s.nowFn()
	}
	return time.Now()
}

func (s *ResolverService) sleep(ctx context.Context, d time.Duration) error {
	if s.sleepFn != nil {
		return s.sleepFn(ctx, d)
	}
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
