package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"DomainAI/checkpoint"
	"DomainAI/domain"
	"DomainAI/telegram"
)

var ErrMissingDependencies = errors.New("missing dependencies")

// WordSource 提供有序的候选词序列。
type WordSource interface {
	Collect(ctx context.Context) ([]string, error)
}

// Resolver 把一个候选词解析为最终记录。
type Resolver interface {
	Resolve(ctx context.Context, word string) domain.Result
}

// Refiner 对最终记录做可选的二次标注，永不影响控制流。
type Refiner interface {
	Refine(ctx context.Context, rec domain.Result) domain.Result
}

// ResultSink 按解析完成的顺序接收每条记录。
type ResultSink interface {
	Write(rec domain.Result) error
}

// Notifier 在一轮结束后发送摘要，失败只记日志。
type Notifier interface {
	Send(ctx context.Context, msg string) error
}

// App 串起单线程的批处理主循环：候选词严格串行解析，
// 退避状态与检查点都只被这一条控制路径持有。
type App struct {
	Source   WordSource
	Resolver Resolver
	Store    checkpoint.Store
	Sink     ResultSink
	Refiner  Refiner  // 可为 nil
	Notifier Notifier // 为 nil 时退化为 telegram.NoopSender
	RunID    string
	Debug    bool
}

// Run 处理全部候选词。error 状态的记录是合法输出；
// 只有检查点/输出的 I/O 故障和外部取消会中止一轮。
func (a *App) Run(ctx context.Context) error {
	if a.Source == nil || a.Resolver == nil || a.Store == nil || a.Sink == nil {
		return ErrMissingDependencies
	}

	words, err := a.Source.Collect(ctx)
	if err != nil {
		return fmt.Errorf("读取候选词失败: %w", err)
	}

	var sum Summary
	for _, word := range words {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// 续跑命中或同一轮内重复词：不发查询，直接回放已有记录。
		if rec, ok := a.Store.Get(word); ok {
			if a.Debug {
				log.Printf("[debug] 跳过已有记录: %s (%s)", word, rec.Status)
			}
			if err := a.Sink.Write(rec); err != nil {
				return fmt.Errorf("写入结果失败: %w", err)
			}
			sum.add(rec, true)
			continue
		}

		rec := a.Resolver.Resolve(ctx, word)
		if ctx.Err() != nil {
			// 取消发生在解析途中：进行中的词不落盘，续跑时重算。
			return ctx.Err()
		}
		if a.Refiner != nil {
			rec = a.Refiner.Refine(ctx, rec)
		}
		if err := a.Store.Put(word, rec); err != nil {
			return fmt.Errorf("写入检查点失败: %w", err)
		}
		if err := a.Sink.Write(rec); err != nil {
			return fmt.Errorf("写入结果失败: %w", err)
		}
		sum.add(rec, false)
	}

	log.Printf("本轮完成 run=%s: %s", a.RunID, sum)
	notifier := a.Notifier
	if notifier == nil {
		notifier = telegram.NoopSender{}
	}
	if err := notifier.Send(ctx, sum.Message(a.RunID)); err != nil {
		log.Printf("发送通知失败: %v", err)
	}
	return nil
}

// Summary 统计一轮的各状态数量。
type Summary struct {
	Available int
	Taken     int
	Errors    int
	Replayed  int
	Total     int
}

func (s *Summary) add(rec domain.Result, replayed bool) {
	s.Total++
	if replayed {
		s.Replayed++
	}
	switch rec.Status {
	case domain.StatusAvailable:
		s.Available++
	case domain.StatusTaken:
		s.Taken++
	default:
		s.Errors++
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("共 %d 个（回放 %d），available %d / taken %d / error %d",
		s.Total, s.Replayed, s.Available, s.Taken, s.Errors)
}

// Message 生成通知用的摘要文本。
func (s Summary) Message(runID string) string {
	return fmt.Sprintf("【.ai 域名批量检查】\nrun: %s\n合计: %d（回放 %d）\navailable: %d\ntaken: %d\nerror: %d",
		runID, s.Total, s.Replayed, s.Available, s.Taken, s.Errors)
}
