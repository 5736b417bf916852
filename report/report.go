// Package report 把结果记录按 CSV 逐条写到输出端。
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"DomainAI/domain"
)

// Writer 按解析完成的顺序写出记录，每条随写随刷，
// 进程在任意时刻被杀时丢失有界。
type Writer struct {
	w      *csv.Writer
	closer io.Closer
}

// Open 构造输出端：path 为空写标准输出。驱动层每轮都会重放完整的
// 记录集（续跑时包含检查点回放的记录），所以文件输出总是整文件重写，
// 续跑不会与上一轮的部分输出叠加。
func Open(path string) (*Writer, error) {
	if path == "" {
		w := &Writer{w: csv.NewWriter(os.Stdout)}
		return w, w.writeHeader()
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("打开输出文件失败: %w", err)
	}

	w := &Writer{w: csv.NewWriter(f), closer: f}
	if err := w.writeHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader() error {
	return w.write([]string{"word", "domain", "status", "reason"})
}

// Write 输出一条最终记录，四个字段原样写出。
func (w *Writer) Write(rec domain.Result) error {
	return w.write([]string{rec.Word, rec.Domain, string(rec.Status), rec.Reason})
}

func (w *Writer) write(row []string) error {
	if err := w.w.Write(row); err != nil {
		return fmt.Errorf("写输出失败: %w", err)
	}
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		return fmt.Errorf("写输出失败: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	w.w.Flush()
	if w.closer != nil {
		return w.closer.Close()
	}
	return w.w.Error()
}
