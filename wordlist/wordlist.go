// Package wordlist 从 CSV 文件读取候选词序列。
package wordlist

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// headerHints 是首行疑似表头时用来识别并跳过的列名。
var headerHints = map[string]bool{
	"word":    true,
	"words":   true,
	"name":    true,
	"domain":  true,
	"domains": true,
}

// CSVSource 按配置列读取候选词：Column 为空取第一列，
// 为十进制数字按 0 起始列号取，否则按表头列名取。
type CSVSource struct {
	Path     string
	Column   string
	NoHeader bool
}

// Collect 返回文件中的候选词，保持文件内顺序，空值跳过。
func (s CSVSource) Collect(ctx context.Context) ([]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("打开词表失败: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	if s.Column == "" {
		return s.readIndexed(ctx, r, 0, true)
	}
	if idx, err := strconv.Atoi(s.Column); err == nil && idx >= 0 {
		return s.readIndexed(ctx, r, idx, false)
	}
	return s.readNamed(ctx, r)
}

func (s CSVSource) readIndexed(ctx context.Context, r *csv.Reader, idx int, hintSkip bool) ([]string, error) {
	var words []string
	row := 0
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		record, err := r.Read()
		if err == io.EOF {
			return words, nil
		}
		if err != nil {
			return nil, fmt.Errorf("解析词表失败: %w", err)
		}
		row++
		if len(record) == 0 {
			continue
		}
		if idx >= len(record) {
			fmt.Fprintf(os.Stderr, "第 %d 行没有列号 %d\n", row, idx)
			continue
		}
		value := strings.TrimSpace(record[idx])
		if row == 1 && hintSkip && !s.NoHeader && headerHints[strings.ToLower(value)] {
			continue
		}
		if value != "" {
			words = append(words, value)
		}
	}
}

func (s CSVSource) readNamed(ctx context.Context, r *csv.Reader) ([]string, error) {
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("词表缺少表头: %w", err)
	}
	idx := -1
	for i, name := range header {
		if strings.TrimSpace(name) == s.Column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("找不到列 %q，可用列: %s", s.Column, strings.Join(header, ", "))
	}

	var words []string
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		record, err := r.Read()
		if err == io.EOF {
			return words, nil
		}
		if err != nil {
			return nil, fmt.Errorf("解析词表失败: %w", err)
		}
		if idx >= len(record) {
			continue
		}
		if value := strings.TrimSpace(record[idx]); value != "" {
			words = append(words, value)
		}
	}
}
