// Package checkpoint 提供 word → Result 的持久映射，支撑长任务的断点续跑。
package checkpoint

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"DomainAI/domain"
)

// Store 是检查点的统一接口。Put 返回即表示记录已持久；
// 同一个词的记录一经写入不再覆盖。
type Store interface {
	Has(word string) bool
	Get(word string) (domain.Result, bool)
	Put(word string, rec domain.Result) error
	Flush() error
	Close() error
}

// FileStore 把记录逐行追加到一个可直接 tail 的 CSV 文件：
// word,domain,status,reason。每次 Put 先写后 fsync，进程在任意时刻
// 被杀最多丢失进行中的那一个词。
type FileStore struct {
	path    string
	file    *os.File
	records map[string]domain.Result
}

// Open 打开检查点文件。resume 为真时载入既有记录并继续追加；
// 为假时清空重来。文件不存在视为没有历史进度。
func Open(path, runID string, resume bool) (*FileStore, error) {
	records := make(map[string]domain.Result)
	if resume {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("读取检查点失败: %w", err)
		}
		if err == nil {
			loadRecords(data, records)
		}
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if !resume {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("打开检查点失败: %w", err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if st.Size() == 0 {
		if _, err := fmt.Fprintf(f, "# domainai checkpoint run=%s\n", runID); err != nil {
			f.Close()
			return nil, fmt.Errorf("写入检查点头失败: %w", err)
		}
	}
	return &FileStore{path: path, file: f, records: records}, nil
}

// loadRecords 解析既有检查点内容，坏行跳过，同一个词先写入者生效。
func loadRecords(data []byte, records map[string]domain.Result) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comment = '#'
	r.FieldsPerRecord = -1
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// 行级解析错误：跳过坏行，继续读后面的记录。
			continue
		}
		if len(row) != 4 {
			continue
		}
		rec := domain.Result{
			Word:   row[0],
			Domain: row[1],
			Status: domain.Status(row[2]),
			Reason: row[3],
		}
		if !rec.Status.Final() {
			continue
		}
		if _, ok := records[rec.Word]; !ok {
			records[rec.Word] = rec
		}
	}
}

func (s *FileStore) Has(word string) bool {
	_, ok := s.records[word]
	return ok
}

func (s *FileStore) Get(word string) (domain.Result, bool) {
	rec, ok := s.records[word]
	return rec, ok
}

// Put 追加并落盘一条记录。已有记录的词为幂等空操作；
// 中间态（throttled）拒绝写入。
func (s *FileStore) Put(word string, rec domain.Result) error {
	if !rec.Status.Final() {
		return fmt.Errorf("中间状态不允许写入检查点: %s", rec.Status)
	}
	if _, ok := s.records[word]; ok {
		return nil
	}
	w := csv.NewWriter(s.file)
	if err := w.Write([]string{rec.Word, rec.Domain, string(rec.Status), rec.Reason}); err != nil {
		return fmt.Errorf("写入检查点失败: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("写入检查点失败: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("检查点落盘失败: %w", err)
	}
	s.records[word] = rec
	return nil
}

func (s *FileStore) Flush() error { return s.file.Sync() }

func (s *FileStore) Close() error { return s.file.Close() }
