package app

import (
	"context"
	"errors"
	"log"

	"github.com/openrdap/rdap"

	"DomainAI/domain"
)

// ambiguousReasons 列出允许 RDAP 二次核对的 error 原因。
// taken 的兜底启发不在此列：它是文档化的既定行为，核对只补救
// 完全没拿到可判定响应的词。
var ambiguousReasons = map[string]bool{
	"throttle retries exhausted": true,
	"empty response":             true,
	"timeout":                    true,
	"ambiguous response":         true,
}

// RDAPChecker 用注册局 RDAP 服务对歧义错误记录做可选核对。
// 仅作标注，默认关闭，永不改写 available/taken 记录。
type RDAPChecker struct {
	client interface {
		QueryDomain(domain string) (*rdap.Domain, error)
	}
}

func NewRDAPChecker() *RDAPChecker {
	return &RDAPChecker{client: &rdap.Client{}}
}

func (c *RDAPChecker) Refine(ctx context.Context, rec domain.Result) domain.Result {
	if rec.Status != domain.StatusError || !ambiguousReasons[rec.Reason] {
		return rec
	}
	if ctx.Err() != nil {
		return rec
	}

	obj, err := c.client.QueryDomain(rec.Domain)
	if err != nil {
		if isObjectDoesNotExist(err) {
			rec.Status = domain.StatusAvailable
			rec.Reason = "rdap: object does not exist"
			return rec
		}
		log.Printf("RDAP 核对失败 (%s): %v", rec.Domain, err)
		return rec
	}
	if obj != nil {
		rec.Status = domain.StatusTaken
		rec.Reason = "rdap: domain object found"
	}
	return rec
}

func isObjectDoesNotExist(err error) bool {
	var pe *rdap.ClientError
	if errors.As(err, &pe) {
		return pe.Type == rdap.ObjectDoesNotExist
	}
	var ve rdap.ClientError
	if errors.As(err, &ve) {
		return ve.Type == rdap.ObjectDoesNotExist
	}
	return false
}
