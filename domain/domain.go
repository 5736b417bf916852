package domain

import "strings"

// Status 表示一次域名查询的分类结果。
type Status string

const (
	StatusAvailable Status = "available"
	StatusTaken     Status = "taken"
	// StatusThrottled 仅在重试控制器内部流转，不允许出现在最终记录中。
	StatusThrottled Status = "throttled"
	StatusError     Status = "error"
)

// Final 报告该状态是否允许作为最终记录落盘。
func (s Status) Final() bool {
	switch s {
	case StatusAvailable, StatusTaken, StatusError:
		return true
	}
	return false
}

// Result 是单个候选词的最终查询记录，也是检查点与输出的基本单元。
// 一旦为某个词写入，本轮及后续续跑均视其为权威结果。
type Result struct {
	Word   string
	Domain string
	Status Status
	Reason string
}

// DomainFor 由候选词构造完整域名：去空白、转小写、追加 TLD 后缀。
func DomainFor(word, tld string) string {
	label := strings.ToLower(strings.TrimSpace(word))
	return label + "." + tld
}

// ValidateLabel 校验域名标签是否合法，返回不合法时的原因。
// 标签应当已经是小写形式。
func ValidateLabel(label string) (bool, string) {
	if label == "" {
		return false, "empty label"
	}
	if len(label) > 63 {
		return false, "label too long"
	}
	if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
		return false, "label starts or ends with '-'"
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-' {
			continue
		}
		return false, "invalid characters"
	}
	return true, ""
}
