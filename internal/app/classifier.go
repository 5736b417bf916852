package app

import (
	"strings"

	"DomainAI/domain"
)

// 标记集合取自 .ai 注册局 WHOIS 响应的实际样本，全部以大写保存，
// 匹配时统一转大写做不区分大小写的子串比较。
var (
	AvailableMarkers = []string{
		"NO OBJECT FOUND",
		"DOMAIN NOT FOUND",
		"NOT FOUND",
		"NO MATCH FOR",
		"NO DATA FOUND",
		"OBJECT DOES NOT EXIST",
	}
	ThrottleMarkers = []string{
		"WHOIS LIMIT EXCEEDED",
		"QUERY LIMIT EXCEEDED",
		"EXCESSIVE QUERIES",
		"TRY AGAIN LATER",
	}
	// ThrottleHints 用于判断传输层失败原因是否属于限流，
	// 覆盖服务端以错误形式表达的各种限速话术。
	ThrottleHints = []string{
		"TRY AGAIN",
		"LIMIT",
		"EXCESSIVE",
		"THROTTLE",
		"NC EXIT 1",
		"TERMS-ONLY RESPONSE",
	}
)

// Rule 是一条有序分类规则：Any 中任一标记命中且 None 中全部缺席时生效。
// Any 为空表示无条件命中，用作兜底规则。
type Rule struct {
	Any    []string
	None   []string
	Status domain.Status
	// Reason 为空时使用命中的标记文本。
	Reason string
}

func (r Rule) match(upper string) (string, bool) {
	for _, m := range r.None {
		if strings.Contains(upper, m) {
			return "", false
		}
	}
	if len(r.Any) == 0 {
		return r.Reason, true
	}
	for _, m := range r.Any {
		if strings.Contains(upper, m) {
			reason := r.Reason
			if reason == "" {
				reason = m
			}
			return reason, true
		}
	}
	return "", false
}

// DefaultRules 返回响应正文的有序规则表，先命中者生效。
// available 标记优先于限流标记：对抗性响应可能同时携带两者。
// 最后一条是兜底启发：没有 available 标记即视为已注册，
// 这是已知局限而非保证（见 DESIGN.md）。
func DefaultRules() []Rule {
	return []Rule{
		{Any: AvailableMarkers, Status: domain.StatusAvailable},
		{Any: ThrottleMarkers, Status: domain.StatusThrottled},
		{Any: []string{"TERMS OF USE"}, None: []string{"DOMAIN NAME"},
			Status: domain.StatusThrottled, Reason: "terms-only response"},
		{Status: domain.StatusTaken, Reason: "WHOIS record found"},
	}
}

// Classifier 将原始响应映射为状态与原因。纯函数，无 I/O，无可变状态。
type Classifier struct {
	Rules []Rule
	Hints []string
}

// NewClassifier 返回带默认规则表的分类器。
func NewClassifier() Classifier {
	return Classifier{Rules: DefaultRules(), Hints: ThrottleHints}
}

// Classify 对任意 RawResponse 恰好返回一个状态和非空原因。
// 判定顺序：传输失败（限流提示 / 一般错误）→ 空响应 → 规则表。
func (c Classifier) Classify(r RawResponse) (domain.Status, string) {
	if r.Failed() {
		if containsAny(strings.ToUpper(r.Err), c.Hints) {
			return domain.StatusThrottled, r.Err
		}
		return domain.StatusError, r.Err
	}
	if strings.TrimSpace(r.Text) == "" {
		return domain.StatusError, "empty response"
	}

	upper := strings.ToUpper(r.Text)
	for _, rule := range c.Rules {
		if reason, ok := rule.match(upper); ok {
			if reason == "" {
				reason = string(rule.Status)
			}
			return rule.Status, reason
		}
	}
	// 规则表不含兜底规则时仍保持全函数性质。
	return domain.StatusError, "ambiguous response"
}

func containsAny(upper string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(upper, m) {
			return true
		}
	}
	return false
}
