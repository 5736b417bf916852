package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/likexian/whois"
)

// RawResponse 是一次 WHOIS 交换的原始结果：正文或失败原因，二者取其一。
// 传输层的失败一律以值的形式携带，不作为 Go error 上抛。
type RawResponse struct {
	Text string
	Err  string
}

// Failed 报告本次交换是否在传输层失败。
func (r RawResponse) Failed() bool { return r.Err != "" }

// Transport 抽象 WHOIS 查询的底层通道。
// 这里只做一次字节级交换，不包含重试与分类。
type Transport interface {
	Fetch(ctx context.Context, domain string) RawResponse
}

// WhoisTransport 通过原生 socket 与 WHOIS 服务交换。
type WhoisTransport struct {
	// Server 为 host:port 形式的服务地址。
	Server  string
	Timeout time.Duration
}

func (t WhoisTransport) Fetch(ctx context.Context, domain string) RawResponse {
	ch := make(chan RawResponse, 1)
	go func() {
		client := whois.NewClient()
		if t.Timeout > 0 {
			client.SetTimeout(t.Timeout)
		}
		text, err := client.Whois(domain, t.Server)
		if err != nil {
			ch <- RawResponse{Err: failureReason(err)}
			return
		}
		if strings.TrimSpace(text) == "" {
			ch <- RawResponse{Err: "empty response"}
			return
		}
		ch <- RawResponse{Text: text}
	}()

	select {
	case <-ctx.Done():
		return RawResponse{Err: failureReason(ctx.Err())}
	case res := <-ch:
		return res
	}
}

// NetcatTransport 通过外部 nc 进程完成交换。
// 某些部署环境对非特权进程禁用 43 端口的直连，但允许调用外部工具。
type NetcatTransport struct {
	Host    string
	Port    int
	Timeout time.Duration
}

func (t NetcatTransport) Fetch(ctx context.Context, domain string) RawResponse {
	wait := int(math.Round(t.Timeout.Seconds()))
	if wait < 1 {
		wait = 1
	}
	runCtx, cancel := context.WithTimeout(ctx, t.Timeout+2*time.Second)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "nc", "-w", strconv.Itoa(wait), t.Host, strconv.Itoa(t.Port))
	cmd.Stdin = strings.NewReader(domain + "\r\n")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	errText := strings.TrimSpace(stderr.String())
	outText := strings.TrimSpace(stdout.String())

	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return RawResponse{Err: "nc not found"}
		}
		if runCtx.Err() != nil {
			return RawResponse{Err: "timeout"}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			reason := errText
			if reason == "" {
				reason = outText
			}
			if reason == "" {
				reason = fmt.Sprintf("nc exit %d", exitErr.ExitCode())
			}
			return RawResponse{Err: reason}
		}
		return RawResponse{Err: err.Error()}
	}
	if outText == "" {
		if errText != "" {
			return RawResponse{Err: errText}
		}
		return RawResponse{Err: "empty response"}
	}
	return RawResponse{Text: stdout.String()}
}

// AutoTransport 先走 socket，拿不到可用正文时退回 nc。
// 两条通道语义等价，只是网络路径不同。
type AutoTransport struct {
	Socket Transport
	Netcat Transport
}

func (t AutoTransport) Fetch(ctx context.Context, domain string) RawResponse {
	res := t.Socket.Fetch(ctx, domain)
	if !res.Failed() {
		return res
	}
	return t.Netcat.Fetch(ctx, domain)
}

// failureReason 把底层错误折叠为传输失败原因，超时统一标记为 "timeout"。
func failureReason(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return "timeout"
	}
	return err.Error()
}
