package telegram_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"DomainAI/telegram"
)

// NoopSender 是未配置 Telegram 时的缺省通知端：什么都不发、永不失败。
func TestNoopSender(t *testing.T) {
	var s telegram.Sender = telegram.NoopSender{}
	assert.NoError(t, s.Send(context.Background(), "summary"))

	// 已取消的上下文也不报错：空实现没有可中断的工作。
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.Send(ctx, "summary"))
}

func TestNewBotSenderRequiresToken(t *testing.T) {
	_, err := telegram.NewBotSender("", 1, 2, time.Second, time.Second)
	assert.Error(t, err)
}
