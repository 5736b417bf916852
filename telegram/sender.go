package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender 抽象出 Telegram 发送能力，便于替换和测试。
type Sender interface {
	Send(ctx context.Context, msg string) error
}

type NoopSender struct{}

func (NoopSender) Send(ctx context.Context, msg string) error { return nil }

// BotSender 实现了带简单重试和节流的 Telegram 发送能力。
type BotSender struct {
	bot        *tgbotapi.BotAPI
	chatID     int64
	retryTimes int
	rate       *time.Ticker
	timeout    time.Duration
}

func NewBotSender(token string, chatID int64, retryTimes int, rateInterval time.Duration, timeout time.Duration) (*BotSender, error) {
	if token == "" {
		return nil, errors.New("telegram token is empty")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &BotSender{
		bot:        bot,
		chatID:     chatID,
		retryTimes: retryTimes,
		rate:       time.NewTicker(rateInterval),
		timeout:    timeout,
	}, nil
}

func (s *BotSender) Send(ctx context.Context, msg string) error {
	message := tgbotapi.NewMessage(s.chatID, msg)
	for attempt := 0; attempt <= s.retryTimes; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.rate.C:
			result := make(chan error, 1)
			sendCtx := ctx
			cancel := func() {}
			if s.timeout > 0 {
				sendCtx, cancel = context.WithTimeout(ctx, s.timeout)
			}

			go func() {
				_, err := s.bot.Send(message)
				result <- err
			}()

			select {
			case <-sendCtx.Done():
				cancel()
				if attempt == s.retryTimes {
					return fmt.Errorf("发送 Telegram 超时: %w", sendCtx.Err())
				}
				continue
			case err := <-result:
				cancel()
				if err == nil {
					return nil
				}
				if attempt == s.retryTimes {
					return fmt.Errorf("发送 Telegram 失败: %w", err)
				}
				time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			}
		}
	}
	return nil
}
