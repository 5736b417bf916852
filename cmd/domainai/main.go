package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"DomainAI/checkpoint"
	"DomainAI/config"
	"DomainAI/internal/app"
	"DomainAI/report"
	"DomainAI/telegram"
	"DomainAI/wordlist"
)

func main() {
	root := &cobra.Command{
		Use:           "domainai",
		Short:         "批量检查 .ai 域名是否已注册",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCheckCmd())

	if err := root.Execute(); err != nil {
		log.Printf("运行失败: %v", err)
		os.Exit(1)
	}
}

func newCheckCmd() *cobra.Command {
	var (
		cfgPath  string
		column   string
		noHeader bool
	)
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:   "check <csv>",
		Short: "对 CSV 词表逐个查询 WHOIS 并输出结果",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgPath != "" {
				loaded, err := config.Load(cfgPath)
				if err != nil {
					return err
				}
				// 命令行显式传入的值覆盖配置文件。
				overlayFlags(cmd, &loaded, cfg)
				cfg = loaded
			}
			return runCheck(cmd.Context(), cfg, args[0], column, noHeader)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgPath, "config", "", "yaml 配置文件路径")
	f.StringVar(&column, "column", "", "CSV 列名或 0 起始列号（默认第一列）")
	f.BoolVar(&noHeader, "no-header", false, "首行按数据处理，即使看起来像表头")
	f.StringVar(&cfg.Server, "server", cfg.Server, "WHOIS 服务主机")
	f.IntVar(&cfg.Port, "port", cfg.Port, "WHOIS 服务端口")
	f.StringVar(&cfg.TLD, "tld", cfg.TLD, "追加到候选词后的 TLD")
	f.StringVar(&cfg.Mode, "mode", cfg.Mode, "查询通道: auto、socket 或 netcat")
	f.Float64Var(&cfg.TimeoutSec, "timeout", cfg.TimeoutSec, "单次查询超时（秒）")
	f.Float64Var(&cfg.SleepSec, "sleep", cfg.SleepSec, "两次查询之间的基准间隔（秒）")
	f.Float64Var(&cfg.MaxSleepSec, "max-sleep", cfg.MaxSleepSec, "被限流时退避间隔的上限（秒）")
	f.Float64Var(&cfg.BackoffFactor, "backoff-factor", cfg.BackoffFactor, "被限流时的退避倍率")
	f.IntVar(&cfg.ThrottleRetries, "throttle-retries", cfg.ThrottleRetries, "单个词被限流时允许的总查询次数")
	f.IntVar(&cfg.ThrottleResetAfter, "throttle-reset-after", cfg.ThrottleResetAfter, "连续多少个未限流的词后间隔回落")
	f.IntVar(&cfg.Retries, "retries", cfg.Retries, "非限流错误的额外重试次数")
	f.Float64Var(&cfg.RetrySleepSec, "retry-sleep", cfg.RetrySleepSec, "非限流错误重试间隔（秒）")
	f.StringVar(&cfg.Output, "output", cfg.Output, "输出 CSV 文件（缺省写标准输出）")
	f.StringVar(&cfg.Checkpoint, "checkpoint", cfg.Checkpoint, "检查点文件路径（空串关闭落盘）")
	f.BoolVar(&cfg.Resume, "resume", cfg.Resume, "载入检查点，跳过已解析的词")
	f.BoolVar(&cfg.Debug, "debug", cfg.Debug, "输出每次查询的诊断信息")
	f.BoolVar(&cfg.RDAPFallback, "rdap", cfg.RDAPFallback, "对歧义错误记录做 RDAP 二次核对")
	return cmd
}

// overlayFlags 把命令行上显式传入的值盖到配置文件结果之上。
// flagCfg 里保存的是解析后的命令行值。
func overlayFlags(cmd *cobra.Command, dst *config.Config, flagCfg config.Config) {
	f := cmd.Flags()
	set := map[string]func(){
		"server":               func() { dst.Server = flagCfg.Server },
		"port":                 func() { dst.Port = flagCfg.Port },
		"tld":                  func() { dst.TLD = flagCfg.TLD },
		"mode":                 func() { dst.Mode = flagCfg.Mode },
		"timeout":              func() { dst.TimeoutSec = flagCfg.TimeoutSec },
		"sleep":                func() { dst.SleepSec = flagCfg.SleepSec },
		"max-sleep":            func() { dst.MaxSleepSec = flagCfg.MaxSleepSec },
		"backoff-factor":       func() { dst.BackoffFactor = flagCfg.BackoffFactor },
		"throttle-retries":     func() { dst.ThrottleRetries = flagCfg.ThrottleRetries },
		"throttle-reset-after": func() { dst.ThrottleResetAfter = flagCfg.ThrottleResetAfter },
		"retries":              func() { dst.Retries = flagCfg.Retries },
		"retry-sleep":          func() { dst.RetrySleepSec = flagCfg.RetrySleepSec },
		"output":               func() { dst.Output = flagCfg.Output },
		"checkpoint":           func() { dst.Checkpoint = flagCfg.Checkpoint },
		"resume":               func() { dst.Resume = flagCfg.Resume },
		"debug":                func() { dst.Debug = flagCfg.Debug },
		"rdap":                 func() { dst.RDAPFallback = flagCfg.RDAPFallback },
	}
	for name, apply := range set {
		if f.Changed(name) {
			apply()
		}
	}
}

func runCheck(parent context.Context, cfg config.Config, csvPath, column string, noHeader bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()

	transport, err := buildTransport(cfg)
	if err != nil {
		return err
	}

	store, err := buildStore(cfg, runID)
	if err != nil {
		return err
	}
	defer store.Close()

	sink, err := report.Open(cfg.Output)
	if err != nil {
		return err
	}
	defer sink.Close()

	a := &app.App{
		Source: wordlist.CSVSource{Path: csvPath, Column: column, NoHeader: noHeader},
		Resolver: &app.ResolverService{
			Transport:       transport,
			Classifier:      app.NewClassifier(),
			Backoff:         app.NewBackoffState(cfg.Sleep(), cfg.MaxSleep(), cfg.BackoffFactor, cfg.ThrottleResetAfter),
			TLD:             cfg.TLD,
			ThrottleRetries: cfg.ThrottleRetries,
			Retries:         cfg.Retries,
			RetrySleep:      cfg.RetrySleep(),
			Debug:           cfg.Debug,
		},
		Store: store,
		Sink:  sink,
		RunID: runID,
		Debug: cfg.Debug,
	}
	if cfg.RDAPFallback {
		a.Refiner = app.NewRDAPChecker()
	}
	if cfg.Telegram.BotToken != "" {
		sender, err := telegram.NewBotSender(cfg.Telegram.BotToken, cfg.Telegram.ChatID, 2, time.Second, 10*time.Second)
		if err != nil {
			return fmt.Errorf("初始化 Telegram 失败: %w", err)
		}
		a.Notifier = sender
	}

	if cfg.Debug {
		log.Printf("[debug] run=%s server=%s mode=%s resume=%v", runID, cfg.ServerAddr(), cfg.Mode, cfg.Resume)
	}
	return a.Run(ctx)
}

func buildTransport(cfg config.Config) (app.Transport, error) {
	socket := app.WhoisTransport{Server: cfg.ServerAddr(), Timeout: cfg.Timeout()}
	netcat := app.NetcatTransport{Host: cfg.Server, Port: cfg.Port, Timeout: cfg.Timeout()}
	switch cfg.Mode {
	case "socket":
		return socket, nil
	case "netcat":
		return netcat, nil
	case "", "auto":
		return app.AutoTransport{Socket: socket, Netcat: netcat}, nil
	}
	return nil, fmt.Errorf("未知的查询通道: %q", cfg.Mode)
}

func buildStore(cfg config.Config, runID string) (checkpoint.Store, error) {
	if cfg.Checkpoint == "" {
		return checkpoint.NewMemoryStore(), nil
	}
	return checkpoint.Open(cfg.Checkpoint, runID, cfg.Resume)
}
