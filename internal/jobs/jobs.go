package jobs

import (
	"context"
	"os"
	"time"

	"agritrace/internal/metrics"
	"agritrace/internal/usecase"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"
)

// 台帳のハッシュ連鎖を検証できるもの
type ChainVerifier interface {
	VerifyChain(ctx context.Context) (usecase.ChainReport, error)
}

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type Scheduler struct {
	sched    *cron.Cron
	verifier ChainVerifier
	log      *zap.Logger
}

// specが空なら検証ジョブは登録しない
func New(spec string, verifier ChainVerifier, log *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		sched:    cron.New(cron.WithLocation(time.UTC), cron.WithParser(cronParser)),
		verifier: verifier,
		log:      log,
	}

	if spec != "" {
		if _, err := s.sched.AddFunc(spec, s.VerifyChainTask); err != nil {
			return nil, err
		}
	}

	if _, err := s.sched.AddFunc("@every 30s", s.SystemMonitorTask); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.sched.Start()
}

// 実行中のジョブが終わるまで待つ
func (s *Scheduler) Stop() {
	<-s.sched.Stop().Done()
}

// VerifyChainTask 連鎖を検証してログとゲージに残す
func (s *Scheduler) VerifyChainTask() {
	defer func() {
		if err := recover(); err != nil {
			s.log.Error("verify chain panic", zap.Any("panic", err))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	report, err := s.verifier.VerifyChain(ctx)
	if err != nil {
		s.log.Error("verify chain failed", zap.Error(err))
		return
	}

	metrics.RecordChainVerification(report.Valid)
	if !report.Valid {
		fields := []zap.Field{zap.Int("length", report.Length), zap.String("reason", report.Reason)}
		if report.BrokenAt != nil {
			fields = append(fields, zap.Int64("broken_at", *report.BrokenAt))
		}
		s.log.Error("ledger chain broken", fields...)
		return
	}
	s.log.Info("ledger chain verified", zap.Int("length", report.Length), zap.String("head", report.Head))
}

// SystemMonitorTask ホストとプロセスのメモリ使用量
func (s *Scheduler) SystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			s.log.Error("system monitor panic", zap.Any("panic", err))
		}
	}()

	vm, err := mem.VirtualMemory()
	if err != nil {
		s.log.Debug("read memory failed", zap.Error(err))
		return
	}

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}
	info, err := p.MemoryInfo()
	if err != nil {
		return
	}

	metrics.SetSystemUsage(vm.UsedPercent, info.RSS)
}
