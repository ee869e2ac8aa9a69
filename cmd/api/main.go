package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agritrace/internal/config"
	"agritrace/internal/infra/db"
	"agritrace/internal/infra/memory"
	infraRepo "agritrace/internal/infra/repository"
	"agritrace/internal/jobs"
	"agritrace/internal/logger"
	"agritrace/internal/repository"
	"agritrace/internal/server"
	"agritrace/internal/usecase"
	auth "agritrace/internal/usecase/auth_usecase"
	"agritrace/internal/validator"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// 保存先ごとのリポジトリ一式
type stores struct {
	txm      repository.TransactionManager
	reads    repository.TxRepos
	accounts repository.AccountRepository
	close    func()
}

func openStores(cfg config.Config, log *zap.Logger) (stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Warn("using in-memory store; data is lost on restart")
		s := memory.NewStore()
		return stores{txm: s, reads: s.Repos(), accounts: s.Accounts(), close: func() {}}, nil
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return stores{}, err
	}
	if err := db.Migrate(gormDB); err != nil {
		return stores{}, err
	}

	closeFn := func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	//Repository（GORM実装）生成
	return stores{
		txm:      infraRepo.NewTxManagerGorm(gormDB),
		reads:    infraRepo.NewReposGorm(gormDB),
		accounts: infraRepo.NewAccountGormRepository(gormDB),
		close:    closeFn,
	}, nil
}

func main() {
	// .envは無くてもよい（環境変数で渡せる）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.Setup(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	st, err := openStores(cfg, log)
	if err != nil {
		log.Fatal("open store failed", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer st.close()

	clock := usecase.SystemClock{}

	//JWT issuer
	issuer, err := auth.NewJWTIssuer(cfg.JWTSecret, 15*time.Minute)
	if err != nil {
		log.Fatal("jwt issuer", zap.Error(err))
	}

	//Usecase生成
	ledgerUC := usecase.NewLedgerUsecase(
		st.txm,
		st.reads,
		validator.NewLedgerValidator(),
		clock,
		cfg.AccessMode == config.AccessModeStrict,
		log.Named("ledger"),
	)
	registerUC := auth.NewRegisterUsecase(st.accounts, auth.NewBcryptPasswordHasher(12), auth.UUIDGenerator{}, clock)
	loginUC := auth.NewLoginUsecase(st.accounts, auth.NewBcryptPasswordVerifier(), issuer, clock)

	//定期ジョブ
	sched, err := jobs.New(cfg.ChainVerifySpec, ledgerUC, log.Named("jobs"))
	if err != nil {
		log.Fatal("init jobs failed", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	e := server.New(cfg, server.Deps{
		Ledger:   ledgerUC,
		Register: registerUC,
		Login:    loginUC,
		Accounts: st.accounts,
		Log:      log.Named("http"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("agritrace starting",
		zap.String("store", cfg.StoreDriver),
		zap.String("access_mode", cfg.AccessMode),
	)

	//Server起動
	if err := server.Run(ctx, e, cfg.ListenAddr(), log); err != nil {
		log.Error("server stopped", zap.Error(err))
	}
}
