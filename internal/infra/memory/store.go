package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"agritrace/internal/domain/model"
	repo "agritrace/internal/repository"
)

// 台帳の全状態。書き込みはundoに戻し方を積み、失敗したら逆順に戻す
type state struct {
	products     map[int64]model.Product
	codes        map[string]int64
	retailers    map[int64]model.RetailerInfo
	distributors map[int64]model.DistributorInfo
	histories    []model.AnnotationHistory
	ledgerTxs    []model.LedgerTx
	txHashes     map[string]struct{}
	accounts     map[string]model.Account
	emails       map[string]string

	undo []func()
}

func newState() *state {
	return &state{
		products:     map[int64]model.Product{},
		codes:        map[string]int64{},
		retailers:    map[int64]model.RetailerInfo{},
		distributors: map[int64]model.DistributorInfo{},
		txHashes:     map[string]struct{}{},
		accounts:     map[string]model.Account{},
		emails:       map[string]string{},
	}
}

func (s *state) onUndo(fn func()) {
	s.undo = append(s.undo, fn)
}

func (s *state) rollback() {
	for i := len(s.undo) - 1; i >= 0; i-- {
		s.undo[i]()
	}
	s.undo = nil
}

func (s *state) commit() {
	s.undo = nil
}

// accessはstateに触る窓口。Store経由ならロックし、tx内ならそのまま触る
type access func(write bool, fn func(st *state) error) error

// Storeはプロセス内の台帳。STORE_DRIVER=memory とテストで使う
type Store struct {
	mu sync.RWMutex
	st *state
}

func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) access(write bool, fn func(st *state) error) error {
	if write {
		s.mu.Lock()
		defer s.mu.Unlock()
		// 単発の書き込みも失敗したら元に戻す
		if err := fn(s.st); err != nil {
			s.st.rollback()
			return err
		}
		s.st.commit()
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

// WithinTxは書き込みロックを持ったままfnを実行し、失敗したらundoで戻す。
// 他の読み書きはコミットかロールバックが終わるまで待つ
func (s *Store) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	direct := func(_ bool, fn func(st *state) error) error { return fn(s.st) }
	if err := fn(newRepos(direct)); err != nil {
		s.st.rollback()
		return err
	}
	s.st.commit()
	return nil
}

// Reposはtxの外で読むためのリポジトリ一式
func (s *Store) Repos() repo.TxRepos {
	return newRepos(s.access)
}

func (s *Store) Accounts() repo.AccountRepository {
	return &accountRepo{run: s.access}
}

type repos struct {
	run access
}

func newRepos(run access) *repos {
	return &repos{run: run}
}

func (r *repos) Products() repo.ProductRepository             { return &productRepo{run: r.run} }
func (r *repos) RetailerInfos() repo.RetailerInfoRepository   { return &retailerRepo{run: r.run} }
func (r *repos) DistributorInfos() repo.DistributorInfoRepository {
	return &distributorRepo{run: r.run}
}
func (r *repos) AnnotationHistories() repo.AnnotationHistoryRepository {
	return &historyRepo{run: r.run}
}
func (r *repos) LedgerTxs() repo.LedgerTxRepository { return &ledgerTxRepo{run: r.run} }

// ---------------------------------------------------------------------

type productRepo struct{ run access }

func (r *productRepo) NextID(ctx context.Context) (int64, error) {
	var next int64
	err := r.run(false, func(st *state) error {
		next = int64(len(st.products))
		return nil
	})
	return next, err
}

func (r *productRepo) Create(ctx context.Context, p model.Product) error {
	return r.run(true, func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return repo.ErrConflict
		}
		if _, ok := st.codes[p.VerificationCode]; ok {
			return repo.ErrConflict
		}
		st.products[p.ID] = p
		st.codes[p.VerificationCode] = p.ID
		return nil
	})
}

func (r *productRepo) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.run(false, func(st *state) error {
		found, ok := st.products[id]
		if !ok {
			return repo.ErrNotFound
		}
		p = found
		return nil
	})
	return p, err
}

func (r *productRepo) FindByVerificationCode(ctx context.Context, code string) (model.Product, error) {
	var p model.Product
	err := r.run(false, func(st *state) error {
		id, ok := st.codes[code]
		if !ok {
			return repo.ErrNotFound
		}
		p = st.products[id]
		return nil
	})
	return p, err
}

func (r *productRepo) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var matched []model.Product
	err := r.run(false, func(st *state) error {
		for _, p := range st.products {
			if q.Farmer != "" && p.Farmer != q.Farmer {
				continue
			}
			if q.Category != "" && p.Category != q.Category {
				continue
			}
			matched = append(matched, p)
		}
		return nil
	})
	if err != nil {
		return []model.Product{}, 0, err
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	offset := (q.Page - 1) * q.Limit
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return []model.Product{}, total, nil
	}
	end := offset + q.Limit
	if q.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *productRepo) Touch(ctx context.Context, id int64, updatedAt time.Time) error {
	return r.run(true, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return repo.ErrNotFound
		}
		p.UpdatedAt = updatedAt
		st.products[id] = p
		return nil
	})
}

// ---------------------------------------------------------------------

type retailerRepo struct{ run access }

func (r *retailerRepo) Put(ctx context.Context, info model.RetailerInfo) error {
	return r.run(true, func(st *state) error {
		st.retailers[info.ProductID] = info
		return nil
	})
}

func (r *retailerRepo) FindByProductID(ctx context.Context, productID int64) (model.RetailerInfo, error) {
	var info model.RetailerInfo
	err := r.run(false, func(st *state) error {
		found, ok := st.retailers[productID]
		if !ok {
			return repo.ErrNotFound
		}
		info = found
		return nil
	})
	return info, err
}

type distributorRepo struct{ run access }

func (r *distributorRepo) Put(ctx context.Context, info model.DistributorInfo) error {
	return r.run(true, func(st *state) error {
		st.distributors[info.ProductID] = info
		return nil
	})
}

func (r *distributorRepo) FindByProductID(ctx context.Context, productID int64) (model.DistributorInfo, error) {
	var info model.DistributorInfo
	err := r.run(false, func(st *state) error {
		found, ok := st.distributors[productID]
		if !ok {
			return repo.ErrNotFound
		}
		info = found
		return nil
	})
	return info, err
}

// ---------------------------------------------------------------------

type historyRepo struct{ run access }

func (r *historyRepo) Create(ctx context.Context, h model.AnnotationHistory) error {
	return r.run(true, func(st *state) error {
		h.ID = int64(len(st.histories)) + 1
		st.histories = append(st.histories, h)
		return nil
	})
}

func (r *historyRepo) ListByProduct(ctx context.Context, productID int64, role model.AnnotationRole) ([]model.AnnotationHistory, error) {
	var out []model.AnnotationHistory
	err := r.run(false, func(st *state) error {
		for _, h := range st.histories {
			if h.ProductID == productID && h.Role == role {
				out = append(out, h)
			}
		}
		return nil
	})
	return out, err
}

// ---------------------------------------------------------------------

type ledgerTxRepo struct{ run access }

func (r *ledgerTxRepo) Append(ctx context.Context, tx model.LedgerTx) error {
	return r.run(true, func(st *state) error {
		for _, existing := range st.ledgerTxs {
			if existing.Seq == tx.Seq || existing.TxHash == tx.TxHash {
				return repo.ErrConflict
			}
		}
		st.ledgerTxs = append(st.ledgerTxs, tx)
		return nil
	})
}

func (r *ledgerTxRepo) Last(ctx context.Context) (model.LedgerTx, bool, error) {
	var (
		last model.LedgerTx
		ok   bool
	)
	err := r.run(false, func(st *state) error {
		if n := len(st.ledgerTxs); n > 0 {
			last, ok = st.ledgerTxs[n-1], true
		}
		return nil
	})
	return last, ok, err
}

func (r *ledgerTxRepo) List(ctx context.Context, productID *int64) ([]model.LedgerTx, error) {
	var out []model.LedgerTx
	err := r.run(false, func(st *state) error {
		for _, tx := range st.ledgerTxs {
			if productID != nil && tx.ProductID != *productID {
				continue
			}
			out = append(out, tx)
		}
		return nil
	})
	return out, err
}

// ---------------------------------------------------------------------

type accountRepo struct{ run access }

func (r *accountRepo) Create(ctx context.Context, a *model.Account) error {
	return r.run(true, func(st *state) error {
		if _, ok := st.accounts[a.ID]; ok {
			return repo.ErrConflict
		}
		for _, existing := range st.accounts {
			if existing.Email == a.Email {
				return repo.ErrConflict
			}
		}
		st.accounts[a.ID] = *a
		return nil
	})
}

func (r *accountRepo) FindByID(ctx context.Context, id string) (*model.Account, error) {
	var out *model.Account
	err := r.run(false, func(st *state) error {
		a, ok := st.accounts[id]
		if !ok {
			return repo.ErrAccountNotFound
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *accountRepo) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	var out *model.Account
	err := r.run(false, func(st *state) error {
		id, ok := st.emails[email]
		if !ok {
			return repo.ErrAccountNotFound
		}
		a := st.accounts[id]
		out = &a
		return nil
	})
	return out, err
}
