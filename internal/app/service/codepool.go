package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/aseptimu/codepool-shortener/internal/app/utils"
	"go.uber.org/zap"
)

// CodeStore - то, что пулу нужно от хранилища: счётчик и множество уже занятых кодов.
type CodeStore interface {
	GetSetting(ctx context.Context, name string) (int64, error)
	SetSetting(ctx context.Context, name string, value int64) error
	Codes(ctx context.Context) (map[string]struct{}, error)
}

// PoolConfig - параметры пула.
type PoolConfig struct {
	BatchSize     uint64
	LowWatermark  int
	HighWatermark int
	Cooldown      time.Duration
	CodeLength    int
}

// CodePool хранит в памяти коды, которые зарезервированы счётчиком, но ещё не выданы.
// Мьютекс покрывает и сам пул, и цикл "прочитать счётчик -> зарезервировать диапазон -> сохранить счётчик".
type CodePool struct {
	mu            sync.Mutex
	codes         []string
	lastReplenish time.Time

	store  CodeStore
	cfg    PoolConfig
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewCodePool создаёт пустой пул. Перед выдачей кодов нужно вызвать Prefill.
func NewCodePool(store CodeStore, cfg PoolConfig, logger *zap.SugaredLogger) *CodePool {
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = utils.DefaultCodeLength
	}
	return &CodePool{
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Allocate возвращает случайный код из пула и удаляет его оттуда.
// Если пул ниже нижней границы, сначала пытается его пополнить.
func (p *CodePool) Allocate(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.codes) == 0 || len(p.codes) < p.cfg.LowWatermark {
		if err := p.replenishLocked(ctx, len(p.codes) == 0); err != nil {
			if len(p.codes) == 0 {
				return "", fmt.Errorf("%w: %v", ErrPoolExhausted, err)
			}
			p.logger.Warnw("Replenishment failed, serving from remaining pool", "poolSize", len(p.codes), "error", err)
		}
	}

	if len(p.codes) == 0 {
		return "", ErrPoolExhausted
	}

	i := rand.IntN(len(p.codes))
	code := p.codes[i]
	last := len(p.codes) - 1
	p.codes[i] = p.codes[last]
	p.codes = p.codes[:last]

	return code, nil
}

// EnsureReplenished резервирует следующий диапазон счётчика, если с прошлого пополнения
// прошло больше Cooldown. Пустой пул пополняется всегда.
func (p *CodePool) EnsureReplenished(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.replenishLocked(ctx, len(p.codes) == 0)
}

// Prefill заново собирает пул из всех незанятых кодов в [1, current_max]
// и дополнительно пополняет его, если он меньше верхней границы.
func (p *CodePool) Prefill(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prefillLocked(ctx)
}

// Reload держит пул заблокированным, пока выполняется sync, и затем собирает его заново.
// Пока идёт Reload, Allocate ждёт.
func (p *CodePool) Reload(ctx context.Context, sync func(ctx context.Context) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := sync(ctx); err != nil {
		return err
	}
	return p.prefillLocked(ctx)
}

func (p *CodePool) prefillLocked(ctx context.Context) error {
	current, err := p.store.GetSetting(ctx, CounterSetting)
	if err != nil {
		return fmt.Errorf("failed to read counter: %w", err)
	}
	bound, err := p.store.Codes(ctx)
	if err != nil {
		return fmt.Errorf("failed to read bound codes: %w", err)
	}

	upper := p.clamp(current)
	codes := make([]string, 0, int(upper)-min(len(bound), int(upper)))
	for n := uint64(1); n <= upper; n++ {
		code, err := utils.EncodeBase62(n, p.cfg.CodeLength)
		if err != nil {
			return err
		}
		if _, used := bound[code]; !used {
			codes = append(codes, code)
		}
	}
	p.codes = codes

	p.logger.Infow("Code pool prefilled", "counter", current, "bound", len(bound), "poolSize", len(p.codes))

	if len(p.codes) < p.cfg.HighWatermark || len(p.codes) == 0 {
		return p.replenishLocked(ctx, true)
	}
	return nil
}

// Size возвращает текущее число свободных кодов.
func (p *CodePool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.codes)
}

// replenishLocked вызывается под p.mu. Резервирует диапазоны, пока в пул не попадёт
// хотя бы один свободный код или не закончится пространство счётчика.
func (p *CodePool) replenishLocked(ctx context.Context, force bool) error {
	if !force && !p.lastReplenish.IsZero() && p.now().Sub(p.lastReplenish) < p.cfg.Cooldown {
		p.logger.Debugw("Replenishment skipped, cooldown active", "poolSize", len(p.codes))
		return nil
	}

	bound, err := p.store.Codes(ctx)
	if err != nil {
		return fmt.Errorf("failed to read bound codes: %w", err)
	}
	maxValue := utils.MaxCodeValue(p.cfg.CodeLength)

	for {
		current, err := p.store.GetSetting(ctx, CounterSetting)
		if err != nil {
			return fmt.Errorf("failed to read counter: %w", err)
		}
		start := p.clamp(current)
		if start >= maxValue {
			return fmt.Errorf("counter space exhausted at %d", start)
		}

		end := start + p.cfg.BatchSize
		if end > maxValue || end < start {
			end = maxValue
		}

		fresh := make([]string, 0, end-start)
		for n := start + 1; n <= end; n++ {
			code, err := utils.EncodeBase62(n, p.cfg.CodeLength)
			if err != nil {
				return err
			}
			if _, used := bound[code]; !used {
				fresh = append(fresh, code)
			}
		}

		if err := p.store.SetSetting(ctx, CounterSetting, int64(end)); err != nil {
			return fmt.Errorf("failed to persist counter: %w", err)
		}
		p.codes = append(p.codes, fresh...)
		p.lastReplenish = p.now()

		p.logger.Infow("Code pool replenished",
			"from", start+1, "to", end, "added", len(fresh), "skipped", int(end-start)-len(fresh), "poolSize", len(p.codes))

		if len(p.codes) > 0 {
			return nil
		}
	}
}

func (p *CodePool) clamp(counter int64) uint64 {
	if counter <= 0 {
		return 0
	}
	maxValue := utils.MaxCodeValue(p.cfg.CodeLength)
	if uint64(counter) > maxValue {
		return maxValue
	}
	return uint64(counter)
}
