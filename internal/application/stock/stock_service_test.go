package stock

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fms/backend/internal/domain/shared"
	"github.com/fms/backend/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEntryRepo is an in-memory ledger keyed by material+warehouse
type fakeEntryRepo struct {
	mu      sync.Mutex
	entries map[string]*stock.StockEntry
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: make(map[string]*stock.StockEntry)}
}

func entryKey(materialID, warehouseID uuid.UUID) string {
	return materialID.String() + "/" + warehouseID.String()
}

func (r *fakeEntryRepo) FindByMaterialAndWarehouse(_ context.Context, materialID, warehouseID uuid.UUID) (*stock.StockEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[entryKey(materialID, warehouseID)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *entry
	return &copied, nil
}

func (r *fakeEntryRepo) FindForUpdate(ctx context.Context, materialID, warehouseID uuid.UUID) (*stock.StockEntry, error) {
	return r.FindByMaterialAndWarehouse(ctx, materialID, warehouseID)
}

func (r *fakeEntryRepo) Create(_ context.Context, entry *stock.StockEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := entryKey(entry.MaterialID, entry.WarehouseID)
	if _, ok := r.entries[key]; ok {
		return shared.ErrAlreadyExists
	}
	copied := *entry
	r.entries[key] = &copied
	return nil
}

func (r *fakeEntryRepo) Save(_ context.Context, entry *stock.StockEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *entry
	r.entries[entryKey(entry.MaterialID, entry.WarehouseID)] = &copied
	return nil
}

func (r *fakeEntryRepo) FindAll(_ context.Context, filter stock.EntryFilter) ([]stock.StockEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []stock.StockEntry
	for _, entry := range r.entries {
		if filter.MaterialID != nil && entry.MaterialID != *filter.MaterialID {
			continue
		}
		if filter.WarehouseID != nil && entry.WarehouseID != *filter.WarehouseID {
			continue
		}
		if filter.NonEmpty && entry.IsEmpty() {
			continue
		}
		out = append(out, *entry)
	}
	return out, nil
}

func (r *fakeEntryRepo) Count(ctx context.Context, filter stock.EntryFilter) (int64, error) {
	entries, err := r.FindAll(ctx, filter)
	return int64(len(entries)), err
}

// fakeMovementRepo is an in-memory append-only movement log
type fakeMovementRepo struct {
	mu        sync.Mutex
	movements []stock.StockMovement
}

func (r *fakeMovementRepo) Create(_ context.Context, movement *stock.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.movements {
		if m.MovementNumber == movement.MovementNumber {
			return shared.ErrAlreadyExists
		}
	}
	r.movements = append(r.movements, *movement)
	return nil
}

func (r *fakeMovementRepo) FindByNumber(_ context.Context, number string) (*stock.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.movements {
		if r.movements[i].MovementNumber == number {
			copied := r.movements[i]
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeMovementRepo) FindAll(_ context.Context, filter stock.MovementFilter) ([]stock.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []stock.StockMovement
	for _, m := range r.movements {
		if filter.MaterialID != nil && m.MaterialID != *filter.MaterialID {
			continue
		}
		if filter.Kind != nil && m.Kind != *filter.Kind {
			continue
		}
		if filter.WarehouseID != nil && m.SignedQuantityFor(*filter.WarehouseID).IsZero() {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeMovementRepo) Count(ctx context.Context, filter stock.MovementFilter) (int64, error) {
	movements, err := r.FindAll(ctx, filter)
	return int64(len(movements)), err
}

func (r *fakeMovementRepo) last() stock.StockMovement {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.movements[len(r.movements)-1]
}

func (r *fakeMovementRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.movements)
}

// fakeSequences hands out numbers from an in-memory counter per prefix
type fakeSequences struct {
	mu       sync.Mutex
	counters map[string]int64
}

func newFakeSequences() *fakeSequences {
	return &fakeSequences{counters: make(map[string]int64)}
}

func (g *fakeSequences) Next(_ context.Context, prefix string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counters[prefix]++
	return fmt.Sprintf("%s%04d", prefix, g.counters[prefix]), nil
}

// rollbackScope mimics transactional semantics over the in-memory fakes:
// when the function fails, entry and movement state is restored to the
// snapshot taken at entry. Sequence state is left alone, matching a real
// counter advanced by the competing committed writer.
type rollbackScope struct {
	repos *NoOpTransactionScope
	entry *fakeEntryRepo
	log   *fakeMovementRepo
}

func (s *rollbackScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	entrySnapshot := make(map[string]*stock.StockEntry, len(s.entry.entries))
	for k, v := range s.entry.entries {
		copied := *v
		entrySnapshot[k] = &copied
	}
	logSnapshot := append([]stock.StockMovement(nil), s.log.movements...)

	if err := fn(s.repos); err != nil {
		s.entry.entries = entrySnapshot
		s.log.movements = logSnapshot
		return err
	}
	return nil
}

type staticResolver struct{}

func (staticResolver) MaterialName(context.Context, uuid.UUID) (string, error) {
	return "Copper Pipe 15mm", nil
}

func (staticResolver) WarehouseName(context.Context, uuid.UUID) (string, error) {
	return "Central Store", nil
}

func newTestService() (*StockService, *fakeEntryRepo, *fakeMovementRepo) {
	entryRepo := newFakeEntryRepo()
	movementRepo := &fakeMovementRepo{}
	scope := NewNoOpTransactionScope(entryRepo, movementRepo, newFakeSequences())
	svc := NewStockService(scope, entryRepo, movementRepo, staticResolver{})
	svc.SetClock(func() time.Time {
		return time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	})
	return svc, entryRepo, movementRepo
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestStockService_Receive(t *testing.T) {
	ctx := context.Background()
	materialID := uuid.New()
	warehouseID := uuid.New()

	t.Run("first receipt creates the entry", func(t *testing.T) {
		svc, _, movements := newTestService()
		resp, err := svc.Receive(ctx, ReceiveStockRequest{
			MaterialID:  materialID,
			WarehouseID: warehouseID,
			Quantity:    dec("100"),
		})
		require.NoError(t, err)
		assert.True(t, resp.Quantity.Equal(dec("100")))
		assert.Equal(t, "Copper Pipe 15mm", resp.MaterialName)
		assert.Equal(t, "Central Store", resp.WarehouseName)

		m := movements.last()
		assert.Equal(t, stock.MovementKindReceipt, m.Kind)
		assert.Equal(t, "TXN202503100001", m.MovementNumber)
		require.NotNil(t, m.ToWarehouseID)
		assert.Equal(t, warehouseID, *m.ToWarehouseID)
		assert.Nil(t, m.FromWarehouseID)
	})

	t.Run("second receipt accumulates", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.Receive(ctx, ReceiveStockRequest{MaterialID: materialID, WarehouseID: warehouseID, Quantity: dec("100")})
		require.NoError(t, err)
		resp, err := svc.Receive(ctx, ReceiveStockRequest{MaterialID: materialID, WarehouseID: warehouseID, Quantity: dec("50.5")})
		require.NoError(t, err)
		assert.True(t, resp.Quantity.Equal(dec("150.5")))
	})

	t.Run("carries unit price and reference", func(t *testing.T) {
		svc, _, movements := newTestService()
		price := dec("12.40")
		_, err := svc.Receive(ctx, ReceiveStockRequest{
			MaterialID:    materialID,
			WarehouseID:   warehouseID,
			Quantity:      dec("10"),
			UnitPrice:     &price,
			ReferenceType: "PURCHASE_ORDER",
			ReferenceID:   "PO-7731",
		})
		require.NoError(t, err)
		m := movements.last()
		require.NotNil(t, m.UnitPrice)
		assert.True(t, m.UnitPrice.Equal(price))
		assert.Equal(t, "PURCHASE_ORDER", m.ReferenceType)
		assert.Equal(t, "PO-7731", m.ReferenceID)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		svc, _, movements := newTestService()
		_, err := svc.Receive(ctx, ReceiveStockRequest{MaterialID: materialID, WarehouseID: warehouseID, Quantity: decimal.Zero})
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
		_, err = svc.Receive(ctx, ReceiveStockRequest{MaterialID: materialID, WarehouseID: warehouseID, Quantity: dec("-5")})
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
		assert.Zero(t, movements.count())
	})
}

func TestStockService_Issue(t *testing.T) {
	ctx := context.Background()
	materialID := uuid.New()
	warehouseID := uuid.New()

	t.Run("decrements on-hand quantity", func(t *testing.T) {
		svc, _, movements := newTestService()
		_, err := svc.Receive(ctx, ReceiveStockRequest{MaterialID: materialID, WarehouseID: warehouseID, Quantity: dec("100")})
		require.NoError(t, err)

		resp, err := svc.Issue(ctx, IssueStockRequest{MaterialID: materialID, WarehouseID: warehouseID, Quantity: dec("30")})
		require.NoError(t, err)
		assert.True(t, resp.Quantity.Equal(dec("70")))

		m := movements.last()
		assert.Equal(t, stock.MovementKindIssue, m.Kind)
		require.NotNil(t, m.FromWarehouseID)
		assert.Equal(t, warehouseID, *m.FromWarehouseID)
		assert.Nil(t, m.ToWarehouseID)
	})

	t.Run("issue to exactly zero keeps the entry", func(t *testing.T) {
		svc, entries, _ := newTestService()
		_, err := svc.Receive(ctx, ReceiveStockRequest{MaterialID: materialID, WarehouseID: warehouseID, Quantity: dec("100")})
		require.NoError(t, err)

		resp, err := svc.Issue(ctx, IssueStockRequest{MaterialID: materialID, WarehouseID: warehouseID, Quantity: dec("100")})
		require.NoError(t, err)
		assert.True(t, resp.Quantity.IsZero())

		entry, err := entries.FindByMaterialAndWarehouse(ctx, materialID, warehouseID)
		require.NoError(t, err)
		assert.True(t, entry.IsEmpty())
	})

	t.Run("rejects insufficient stock without mutating", func(t *testing.T) {
		svc, entries, movements := newTestService()
		_, err := svc.Receive(ctx, ReceiveStockRequest{MaterialID: materialID, WarehouseID: warehouseID, Quantity: dec("10")})
		require.NoError(t, err)
		before := movements.count()

		_, err = svc.Issue(ctx, IssueStockRequest{MaterialID: materialID, WarehouseID: warehouseID, Quantity: dec("10.0001")})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, before, movements.count())

		entry, err := entries.FindByMaterialAndWarehouse(ctx, materialID, warehouseID)
		require.NoError(t, err)
		assert.True(t, entry.Quantity.Equal(dec("10")))
	})

	t.Run("absent entry reads as zero stock", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.Issue(ctx, IssueStockRequest{MaterialID: uuid.New(), WarehouseID: uuid.New(), Quantity: dec("1")})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})
}

func TestStockService_Transfer(t *testing.T) {
	ctx := context.Background()
	materialID := uuid.New()
	fromID := uuid.New()
	toID := uuid.New()

	t.Run("moves quantity and records one movement", func(t *testing.T) {
		svc, entries, movements := newTestService()
		_, err := svc.Receive(ctx, ReceiveStockRequest{MaterialID: materialID, WarehouseID: fromID, Quantity: dec("100")})
		require.NoError(t, err)

		resp, err := svc.Transfer(ctx, TransferStockRequest{
			MaterialID:      materialID,
			FromWarehouseID: fromID,
			ToWarehouseID:   toID,
			Quantity:        dec("40"),
		})
		require.NoError(t, err)
		assert.True(t, resp.Quantity.Equal(dec("40")))

		source, err := entries.FindByMaterialAndWarehouse(ctx, materialID, fromID)
		require.NoError(t, err)
		assert.True(t, source.Quantity.Equal(dec("60")))

		m := movements.last()
		assert.Equal(t, stock.MovementKindTransfer, m.Kind)
		require.NotNil(t, m.FromWarehouseID)
		require.NotNil(t, m.ToWarehouseID)
		assert.Equal(t, fromID, *m.FromWarehouseID)
		assert.Equal(t, toID, *m.ToWarehouseID)
	})

	t.Run("conserves total quantity", func(t *testing.T) {
		svc, entries, _ := newTestService()
		_, err := svc.Receive(ctx, ReceiveStockRequest{MaterialID: materialID, WarehouseID: fromID, Quantity: dec("75.25")})
		require.NoError(t, err)

		_, err = svc.Transfer(ctx, TransferStockRequest{MaterialID: materialID, FromWarehouseID: fromID, ToWarehouseID: toID, Quantity: dec("25.25")})
		require.NoError(t, err)

		source, _ := entries.FindByMaterialAndWarehouse(ctx, materialID, fromID)
		dest, _ := entries.FindByMaterialAndWarehouse(ctx, materialID, toID)
		assert.True(t, source.Quantity.Add(dest.Quantity).Equal(dec("75.25")))
	})

	t.Run("rejects same source and destination", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.Transfer(ctx, TransferStockRequest{MaterialID: materialID, FromWarehouseID: fromID, ToWarehouseID: fromID, Quantity: dec("5")})
		assert.ErrorIs(t, err, shared.ErrSameWarehouse)
	})

	t.Run("insufficient source leaves both sides untouched", func(t *testing.T) {
		svc, entries, movements := newTestService()
		_, err := svc.Receive(ctx, ReceiveStockRequest{MaterialID: materialID, WarehouseID: fromID, Quantity: dec("10")})
		require.NoError(t, err)
		before := movements.count()

		_, err = svc.Transfer(ctx, TransferStockRequest{MaterialID: materialID, FromWarehouseID: fromID, ToWarehouseID: toID, Quantity: dec("11")})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, before, movements.count())

		source, err := entries.FindByMaterialAndWarehouse(ctx, materialID, fromID)
		require.NoError(t, err)
		assert.True(t, source.Quantity.Equal(dec("10")))
	})

	t.Run("absent source rejected as insufficient", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.Transfer(ctx, TransferStockRequest{MaterialID: uuid.New(), FromWarehouseID: fromID, ToWarehouseID: toID, Quantity: dec("1")})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})
}

func TestStockService_Adjust(t *testing.T) {
	ctx := context.Background()
	materialID := uuid.New()
	warehouseID := uuid.New()

	t.Run("downward count records negative-side movement", func(t *testing.T) {
		svc, _, movements := newTestService()
		_, err := svc.Receive(ctx, ReceiveStockRequest{MaterialID: materialID, WarehouseID: warehouseID, Quantity: dec("70")})
		require.NoError(t, err)

		resp, err := svc.Adjust(ctx, AdjustStockRequest{
			MaterialID:  materialID,
			WarehouseID: warehouseID,
			NewQuantity: dec("50"),
			Remarks:     "cycle count",
		})
		require.NoError(t, err)
		assert.True(t, resp.Quantity.Equal(dec("50")))

		m := movements.last()
		assert.Equal(t, stock.MovementKindAdjustment, m.Kind)
		assert.True(t, m.Quantity.Equal(dec("20")))
		require.NotNil(t, m.FromWarehouseID)
		assert.Equal(t, warehouseID, *m.FromWarehouseID)
		assert.Equal(t, "cycle count (before: 70, after: 50)", m.Remarks)
	})

	t.Run("upward count records positive-side movement", func(t *testing.T) {
		svc, _, movements := newTestService()
		_, err := svc.Receive(ctx, ReceiveStockRequest{MaterialID: materialID, WarehouseID: warehouseID, Quantity: dec("50")})
		require.NoError(t, err)

		_, err = svc.Adjust(ctx, AdjustStockRequest{MaterialID: materialID, WarehouseID: warehouseID, NewQuantity: dec("55"), Remarks: "found in receiving bay"})
		require.NoError(t, err)

		m := movements.last()
		assert.True(t, m.Quantity.Equal(dec("5")))
		require.NotNil(t, m.ToWarehouseID)
		assert.Equal(t, warehouseID, *m.ToWarehouseID)
		assert.Nil(t, m.FromWarehouseID)
	})

	t.Run("matching count is a no-op", func(t *testing.T) {
		svc, _, movements := newTestService()
		_, err := svc.Receive(ctx, ReceiveStockRequest{MaterialID: materialID, WarehouseID: warehouseID, Quantity: dec("30")})
		require.NoError(t, err)
		before := movements.count()

		resp, err := svc.Adjust(ctx, AdjustStockRequest{MaterialID: materialID, WarehouseID: warehouseID, NewQuantity: dec("30"), Remarks: "cycle count"})
		require.NoError(t, err)
		assert.True(t, resp.Quantity.Equal(dec("30")))
		assert.Equal(t, before, movements.count())
	})

	t.Run("adjustment on unseen pair creates the entry", func(t *testing.T) {
		svc, _, movements := newTestService()
		resp, err := svc.Adjust(ctx, AdjustStockRequest{MaterialID: materialID, WarehouseID: warehouseID, NewQuantity: dec("12"), Remarks: "initial count"})
		require.NoError(t, err)
		assert.True(t, resp.Quantity.Equal(dec("12")))
		assert.Equal(t, 1, movements.count())
	})

	t.Run("rejects negative count and missing remarks", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.Adjust(ctx, AdjustStockRequest{MaterialID: materialID, WarehouseID: warehouseID, NewQuantity: dec("-1"), Remarks: "x"})
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)

		_, err = svc.Adjust(ctx, AdjustStockRequest{MaterialID: materialID, WarehouseID: warehouseID, NewQuantity: dec("5")})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_REMARKS", domainErr.Code)
	})
}

func TestStockService_GetEntry(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	materialID := uuid.New()
	warehouseID := uuid.New()

	t.Run("absent pair reads as zero", func(t *testing.T) {
		resp, err := svc.GetEntry(ctx, materialID, warehouseID)
		require.NoError(t, err)
		assert.True(t, resp.Quantity.IsZero())
		assert.Equal(t, materialID, resp.MaterialID)
	})

	t.Run("existing pair reads its quantity", func(t *testing.T) {
		_, err := svc.Receive(ctx, ReceiveStockRequest{MaterialID: materialID, WarehouseID: warehouseID, Quantity: dec("33")})
		require.NoError(t, err)
		resp, err := svc.GetEntry(ctx, materialID, warehouseID)
		require.NoError(t, err)
		assert.True(t, resp.Quantity.Equal(dec("33")))
	})
}

func TestStockService_ListMovements(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	materialID := uuid.New()
	warehouseID := uuid.New()

	_, err := svc.Receive(ctx, ReceiveStockRequest{MaterialID: materialID, WarehouseID: warehouseID, Quantity: dec("100")})
	require.NoError(t, err)
	_, err = svc.Issue(ctx, IssueStockRequest{MaterialID: materialID, WarehouseID: warehouseID, Quantity: dec("20")})
	require.NoError(t, err)

	t.Run("filters by kind", func(t *testing.T) {
		kind := "ISSUE"
		responses, total, err := svc.ListMovements(ctx, MovementListFilter{Kind: &kind})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, responses, 1)
		assert.Equal(t, "ISSUE", responses[0].Kind)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		kind := "TELEPORT"
		_, _, err := svc.ListMovements(ctx, MovementListFilter{Kind: &kind})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_KIND", domainErr.Code)
	})
}

func TestStockService_NumberConflictRetry(t *testing.T) {
	ctx := context.Background()
	materialID := uuid.New()
	warehouseID := uuid.New()

	t.Run("retries after a lost uniqueness race", func(t *testing.T) {
		entryRepo := newFakeEntryRepo()
		movementRepo := &fakeMovementRepo{}
		sequences := newFakeSequences()
		// Pre-claim the first number so the service's first attempt collides
		taken, err := stock.NewReceiptMovement("TXN202503100001", materialID, warehouseID, dec("1"), time.Now())
		require.NoError(t, err)
		require.NoError(t, movementRepo.Create(ctx, taken))

		repos := NewNoOpTransactionScope(entryRepo, movementRepo, sequences)
		scope := &rollbackScope{repos: repos, entry: entryRepo, log: movementRepo}
		svc := NewStockService(scope, entryRepo, movementRepo, nil)
		svc.SetClock(func() time.Time {
			return time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
		})

		resp, err := svc.Receive(ctx, ReceiveStockRequest{MaterialID: materialID, WarehouseID: warehouseID, Quantity: dec("10")})
		require.NoError(t, err)
		assert.True(t, resp.Quantity.Equal(dec("10")))
		assert.Equal(t, "TXN202503100002", movementRepo.last().MovementNumber)
	})

	t.Run("exhausted retries surface a sequence conflict", func(t *testing.T) {
		entryRepo := newFakeEntryRepo()
		movementRepo := &fakeMovementRepo{}
		// A generator stuck on one number can never win the race
		stuck := &stuckSequences{number: "TXN202503100042"}
		taken, err := stock.NewReceiptMovement(stuck.number, materialID, warehouseID, dec("1"), time.Now())
		require.NoError(t, err)
		require.NoError(t, movementRepo.Create(ctx, taken))

		repos := NewNoOpTransactionScope(entryRepo, movementRepo, stuck)
		scope := &rollbackScope{repos: repos, entry: entryRepo, log: movementRepo}
		svc := NewStockService(scope, entryRepo, movementRepo, nil)

		_, err = svc.Receive(ctx, ReceiveStockRequest{MaterialID: materialID, WarehouseID: warehouseID, Quantity: dec("10")})
		assert.ErrorIs(t, err, shared.ErrSequenceConflict)
		assert.Equal(t, 3, stuck.calls)
	})
}

type stuckSequences struct {
	number string
	calls  int
}

func (g *stuckSequences) Next(context.Context, string) (string, error) {
	g.calls++
	return g.number, nil
}
