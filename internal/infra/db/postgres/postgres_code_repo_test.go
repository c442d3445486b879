//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"promo-raffle/internal/domain"
	"promo-raffle/internal/domain/model"
	"promo-raffle/internal/domain/ports/repository"
)

func mustCode(t *testing.T, value string) *model.Code {
	t.Helper()
	c, err := model.NewCode(value, time.Now().UTC().Truncate(time.Microsecond))
	if err != nil {
		t.Fatalf("NewCode(%q): %v", value, err)
	}
	return c
}

func TestCodeRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewCodeRepo(testPool)

	t.Run("Create and Exists", func(t *testing.T) {
		cleanup(t)
		c := mustCode(t, "AB12CD34")
		if err := repo.Create(ctx, nil, c); err != nil {
			t.Fatalf("Create: %v", err)
		}
		ok, err := repo.Exists(ctx, nil, "AB12CD34")
		if err != nil || !ok {
			t.Fatalf("expected code to exist, got %v (%v)", ok, err)
		}
		ok, _ = repo.Exists(ctx, nil, "ZZZZ0000")
		if ok {
			t.Fatalf("unexpected code ZZZZ0000")
		}
	})

	t.Run("Create duplicate value returns ErrAlreadyExists", func(t *testing.T) {
		cleanup(t)
		if err := repo.Create(ctx, nil, mustCode(t, "DUPL1CAT")); err != nil {
			t.Fatalf("Create: %v", err)
		}
		err := repo.Create(ctx, nil, mustCode(t, "DUPL1CAT"))
		if !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("MarkUsed flips exactly once", func(t *testing.T) {
		cleanup(t)
		if err := repo.Create(ctx, nil, mustCode(t, "ONCE0001")); err != nil {
			t.Fatalf("Create: %v", err)
		}
		now := time.Now().UTC()
		ok, err := repo.MarkUsed(ctx, nil, "ONCE0001", now)
		if err != nil || !ok {
			t.Fatalf("first MarkUsed: %v (%v)", ok, err)
		}
		ok, err = repo.MarkUsed(ctx, nil, "ONCE0001", now)
		if err != nil || ok {
			t.Fatalf("second MarkUsed should change nothing: %v (%v)", ok, err)
		}
		if _, err := repo.FindUnused(ctx, nil, "ONCE0001"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected used code to be hidden from FindUnused, got %v", err)
		}
		c, err := repo.FindByValue(ctx, nil, "ONCE0001")
		if err != nil {
			t.Fatalf("FindByValue: %v", err)
		}
		if !c.Used || c.UsedAt == nil {
			t.Fatalf("expected used code with used_at, got %+v", c)
		}
	})

	t.Run("FindUnused locks the row inside a transaction", func(t *testing.T) {
		cleanup(t)
		if err := repo.Create(ctx, nil, mustCode(t, "LOCK0001")); err != nil {
			t.Fatalf("Create: %v", err)
		}
		tm := NewTxManager(testPool)
		err := tm.WithTx(ctx, txOpts(), func(ctx context.Context, tx repository.Tx) error {
			if _, err := repo.FindUnused(ctx, tx, "LOCK0001"); err != nil {
				return err
			}
			// A NOWAIT probe from another session must fail while we hold the lock.
			probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			_, err := testPool.Exec(probeCtx, `SELECT 1 FROM raffle_codes WHERE code = $1 FOR UPDATE NOWAIT`, "LOCK0001")
			if err == nil {
				t.Errorf("expected the row to be locked")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("WithTx: %v", err)
		}
	})

	t.Run("Stats and DeleteAll", func(t *testing.T) {
		cleanup(t)
		for _, v := range []string{"STAT0001", "STAT0002", "STAT0003"} {
			if err := repo.Create(ctx, nil, mustCode(t, v)); err != nil {
				t.Fatalf("Create: %v", err)
			}
		}
		if _, err := repo.MarkUsed(ctx, nil, "STAT0002", time.Now().UTC()); err != nil {
			t.Fatalf("MarkUsed: %v", err)
		}
		st, err := repo.Stats(ctx, nil)
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}
		if st.Total != 3 || st.Used != 1 || st.Unused != 2 {
			t.Fatalf("unexpected stats %+v", st)
		}
		n, err := repo.DeleteAll(ctx, nil)
		if err != nil || n != 3 {
			t.Fatalf("DeleteAll: %d (%v)", n, err)
		}
	})

	t.Run("DeleteAll refuses while participants reference codes", func(t *testing.T) {
		cleanup(t)
		if err := repo.Create(ctx, nil, mustCode(t, "HELD0001")); err != nil {
			t.Fatalf("Create: %v", err)
		}
		parts := NewParticipantRepo(testPool)
		p := &model.Participant{ID: "01J0000000000000000000000", FullName: "Ana", Email: "ana@example.com", Phone: "1", Instagram: "@ana", Code: "HELD0001", CreatedAt: time.Now().UTC()}
		if err := parts.Create(ctx, nil, p); err != nil {
			t.Fatalf("participant Create: %v", err)
		}
		if _, err := repo.DeleteAll(ctx, nil); !errors.Is(err, domain.ErrCodesInUse) {
			t.Fatalf("expected ErrCodesInUse, got %v", err)
		}
	})
}
