package mysql

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	farmerDomain "agripledge-backend/internal/domain/farmer"
	loanDomain "agripledge-backend/internal/domain/loan"
	produceDomain "agripledge-backend/internal/domain/produce"
	"agripledge-backend/internal/domain/uow"
	"agripledge-backend/pkg/id"
)

// openUowTestDB migrates every table, so the UoW can orchestrate all repos.
func openUowTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&loanSQLite{}, &loanDomain.Payment{}, &produceDomain.Produce{}, &farmerDomain.Farmer{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func TestGormUoW_WithinTx_Commit(t *testing.T) {
	db := openUowTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	loanRepo := NewLoanRepository(db)
	produceRepo := NewProduceRepository(db)

	p := seedProduce(t, db)
	loanID := id.NewID32()

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		l := makeLoan(loanID, p.FarmerID)
		l.ProduceID = p.ProduceID
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		return r.Produce.Pledge(ctx, p.ProduceID, loanID, l.CollateralQuantity)
	})
	if err != nil {
		t.Fatalf("WithinTx commit err: %v", err)
	}

	// Verify post-commit visibility
	if _, err := loanRepo.GetByLoanID(ctx, loanID); err != nil {
		t.Fatalf("loan not visible after commit: %v", err)
	}
	got, err := produceRepo.Resolve(ctx, p.ProduceID)
	if err != nil {
		t.Fatalf("produce not visible after commit: %v", err)
	}
	if !got.IsPledged || *got.PledgedToLoan != loanID {
		t.Fatalf("pledge not committed: %+v", got)
	}
}

func TestGormUoW_WithinTx_Rollback(t *testing.T) {
	db := openUowTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	loanRepo := NewLoanRepository(db)
	produceRepo := NewProduceRepository(db)

	p := seedProduce(t, db)
	loanID := id.NewID32()
	sentinel := errors.New("boom")

	_ = guow.WithinTx(ctx, func(r uow.Repos) error {
		l := makeLoan(loanID, p.FarmerID)
		l.ProduceID = p.ProduceID
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		if err := r.Produce.Pledge(ctx, p.ProduceID, loanID, l.CollateralQuantity); err != nil {
			return err
		}
		return sentinel // force rollback
	})

	// Neither write may survive: loan active without pledge (or the reverse)
	// must never be observable.
	if _, err := loanRepo.GetByLoanID(ctx, loanID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected loan not found after rollback, got %v", err)
	}
	got, err := produceRepo.Resolve(ctx, p.ProduceID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.IsPledged {
		t.Fatalf("pledge survived rollback: %+v", got)
	}
}

func TestGormUoW_WithinLoanTx_LoadsAndCommits(t *testing.T) {
	db := openUowTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	loanRepo := NewLoanRepository(db)

	loanID := id.NewID32()
	if err := loanRepo.Create(ctx, makeLoan(loanID, id.NewID32())); err != nil {
		t.Fatal(err)
	}

	err := guow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loanDomain.Loan) error {
		if l.LoanID != loanID {
			t.Fatalf("loaded wrong loan: %s", l.LoanID)
		}
		l.Status = loanDomain.StatusActive
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		t.Fatalf("WithinLoanTx: %v", err)
	}

	got, err := loanRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != loanDomain.StatusActive {
		t.Fatalf("status = %s, want active", got.Status)
	}
}

func TestGormUoW_WithinLoanTx_UnknownLoan(t *testing.T) {
	db := openUowTestDB(t)
	guow := NewGormUoW(db)

	err := guow.WithinLoanTx(context.Background(), id.NewID32(), func(r uow.Repos, l *loanDomain.Loan) error {
		t.Fatal("body must not run for a missing loan")
		return nil
	})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}
