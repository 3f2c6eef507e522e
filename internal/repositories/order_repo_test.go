package repositories

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func TestConsumeTokenWithSignatureWins(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	token := uuid.New()
	now := time.Now().UTC()

	mock.ExpectExec("UPDATE orders").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := OrderRepository{DB: db}
	ok, err := repo.ConsumeTokenWithSignature(token, []byte("ciphertext"), now)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if !ok {
		t.Fatalf("expected the guarded update to win")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConsumeTokenWithSignatureLoses(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	// Zero rows touched: token dead or order already signed.
	mock.ExpectExec("UPDATE orders").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := OrderRepository{DB: db}
	ok, err := repo.ConsumeTokenWithSignature(uuid.New(), []byte("ciphertext"), time.Now())
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if ok {
		t.Fatalf("expected the guarded update to lose")
	}
}

func TestNextReference(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO order_sequences").
		WithArgs(2024).
		WillReturnResult(sqlmock.NewResult(7, 1))

	repo := OrderRepository{DB: db}
	n, err := repo.NextReference(2024)
	if err != nil {
		t.Fatalf("next reference: %v", err)
	}
	if n != 7 {
		t.Fatalf("expected sequence value 7, got %d", n)
	}
}

func TestNextReferenceRejectsZero(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO order_sequences").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := OrderRepository{DB: db}
	if _, err := repo.NextReference(2024); err == nil {
		t.Fatalf("expected error on zero sequence value")
	}
}

func TestSetSignatureToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE orders SET signature_token").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := OrderRepository{DB: db}
	if err := repo.SetSignatureToken(uuid.New(), uuid.New(), time.Now().Add(24*time.Hour)); err != nil {
		t.Fatalf("set token: %v", err)
	}
}

func TestSetSignatureTokenUnknownOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE orders SET signature_token").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := OrderRepository{DB: db}
	if err := repo.SetSignatureToken(uuid.New(), uuid.New(), time.Now()); err == nil {
		t.Fatalf("expected error when no row matched")
	}
}

func TestSavePDFPromotesDraft(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("pdf_file").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := OrderRepository{DB: db}
	if err := repo.SavePDF(uuid.New(), []byte("%PDF-1.4"), time.Now()); err != nil {
		t.Fatalf("save pdf: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
