package storage

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/pharmacy/internal/core/domain"
	"github.com/rl1809/pharmacy/internal/core/service"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/pharmacy?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	return db
}

func mustAddress(t *testing.T) domain.Address {
	t.Helper()
	address, err := domain.NewAddress("Lithuania", "Vilnius", "Gedimino pr. 1", "01103")
	if err != nil {
		t.Fatalf("address: %v", err)
	}
	return address
}

// seedMySQLClient inserts a client and registers cleanup. Orders created for
// the client must be removed by the test before cleanup runs.
func seedMySQLClient(t *testing.T, store *MySQLStore) int64 {
	t.Helper()
	ctx := context.Background()

	client, err := domain.NewClient("Test", "Client-"+uuid.NewString()[:8], mustAddress(t))
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	id, err := store.CreateClient(ctx, client)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	t.Cleanup(func() { store.DeleteClient(ctx, id) })
	return id
}

func seedMySQLMedicine(t *testing.T, store *MySQLStore, price string, stock int) int64 {
	t.Helper()
	ctx := context.Background()

	medicine, err := domain.NewMedicine("test-med-"+uuid.NewString()[:8], decimal.RequireFromString(price), stock)
	if err != nil {
		t.Fatalf("medicine: %v", err)
	}
	id, err := store.CreateMedicine(ctx, medicine)
	if err != nil {
		t.Fatalf("create medicine: %v", err)
	}
	t.Cleanup(func() { store.DeleteMedicine(ctx, id) })
	return id
}

func TestMySQL_OrderCreation(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	store := NewMySQLStore(db)
	clientID := seedMySQLClient(t, store)
	medicineID := seedMySQLMedicine(t, store, "2.00", 10)

	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := service.NewOrderService(store, log)

	order, err := svc.CreateOrder(ctx, clientID, map[int64]int{medicineID: 5})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	defer store.DeleteOrder(ctx, order.ID)

	if !order.TotalPrice.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("expected total 10.00, got %s", order.TotalPrice)
	}

	medicine, err := store.GetMedicine(ctx, medicineID)
	if err != nil {
		t.Fatalf("GetMedicine failed: %v", err)
	}
	if medicine.Stock != 5 {
		t.Errorf("expected stock 5, got %d", medicine.Stock)
	}

	lines, err := store.ListOrderLines(ctx, order.ID)
	if err != nil {
		t.Fatalf("ListOrderLines failed: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantity != 5 {
		t.Fatalf("unexpected lines: %+v", lines)
	}
	if !lines[0].UnitPrice.Equal(decimal.RequireFromString("2.00")) {
		t.Errorf("expected line price 2.00, got %s", lines[0].UnitPrice)
	}
}

func TestMySQL_ConditionalDecrement(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	store := NewMySQLStore(db)
	medicineID := seedMySQLMedicine(t, store, "2.00", 1)

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()

	err = tx.DecrementStock(ctx, medicineID, 5)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	medicine, err := store.GetMedicine(ctx, medicineID)
	if err != nil {
		t.Fatalf("GetMedicine failed: %v", err)
	}
	if medicine.Stock != 1 {
		t.Errorf("expected stock 1, got %d", medicine.Stock)
	}
}

func TestMySQL_RollbackDiscardsHeader(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	store := NewMySQLStore(db)
	clientID := seedMySQLClient(t, store)

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	orderID, err := tx.InsertOrderHeader(ctx, clientID, time.Now())
	if err != nil {
		tx.Rollback()
		t.Fatalf("insert header: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	_, err = store.GetOrder(ctx, orderID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after rollback, got: %v", err)
	}
}

func TestMySQL_DeleteClientWithOrders(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	store := NewMySQLStore(db)
	clientID := seedMySQLClient(t, store)
	medicineID := seedMySQLMedicine(t, store, "2.00", 10)

	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := service.NewOrderService(store, log)

	order, err := svc.CreateOrder(ctx, clientID, map[int64]int{medicineID: 1})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	defer store.DeleteOrder(ctx, order.ID)

	err = store.DeleteClient(ctx, clientID)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got: %v", err)
	}
}

func TestMySQL_SupplierMedicineUpsert(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	store := NewMySQLStore(db)
	medicineID := seedMySQLMedicine(t, store, "2.00", 10)

	supplier, err := domain.NewSupplier("test-sup-"+uuid.NewString()[:8], mustAddress(t))
	if err != nil {
		t.Fatalf("supplier: %v", err)
	}
	supplierID, err := store.CreateSupplier(ctx, supplier)
	if err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	defer store.DeleteSupplier(ctx, supplierID)
	defer db.ExecContext(ctx, `DELETE FROM suppliermedicine WHERE supplier_id = ?`, supplierID)

	link, err := domain.NewSupplierMedicine(supplierID, medicineID, decimal.RequireFromString("1.10"))
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := store.UpsertSupplierMedicine(ctx, link); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Second upsert with a new price must update, not conflict.
	link.SupplyPrice = decimal.RequireFromString("1.25")
	if err := store.UpsertSupplierMedicine(ctx, link); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	links, err := store.ListSupplierMedicines(ctx, supplierID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	if !links[0].SupplyPrice.Equal(decimal.RequireFromString("1.25")) {
		t.Errorf("expected supply price 1.25, got %s", links[0].SupplyPrice)
	}
}

func TestMySQL_OrderLineForeignKey(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	store := NewMySQLStore(db)
	clientID := seedMySQLClient(t, store)

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()

	orderID, err := tx.InsertOrderHeader(ctx, clientID, time.Now())
	if err != nil {
		t.Fatalf("insert header: %v", err)
	}

	err = tx.InsertOrderLine(ctx, domain.OrderLine{
		OrderID:    orderID,
		MedicineID: -1,
		Quantity:   1,
		UnitPrice:  decimal.RequireFromString("2.00"),
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for unknown medicine, got: %v", err)
	}
}
