package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/pharmacy/internal/core/domain"
)

type ClientRepository interface {
	// CreateClient persists a new client and returns the generated id.
	CreateClient(ctx context.Context, client domain.Client) (int64, error)

	UpdateClientAddress(ctx context.Context, clientID int64, address domain.Address) error

	// DeleteClient removes a client; returns domain.ErrConflict while orders
	// still reference it.
	DeleteClient(ctx context.Context, clientID int64) error

	ListClients(ctx context.Context) ([]domain.Client, error)
}

type MedicineRepository interface {
	// CreateMedicine persists a new medicine and returns the generated id.
	CreateMedicine(ctx context.Context, medicine domain.Medicine) (int64, error)

	GetMedicine(ctx context.Context, medicineID int64) (domain.Medicine, error)

	// DeleteMedicine removes a medicine; returns domain.ErrConflict while
	// order lines or supplier links still reference it.
	DeleteMedicine(ctx context.Context, medicineID int64) error

	ListMedicines(ctx context.Context) ([]domain.Medicine, error)
}

type SupplierRepository interface {
	CreateSupplier(ctx context.Context, supplier domain.Supplier) (int64, error)
	DeleteSupplier(ctx context.Context, supplierID int64) error
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)

	// UpsertSupplierMedicine links a supplier to a medicine, updating the
	// supply price if the link already exists.
	UpsertSupplierMedicine(ctx context.Context, link domain.SupplierMedicine) error

	ListSupplierMedicines(ctx context.Context, supplierID int64) ([]domain.SupplierMedicine, error)
}

// TxBeginner opens the transaction-scoped handle the order coordinator
// drives. The coordinator owns the full begin/commit/rollback lifecycle.
type TxBeginner interface {
	Begin(ctx context.Context) (OrderTx, error)
}

type OrderRepository interface {
	TxBeginner

	GetOrder(ctx context.Context, orderID int64) (domain.Order, error)
	ListOrdersByClient(ctx context.Context, clientID int64) ([]domain.Order, error)
	ListOrderLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error)

	// ListOrderSummaries reads the detailed_order_summary reporting view.
	ListOrderSummaries(ctx context.Context) ([]domain.OrderSummary, error)

	// DeleteOrder removes an order header and its lines. Stock is not
	// restored.
	DeleteOrder(ctx context.Context, orderID int64) error
}

// OrderTx is one open order-creation transaction. Every mutation is
// provisional until Commit; Rollback discards all of them, header included.
// Rollback after a successful Commit is a no-op, so it is safe to defer.
type OrderTx interface {
	// InsertOrderHeader inserts the header with a zero placeholder total and
	// returns the generated order id.
	InsertOrderHeader(ctx context.Context, clientID int64, orderDate time.Time) (int64, error)

	InsertOrderLine(ctx context.Context, line domain.OrderLine) error

	UpdateOrderTotal(ctx context.Context, orderID int64, total decimal.Decimal) error

	// MedicineUnitPrice resolves the live catalog price; domain.ErrNotFound
	// if the medicine does not exist.
	MedicineUnitPrice(ctx context.Context, medicineID int64) (decimal.Decimal, error)

	// DecrementStock atomically reduces stock by quantity only if enough is
	// available, otherwise domain.ErrInsufficientStock. Concurrent
	// transactions serialize here.
	DecrementStock(ctx context.Context, medicineID int64, quantity int) error

	Commit() error
	Rollback() error
}
