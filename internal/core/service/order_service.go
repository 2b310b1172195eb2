package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/pharmacy/internal/core/domain"
	"github.com/rl1809/pharmacy/internal/port"
)

// LineError reports which order line made the transaction abort.
type LineError struct {
	MedicineID int64
	Quantity   int
	Err        error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("order line (medicine %d, quantity %d): %v", e.MedicineID, e.Quantity, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// OrderService coordinates order creation: one header insert, one line
// insert plus one stock decrement per medicine, and a final total update,
// all inside a single transaction.
type OrderService struct {
	orders port.TxBeginner
	log    logrus.FieldLogger
}

func NewOrderService(orders port.TxBeginner, log logrus.FieldLogger) *OrderService {
	return &OrderService{orders: orders, log: log}
}

// CreateOrder creates an order for clientID with one line per entry of
// quantities. It is strictly all-or-nothing: the first line that fails
// (unknown medicine, insufficient stock, storage failure) rolls back the
// whole order, header included, and the returned error identifies the line.
//
// Each line's unit price is read inside the transaction and stored on the
// line as a price-at-purchase snapshot; the order total is the exact sum of
// the captured subtotals.
func (s *OrderService) CreateOrder(ctx context.Context, clientID int64, quantities map[int64]int) (domain.Order, error) {
	if clientID <= 0 {
		return domain.Order{}, fmt.Errorf("%w: client id must be positive", domain.ErrInvalidInput)
	}
	if len(quantities) == 0 {
		return domain.Order{}, fmt.Errorf("%w: order must contain at least one line", domain.ErrInvalidInput)
	}

	medicineIDs := make([]int64, 0, len(quantities))
	for medicineID, quantity := range quantities {
		if medicineID <= 0 || quantity <= 0 {
			return domain.Order{}, &LineError{
				MedicineID: medicineID,
				Quantity:   quantity,
				Err:        fmt.Errorf("%w: medicine id and quantity must be positive", domain.ErrInvalidInput),
			}
		}
		medicineIDs = append(medicineIDs, medicineID)
	}
	// Map iteration order is randomized; process lines in ascending medicine
	// id so aborts and logs are deterministic.
	sort.Slice(medicineIDs, func(i, j int) bool { return medicineIDs[i] < medicineIDs[j] })

	tx, err := s.orders.Begin(ctx)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin order transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	orderDate := time.Now()
	orderID, err := tx.InsertOrderHeader(ctx, clientID, orderDate)
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order header: %w", err)
	}

	total := decimal.Zero
	for _, medicineID := range medicineIDs {
		quantity := quantities[medicineID]

		unitPrice, err := tx.MedicineUnitPrice(ctx, medicineID)
		if err != nil {
			s.abortLog(orderID, medicineID, quantity, err)
			return domain.Order{}, &LineError{MedicineID: medicineID, Quantity: quantity, Err: err}
		}

		line := domain.OrderLine{
			OrderID:    orderID,
			MedicineID: medicineID,
			Quantity:   quantity,
			UnitPrice:  unitPrice,
		}
		if err := tx.InsertOrderLine(ctx, line); err != nil {
			s.abortLog(orderID, medicineID, quantity, err)
			return domain.Order{}, &LineError{MedicineID: medicineID, Quantity: quantity, Err: err}
		}
		if err := tx.DecrementStock(ctx, medicineID, quantity); err != nil {
			s.abortLog(orderID, medicineID, quantity, err)
			return domain.Order{}, &LineError{MedicineID: medicineID, Quantity: quantity, Err: err}
		}

		total = total.Add(line.Subtotal())
		s.log.WithFields(logrus.Fields{
			"order_id":    orderID,
			"medicine_id": medicineID,
			"quantity":    quantity,
			"subtotal":    line.Subtotal().String(),
		}).Debug("order line added")
	}

	if err := tx.UpdateOrderTotal(ctx, orderID, total); err != nil {
		return domain.Order{}, fmt.Errorf("update order total: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("commit order: %w", err)
	}
	committed = true

	s.log.WithFields(logrus.Fields{
		"order_id":  orderID,
		"client_id": clientID,
		"lines":     len(medicineIDs),
		"total":     total.String(),
	}).Info("order committed")

	return domain.Order{ID: orderID, ClientID: clientID, OrderDate: orderDate, TotalPrice: total}, nil
}

func (s *OrderService) abortLog(orderID, medicineID int64, quantity int, err error) {
	s.log.WithFields(logrus.Fields{
		"order_id":    orderID,
		"medicine_id": medicineID,
		"quantity":    quantity,
	}).WithError(err).Warn("order aborted, rolling back")
}
