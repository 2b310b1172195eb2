package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/pharmacy/internal/core/domain"
	"github.com/rl1809/pharmacy/internal/port"
)

// Begin opens the order-creation transaction. The caller owns commit and
// rollback; nothing written through the returned handle is visible to other
// connections until Commit.
func (s *MySQLStore) Begin(ctx context.Context) (port.OrderTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &mysqlOrderTx{tx: tx}, nil
}

type mysqlOrderTx struct {
	tx *sql.Tx
}

func (t *mysqlOrderTx) InsertOrderHeader(ctx context.Context, clientID int64, orderDate time.Time) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO `+"`order`"+` (client_id, order_date, total_price)
		VALUES (?, ?, 0.00)`,
		clientID, orderDate,
	)
	if err != nil {
		return 0, fmt.Errorf("insert order header: %w", mapMySQLError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("order id: %w", err)
	}
	return id, nil
}

func (t *mysqlOrderTx) InsertOrderLine(ctx context.Context, line domain.OrderLine) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO orderitem (order_id, medicine_id, quantity, unit_price)
		VALUES (?, ?, ?, ?)`,
		line.OrderID, line.MedicineID, line.Quantity, line.UnitPrice,
	)
	if err != nil {
		return fmt.Errorf("insert order line: %w", mapMySQLError(err))
	}
	return nil
}

func (t *mysqlOrderTx) UpdateOrderTotal(ctx context.Context, orderID int64, total decimal.Decimal) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE `+"`order`"+` SET total_price = ? WHERE order_id = ?`,
		total, orderID,
	)
	if err != nil {
		return fmt.Errorf("update order total: %w", err)
	}
	return nil
}

func (t *mysqlOrderTx) MedicineUnitPrice(ctx context.Context, medicineID int64) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := t.tx.QueryRowContext(ctx, `
		SELECT unit_price FROM medicine WHERE medicine_id = ?`, medicineID,
	).Scan(&price)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("medicine %d: %w", medicineID, domain.ErrNotFound)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("query unit price: %w", err)
	}
	return price, nil
}

// DecrementStock is a single conditional update: the stock >= ? predicate
// makes concurrent decrements serialize at the row and keeps stock from
// going negative. The medicine is known to exist because MedicineUnitPrice
// ran earlier in the same transaction, so zero affected rows can only mean
// insufficient stock.
func (t *mysqlOrderTx) DecrementStock(ctx context.Context, medicineID int64, quantity int) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE medicine
		SET stock = stock - ?
		WHERE medicine_id = ? AND stock >= ?`,
		quantity, medicineID, quantity,
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("medicine %d, quantity %d: %w", medicineID, quantity, domain.ErrInsufficientStock)
	}
	return nil
}

func (t *mysqlOrderTx) Commit() error {
	return t.tx.Commit()
}

func (t *mysqlOrderTx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// --- order queries (outside the transaction) ---

func (s *MySQLStore) GetOrder(ctx context.Context, orderID int64) (domain.Order, error) {
	var o domain.Order
	err := s.db.QueryRowContext(ctx, `
		SELECT order_id, client_id, order_date, total_price
		FROM `+"`order`"+` WHERE order_id = ?`, orderID,
	).Scan(&o.ID, &o.ClientID, &o.OrderDate, &o.TotalPrice)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("query order: %w", err)
	}
	return o, nil
}

func (s *MySQLStore) ListOrdersByClient(ctx context.Context, clientID int64) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, client_id, order_date, total_price
		FROM `+"`order`"+`
		WHERE client_id = ?
		ORDER BY order_date DESC, order_id DESC`, clientID)
	if err != nil {
		return nil, fmt.Errorf("query client orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.ClientID, &o.OrderDate, &o.TotalPrice); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *MySQLStore) ListOrderLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, medicine_id, quantity, unit_price
		FROM orderitem
		WHERE order_id = ?
		ORDER BY medicine_id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.OrderID, &l.MedicineID, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *MySQLStore) ListOrderSummaries(ctx context.Context) ([]domain.OrderSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, order_date, client_first_name, client_last_name, total_price, total_items_count
		FROM detailed_order_summary
		ORDER BY order_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("query order summaries: %w", err)
	}
	defer rows.Close()

	var summaries []domain.OrderSummary
	for rows.Next() {
		var sm domain.OrderSummary
		if err := rows.Scan(&sm.OrderID, &sm.OrderDate,
			&sm.ClientFirstName, &sm.ClientLastName, &sm.TotalPrice, &sm.TotalItemsCount); err != nil {
			return nil, fmt.Errorf("scan order summary: %w", err)
		}
		summaries = append(summaries, sm)
	}
	return summaries, rows.Err()
}

// DeleteOrder removes the header; lines go with it through the cascading
// foreign key. Stock is deliberately not restored.
func (s *MySQLStore) DeleteOrder(ctx context.Context, orderID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+"`order`"+` WHERE order_id = ?`, orderID)
	if err != nil {
		return fmt.Errorf("delete order: %w", mapMySQLError(err))
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
	}
	return nil
}
