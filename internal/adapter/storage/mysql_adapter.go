package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/pharmacy/internal/core/domain"
)

// MySQLStore implements every repository port over one *sql.DB. Each
// operation outside an order transaction is a single parameterized
// statement.
type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// mapMySQLError translates driver error numbers into domain error kinds so
// callers never inspect SQL state. 1062 is a duplicate key; 1451/1452 are
// the two directions of a foreign key violation.
func mapMySQLError(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1062, 1451, 1452:
			return fmt.Errorf("%w: %s", domain.ErrConflict, mysqlErr.Message)
		}
	}
	return err
}

// --- clients ---

func (s *MySQLStore) CreateClient(ctx context.Context, client domain.Client) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO client (first_name, last_name, country, city, street, postal_code)
		VALUES (?, ?, ?, ?, ?, ?)`,
		client.FirstName, client.LastName,
		client.Address.Country, client.Address.City, client.Address.Street, client.Address.PostalCode,
	)
	if err != nil {
		return 0, fmt.Errorf("insert client: %w", mapMySQLError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("client id: %w", err)
	}
	return id, nil
}

func (s *MySQLStore) UpdateClientAddress(ctx context.Context, clientID int64, address domain.Address) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE client
		SET country = ?, city = ?, street = ?, postal_code = ?
		WHERE client_id = ?`,
		address.Country, address.City, address.Street, address.PostalCode, clientID,
	)
	if err != nil {
		return fmt.Errorf("update client address: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("client %d: %w", clientID, domain.ErrNotFound)
	}
	return nil
}

func (s *MySQLStore) DeleteClient(ctx context.Context, clientID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM client WHERE client_id = ?`, clientID)
	if err != nil {
		return fmt.Errorf("delete client: %w", mapMySQLError(err))
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("client %d: %w", clientID, domain.ErrNotFound)
	}
	return nil
}

func (s *MySQLStore) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT client_id, first_name, last_name, country, city, street, postal_code
		FROM client
		ORDER BY last_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName,
			&c.Address.Country, &c.Address.City, &c.Address.Street, &c.Address.PostalCode); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// --- medicines ---

func (s *MySQLStore) CreateMedicine(ctx context.Context, medicine domain.Medicine) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO medicine (name, unit_price, stock) VALUES (?, ?, ?)`,
		medicine.Name, medicine.UnitPrice, medicine.Stock,
	)
	if err != nil {
		return 0, fmt.Errorf("insert medicine: %w", mapMySQLError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("medicine id: %w", err)
	}
	return id, nil
}

func (s *MySQLStore) GetMedicine(ctx context.Context, medicineID int64) (domain.Medicine, error) {
	var m domain.Medicine
	err := s.db.QueryRowContext(ctx, `
		SELECT medicine_id, name, unit_price, stock FROM medicine WHERE medicine_id = ?`,
		medicineID,
	).Scan(&m.ID, &m.Name, &m.UnitPrice, &m.Stock)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Medicine{}, fmt.Errorf("medicine %d: %w", medicineID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("query medicine: %w", err)
	}
	return m, nil
}

func (s *MySQLStore) DeleteMedicine(ctx context.Context, medicineID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM medicine WHERE medicine_id = ?`, medicineID)
	if err != nil {
		return fmt.Errorf("delete medicine: %w", mapMySQLError(err))
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("medicine %d: %w", medicineID, domain.ErrNotFound)
	}
	return nil
}

func (s *MySQLStore) ListMedicines(ctx context.Context) ([]domain.Medicine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT medicine_id, name, unit_price, stock FROM medicine ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query medicines: %w", err)
	}
	defer rows.Close()

	var medicines []domain.Medicine
	for rows.Next() {
		var m domain.Medicine
		if err := rows.Scan(&m.ID, &m.Name, &m.UnitPrice, &m.Stock); err != nil {
			return nil, fmt.Errorf("scan medicine: %w", err)
		}
		medicines = append(medicines, m)
	}
	return medicines, rows.Err()
}

// --- suppliers ---

func (s *MySQLStore) CreateSupplier(ctx context.Context, supplier domain.Supplier) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO supplier (name, country, city, street, postal_code)
		VALUES (?, ?, ?, ?, ?)`,
		supplier.Name,
		supplier.Address.Country, supplier.Address.City, supplier.Address.Street, supplier.Address.PostalCode,
	)
	if err != nil {
		return 0, fmt.Errorf("insert supplier: %w", mapMySQLError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("supplier id: %w", err)
	}
	return id, nil
}

func (s *MySQLStore) DeleteSupplier(ctx context.Context, supplierID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM supplier WHERE supplier_id = ?`, supplierID)
	if err != nil {
		return fmt.Errorf("delete supplier: %w", mapMySQLError(err))
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("supplier %d: %w", supplierID, domain.ErrNotFound)
	}
	return nil
}

func (s *MySQLStore) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT supplier_id, name, country, city, street, postal_code
		FROM supplier
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []domain.Supplier
	for rows.Next() {
		var sp domain.Supplier
		if err := rows.Scan(&sp.ID, &sp.Name,
			&sp.Address.Country, &sp.Address.City, &sp.Address.Street, &sp.Address.PostalCode); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		suppliers = append(suppliers, sp)
	}
	return suppliers, rows.Err()
}

func (s *MySQLStore) UpsertSupplierMedicine(ctx context.Context, link domain.SupplierMedicine) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO suppliermedicine (supplier_id, medicine_id, supply_price)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE supply_price = VALUES(supply_price)`,
		link.SupplierID, link.MedicineID, link.SupplyPrice,
	)
	if err != nil {
		return fmt.Errorf("upsert supplier medicine: %w", mapMySQLError(err))
	}
	return nil
}

func (s *MySQLStore) ListSupplierMedicines(ctx context.Context, supplierID int64) ([]domain.SupplierMedicine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT supplier_id, medicine_id, supply_price
		FROM suppliermedicine
		WHERE supplier_id = ?`, supplierID)
	if err != nil {
		return nil, fmt.Errorf("query supplier medicines: %w", err)
	}
	defer rows.Close()

	var links []domain.SupplierMedicine
	for rows.Next() {
		var l domain.SupplierMedicine
		if err := rows.Scan(&l.SupplierID, &l.MedicineID, &l.SupplyPrice); err != nil {
			return nil, fmt.Errorf("scan supplier medicine: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}
