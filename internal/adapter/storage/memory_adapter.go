package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/pharmacy/internal/core/domain"
	"github.com/rl1809/pharmacy/internal/port"
)

// MemoryStore is an in-process implementation of the client, medicine and
// order ports, used by tests and local runs without MySQL. One mutex guards
// the whole store; an open order transaction holds it from Begin until
// Commit or Rollback, so concurrent coordinators serialize exactly like
// they would on the database's row lock.
type MemoryStore struct {
	mu sync.Mutex

	nextClientID   int64
	nextMedicineID int64
	nextOrderID    int64

	clients    map[int64]domain.Client
	medicines  map[int64]domain.Medicine
	orders     map[int64]domain.Order
	orderLines map[int64][]domain.OrderLine
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clients:    make(map[int64]domain.Client),
		medicines:  make(map[int64]domain.Medicine),
		orders:     make(map[int64]domain.Order),
		orderLines: make(map[int64][]domain.OrderLine),
	}
}

// --- clients ---

func (s *MemoryStore) CreateClient(_ context.Context, client domain.Client) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextClientID++
	client.ID = s.nextClientID
	s.clients[client.ID] = client
	return client.ID, nil
}

func (s *MemoryStore) UpdateClientAddress(_ context.Context, clientID int64, address domain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[clientID]
	if !ok {
		return fmt.Errorf("client %d: %w", clientID, domain.ErrNotFound)
	}
	c.Address = address
	s.clients[clientID] = c
	return nil
}

func (s *MemoryStore) DeleteClient(_ context.Context, clientID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[clientID]; !ok {
		return fmt.Errorf("client %d: %w", clientID, domain.ErrNotFound)
	}
	for _, o := range s.orders {
		if o.ClientID == clientID {
			return fmt.Errorf("client %d has orders: %w", clientID, domain.ErrConflict)
		}
	}
	delete(s.clients, clientID)
	return nil
}

func (s *MemoryStore) ListClients(_ context.Context) ([]domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients := make([]domain.Client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].ID < clients[j].ID })
	return clients, nil
}

// --- medicines ---

func (s *MemoryStore) CreateMedicine(_ context.Context, medicine domain.Medicine) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextMedicineID++
	medicine.ID = s.nextMedicineID
	s.medicines[medicine.ID] = medicine
	return medicine.ID, nil
}

func (s *MemoryStore) GetMedicine(_ context.Context, medicineID int64) (domain.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.medicines[medicineID]
	if !ok {
		return domain.Medicine{}, fmt.Errorf("medicine %d: %w", medicineID, domain.ErrNotFound)
	}
	return m, nil
}

func (s *MemoryStore) DeleteMedicine(_ context.Context, medicineID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.medicines[medicineID]; !ok {
		return fmt.Errorf("medicine %d: %w", medicineID, domain.ErrNotFound)
	}
	for _, lines := range s.orderLines {
		for _, l := range lines {
			if l.MedicineID == medicineID {
				return fmt.Errorf("medicine %d is referenced by orders: %w", medicineID, domain.ErrConflict)
			}
		}
	}
	delete(s.medicines, medicineID)
	return nil
}

func (s *MemoryStore) ListMedicines(_ context.Context) ([]domain.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	medicines := make([]domain.Medicine, 0, len(s.medicines))
	for _, m := range s.medicines {
		medicines = append(medicines, m)
	}
	sort.Slice(medicines, func(i, j int) bool { return medicines[i].Name < medicines[j].Name })
	return medicines, nil
}

// --- order transaction ---

// Begin locks the store for the life of the transaction handle. Mutations
// are staged on the handle and only applied on Commit; Rollback discards
// them, header included.
func (s *MemoryStore) Begin(_ context.Context) (port.OrderTx, error) {
	s.mu.Lock()
	return &memoryOrderTx{
		store:      s,
		decrements: make(map[int64]int),
	}, nil
}

type memoryOrderTx struct {
	store      *MemoryStore
	header     *domain.Order
	lines      []domain.OrderLine
	decrements map[int64]int
	done       bool
}

func (t *memoryOrderTx) InsertOrderHeader(_ context.Context, clientID int64, orderDate time.Time) (int64, error) {
	if _, ok := t.store.clients[clientID]; !ok {
		return 0, fmt.Errorf("client %d does not exist: %w", clientID, domain.ErrConflict)
	}
	// Ids are consumed even if the transaction rolls back, same as an
	// auto-increment column.
	t.store.nextOrderID++
	t.header = &domain.Order{
		ID:         t.store.nextOrderID,
		ClientID:   clientID,
		OrderDate:  orderDate,
		TotalPrice: decimal.Zero,
	}
	return t.header.ID, nil
}

func (t *memoryOrderTx) InsertOrderLine(_ context.Context, line domain.OrderLine) error {
	for _, l := range t.lines {
		if l.MedicineID == line.MedicineID {
			return fmt.Errorf("duplicate line for medicine %d: %w", line.MedicineID, domain.ErrConflict)
		}
	}
	t.lines = append(t.lines, line)
	return nil
}

func (t *memoryOrderTx) UpdateOrderTotal(_ context.Context, orderID int64, total decimal.Decimal) error {
	if t.header == nil || t.header.ID != orderID {
		return fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
	}
	t.header.TotalPrice = total
	return nil
}

func (t *memoryOrderTx) MedicineUnitPrice(_ context.Context, medicineID int64) (decimal.Decimal, error) {
	m, ok := t.store.medicines[medicineID]
	if !ok {
		return decimal.Zero, fmt.Errorf("medicine %d: %w", medicineID, domain.ErrNotFound)
	}
	return m.UnitPrice, nil
}

func (t *memoryOrderTx) DecrementStock(_ context.Context, medicineID int64, quantity int) error {
	m, ok := t.store.medicines[medicineID]
	if !ok {
		return fmt.Errorf("medicine %d: %w", medicineID, domain.ErrInsufficientStock)
	}
	available := m.Stock - t.decrements[medicineID]
	if quantity > available {
		return fmt.Errorf("medicine %d, quantity %d: %w", medicineID, quantity, domain.ErrInsufficientStock)
	}
	t.decrements[medicineID] += quantity
	return nil
}

func (t *memoryOrderTx) Commit() error {
	if t.done {
		return fmt.Errorf("transaction already closed")
	}
	t.done = true

	if t.header != nil {
		t.store.orders[t.header.ID] = *t.header
		t.store.orderLines[t.header.ID] = append([]domain.OrderLine(nil), t.lines...)
	}
	for medicineID, quantity := range t.decrements {
		m := t.store.medicines[medicineID]
		m.Stock -= quantity
		t.store.medicines[medicineID] = m
	}

	t.store.mu.Unlock()
	return nil
}

func (t *memoryOrderTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

// --- order queries ---

func (s *MemoryStore) GetOrder(_ context.Context, orderID int64) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return domain.Order{}, fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
	}
	return o, nil
}

func (s *MemoryStore) ListOrdersByClient(_ context.Context, clientID int64) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var orders []domain.Order
	for _, o := range s.orders {
		if o.ClientID == clientID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].OrderDate.Equal(orders[j].OrderDate) {
			return orders[i].OrderDate.After(orders[j].OrderDate)
		}
		return orders[i].ID > orders[j].ID
	})
	return orders, nil
}

func (s *MemoryStore) ListOrderLines(_ context.Context, orderID int64) ([]domain.OrderLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.orderLines[orderID]
	out := append([]domain.OrderLine(nil), lines...)
	sort.Slice(out, func(i, j int) bool { return out[i].MedicineID < out[j].MedicineID })
	return out, nil
}

func (s *MemoryStore) ListOrderSummaries(_ context.Context) ([]domain.OrderSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := make([]domain.OrderSummary, 0, len(s.orders))
	for _, o := range s.orders {
		var itemCount int64
		for _, l := range s.orderLines[o.ID] {
			itemCount += int64(l.Quantity)
		}
		c := s.clients[o.ClientID]
		summaries = append(summaries, domain.OrderSummary{
			OrderID:         o.ID,
			OrderDate:       o.OrderDate,
			ClientFirstName: c.FirstName,
			ClientLastName:  c.LastName,
			TotalPrice:      o.TotalPrice,
			TotalItemsCount: itemCount,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].OrderDate.After(summaries[j].OrderDate) })
	return summaries, nil
}

func (s *MemoryStore) DeleteOrder(_ context.Context, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[orderID]; !ok {
		return fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
	}
	// Lines are removed with the header; stock is not restored.
	delete(s.orders, orderID)
	delete(s.orderLines, orderID)
	return nil
}
