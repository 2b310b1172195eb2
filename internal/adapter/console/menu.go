package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/pharmacy/internal/core/domain"
	"github.com/rl1809/pharmacy/internal/core/service"
	"github.com/rl1809/pharmacy/internal/port"
)

// Menu drives the interactive numbered menu. It owns input parsing and
// output formatting only; every operation is delegated to a repository or
// to the order service.
type Menu struct {
	scanner   *bufio.Scanner
	eof       bool
	out       io.Writer
	clients   port.ClientRepository
	medicines port.MedicineRepository
	suppliers port.SupplierRepository
	orders    port.OrderRepository
	orderSvc  *service.OrderService
	log       logrus.FieldLogger
}

func NewMenu(
	in io.Reader,
	out io.Writer,
	clients port.ClientRepository,
	medicines port.MedicineRepository,
	suppliers port.SupplierRepository,
	orders port.OrderRepository,
	orderSvc *service.OrderService,
	log logrus.FieldLogger,
) *Menu {
	return &Menu{
		scanner:   bufio.NewScanner(in),
		out:       out,
		clients:   clients,
		medicines: medicines,
		suppliers: suppliers,
		orders:    orders,
		orderSvc:  orderSvc,
		log:       log,
	}
}

// Run loops until the operator exits, input ends, or ctx is cancelled.
func (m *Menu) Run(ctx context.Context) error {
	m.printf("--- PHARMACY DB MANAGEMENT SYSTEM ---\n")

	for ctx.Err() == nil {
		m.printMenu()
		choice, ok := m.readInt64("Select operation (1-19): ")
		if !ok {
			if err := m.scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			if m.eof {
				return nil
			}
			continue
		}

		switch choice {
		case 1:
			m.addClient(ctx)
		case 2:
			m.updateClientAddress(ctx)
		case 3:
			m.deleteClient(ctx)
		case 4:
			m.listClients(ctx)
		case 5:
			m.createOrder(ctx)
		case 6:
			m.deleteOrder(ctx)
		case 7:
			m.ordersByClient(ctx)
		case 8:
			m.orderLines(ctx)
		case 9:
			m.orderSummaries(ctx)
		case 10:
			m.addMedicine(ctx)
		case 11:
			m.deleteMedicine(ctx)
		case 12:
			m.listMedicines(ctx)
		case 13:
			m.addSupplier(ctx)
		case 14:
			m.deleteSupplier(ctx)
		case 15:
			m.linkSupplierMedicine(ctx)
		case 16:
			m.supplierMedicines(ctx)
		case 17:
			m.listSuppliers(ctx)
		case 19:
			m.printf("Exiting application. Goodbye.\n")
			return nil
		default:
			m.printf("Invalid choice. Please select a number between 1 and 19.\n")
		}
	}
	return ctx.Err()
}

func (m *Menu) printMenu() {
	m.printf("\n-------------------------------------------\n")
	m.printf("--- CLIENTS & ORDERS ---\n")
	m.printf("1. Add New Client\n")
	m.printf("2. Update Client Address\n")
	m.printf("3. Delete Client\n")
	m.printf("4. View All Clients\n")
	m.printf("5. Create New Order (Transaction)\n")
	m.printf("6. Delete Order\n")
	m.printf("7. View Orders by Client ID\n")
	m.printf("8. View Order Items by Order ID\n")
	m.printf("9. View All Orders (Detailed Summary)\n")
	m.printf("--- MEDICINES ---\n")
	m.printf("10. Add New Medicine\n")
	m.printf("11. Delete Medicine by ID\n")
	m.printf("12. View All Medicines\n")
	m.printf("--- SUPPLIERS & LINKS ---\n")
	m.printf("13. Add New Supplier\n")
	m.printf("14. Delete Supplier by ID\n")
	m.printf("15. Add/Update Medicine Link to Supplier\n")
	m.printf("16. View Medicines by Supplier ID\n")
	m.printf("17. View All Suppliers\n")
	m.printf("19. Exit\n")
	m.printf("-------------------------------------------\n")
}

// --- clients & orders ---

func (m *Menu) addClient(ctx context.Context) {
	firstName := m.readLine("First name: ")
	lastName := m.readLine("Last name: ")
	address, ok := m.readAddress()
	if !ok {
		return
	}

	client, err := domain.NewClient(firstName, lastName, address)
	if err != nil {
		m.printError(err)
		return
	}
	id, err := m.clients.CreateClient(ctx, client)
	if err != nil {
		m.printError(err)
		return
	}
	m.printf("Client %s %s added with ID %d.\n", client.FirstName, client.LastName, id)
}

func (m *Menu) updateClientAddress(ctx context.Context) {
	clientID, ok := m.readInt64("Client ID: ")
	if !ok {
		return
	}
	address, ok := m.readAddress()
	if !ok {
		return
	}
	if err := m.clients.UpdateClientAddress(ctx, clientID, address); err != nil {
		m.printError(err)
		return
	}
	m.printf("Address updated for client %d.\n", clientID)
}

func (m *Menu) deleteClient(ctx context.Context) {
	clientID, ok := m.readInt64("Client ID: ")
	if !ok {
		return
	}
	if err := m.clients.DeleteClient(ctx, clientID); err != nil {
		m.printError(err)
		return
	}
	m.printf("Client %d deleted.\n", clientID)
}

func (m *Menu) listClients(ctx context.Context) {
	clients, err := m.clients.ListClients(ctx)
	if err != nil {
		m.printError(err)
		return
	}
	if len(clients) == 0 {
		m.printf("No clients found.\n")
		return
	}
	for _, c := range clients {
		m.printf("  [%d] %s %s — %s, %s, %s %s\n",
			c.ID, c.FirstName, c.LastName,
			c.Address.Street, c.Address.City, c.Address.PostalCode, c.Address.Country)
	}
}

func (m *Menu) createOrder(ctx context.Context) {
	// Show what can be ordered before prompting.
	m.printf("Clients:\n")
	m.listClients(ctx)
	m.printf("Medicines:\n")
	m.listMedicines(ctx)

	clientID, ok := m.readInt64("Client ID: ")
	if !ok {
		return
	}
	quantities, ok := m.readOrderItems()
	if !ok {
		return
	}

	order, err := m.orderSvc.CreateOrder(ctx, clientID, quantities)
	if err != nil {
		m.printf("Order was NOT created.\n")
		m.printError(err)
		return
	}
	m.printf("Order %d created for client %d. Total: %s\n", order.ID, order.ClientID, order.TotalPrice.StringFixed(2))
}

// readOrderItems prompts for medicine id / quantity pairs until the
// operator enters 0. Repeated entries for the same medicine merge by
// summation.
func (m *Menu) readOrderItems() (map[int64]int, bool) {
	quantities := make(map[int64]int)
	for {
		medicineID, ok := m.readInt64("Medicine ID (0 to finish): ")
		if !ok {
			return nil, false
		}
		if medicineID == 0 {
			return quantities, true
		}
		quantity, ok := m.readInt64("Quantity: ")
		if !ok {
			return nil, false
		}
		quantities[medicineID] += int(quantity)
	}
}

func (m *Menu) deleteOrder(ctx context.Context) {
	orderID, ok := m.readInt64("Order ID: ")
	if !ok {
		return
	}
	if err := m.orders.DeleteOrder(ctx, orderID); err != nil {
		m.printError(err)
		return
	}
	m.printf("Order %d deleted. Stock was not restored.\n", orderID)
}

func (m *Menu) ordersByClient(ctx context.Context) {
	clientID, ok := m.readInt64("Client ID: ")
	if !ok {
		return
	}
	orders, err := m.orders.ListOrdersByClient(ctx, clientID)
	if err != nil {
		m.printError(err)
		return
	}
	if len(orders) == 0 {
		m.printf("No orders found for client %d.\n", clientID)
		return
	}
	for _, o := range orders {
		m.printf("  [%d] %s — total %s\n", o.ID, o.OrderDate.Format("2006-01-02"), o.TotalPrice.StringFixed(2))
	}
}

func (m *Menu) orderLines(ctx context.Context) {
	orderID, ok := m.readInt64("Order ID: ")
	if !ok {
		return
	}
	lines, err := m.orders.ListOrderLines(ctx, orderID)
	if err != nil {
		m.printError(err)
		return
	}
	if len(lines) == 0 {
		m.printf("No items found for order %d.\n", orderID)
		return
	}
	for _, l := range lines {
		m.printf("  medicine %d × %d @ %s = %s\n",
			l.MedicineID, l.Quantity, l.UnitPrice.StringFixed(2), l.Subtotal().StringFixed(2))
	}
}

func (m *Menu) orderSummaries(ctx context.Context) {
	summaries, err := m.orders.ListOrderSummaries(ctx)
	if err != nil {
		m.printError(err)
		return
	}
	if len(summaries) == 0 {
		m.printf("No orders found.\n")
		return
	}
	for _, sm := range summaries {
		m.printf("  [%d] %s — %s %s, %d items, total %s\n",
			sm.OrderID, sm.OrderDate.Format("2006-01-02"),
			sm.ClientFirstName, sm.ClientLastName, sm.TotalItemsCount, sm.TotalPrice.StringFixed(2))
	}
}

// --- medicines ---

func (m *Menu) addMedicine(ctx context.Context) {
	name := m.readLine("Medicine name: ")
	price, ok := m.readDecimal("Unit price: ")
	if !ok {
		return
	}
	stock, ok := m.readInt64("Initial stock: ")
	if !ok {
		return
	}

	medicine, err := domain.NewMedicine(name, price, int(stock))
	if err != nil {
		m.printError(err)
		return
	}
	id, err := m.medicines.CreateMedicine(ctx, medicine)
	if err != nil {
		m.printError(err)
		return
	}
	m.printf("Medicine %q added with ID %d.\n", medicine.Name, id)
}

func (m *Menu) deleteMedicine(ctx context.Context) {
	medicineID, ok := m.readInt64("Medicine ID: ")
	if !ok {
		return
	}
	if err := m.medicines.DeleteMedicine(ctx, medicineID); err != nil {
		m.printError(err)
		return
	}
	m.printf("Medicine %d deleted.\n", medicineID)
}

func (m *Menu) listMedicines(ctx context.Context) {
	medicines, err := m.medicines.ListMedicines(ctx)
	if err != nil {
		m.printError(err)
		return
	}
	if len(medicines) == 0 {
		m.printf("No medicines found.\n")
		return
	}
	for _, med := range medicines {
		m.printf("  [%d] %s — %s, stock %d\n", med.ID, med.Name, med.UnitPrice.StringFixed(2), med.Stock)
	}
}

// --- suppliers ---

func (m *Menu) addSupplier(ctx context.Context) {
	name := m.readLine("Supplier name: ")
	address, ok := m.readAddress()
	if !ok {
		return
	}

	supplier, err := domain.NewSupplier(name, address)
	if err != nil {
		m.printError(err)
		return
	}
	id, err := m.suppliers.CreateSupplier(ctx, supplier)
	if err != nil {
		m.printError(err)
		return
	}
	m.printf("Supplier %q added with ID %d.\n", supplier.Name, id)
}

func (m *Menu) deleteSupplier(ctx context.Context) {
	supplierID, ok := m.readInt64("Supplier ID: ")
	if !ok {
		return
	}
	if err := m.suppliers.DeleteSupplier(ctx, supplierID); err != nil {
		m.printError(err)
		return
	}
	m.printf("Supplier %d deleted.\n", supplierID)
}

func (m *Menu) linkSupplierMedicine(ctx context.Context) {
	supplierID, ok := m.readInt64("Supplier ID: ")
	if !ok {
		return
	}
	medicineID, ok := m.readInt64("Medicine ID: ")
	if !ok {
		return
	}
	price, ok := m.readDecimal("Supply price: ")
	if !ok {
		return
	}

	link, err := domain.NewSupplierMedicine(supplierID, medicineID, price)
	if err != nil {
		m.printError(err)
		return
	}
	if err := m.suppliers.UpsertSupplierMedicine(ctx, link); err != nil {
		m.printError(err)
		return
	}
	m.printf("Supplier %d now supplies medicine %d at %s.\n", supplierID, medicineID, price.StringFixed(2))
}

func (m *Menu) supplierMedicines(ctx context.Context) {
	supplierID, ok := m.readInt64("Supplier ID: ")
	if !ok {
		return
	}
	links, err := m.suppliers.ListSupplierMedicines(ctx, supplierID)
	if err != nil {
		m.printError(err)
		return
	}
	if len(links) == 0 {
		m.printf("No medicines linked to supplier %d.\n", supplierID)
		return
	}
	for _, l := range links {
		m.printf("  medicine %d at %s\n", l.MedicineID, l.SupplyPrice.StringFixed(2))
	}
}

func (m *Menu) listSuppliers(ctx context.Context) {
	suppliers, err := m.suppliers.ListSuppliers(ctx)
	if err != nil {
		m.printError(err)
		return
	}
	if len(suppliers) == 0 {
		m.printf("No suppliers found.\n")
		return
	}
	for _, sp := range suppliers {
		m.printf("  [%d] %s — %s, %s\n", sp.ID, sp.Name, sp.Address.City, sp.Address.Country)
	}
}

// --- input helpers ---

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}

func (m *Menu) readLine(prompt string) string {
	m.printf("%s", prompt)
	if !m.scanner.Scan() {
		m.eof = true
		return ""
	}
	return strings.TrimSpace(m.scanner.Text())
}

func (m *Menu) readInt64(prompt string) (int64, bool) {
	text := m.readLine(prompt)
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		if text != "" {
			m.printf("Invalid input. Please enter a valid number.\n")
		}
		return 0, false
	}
	return v, true
}

func (m *Menu) readDecimal(prompt string) (decimal.Decimal, bool) {
	text := m.readLine(prompt)
	v, err := decimal.NewFromString(text)
	if err != nil {
		m.printf("Invalid input. Please enter a valid price.\n")
		return decimal.Zero, false
	}
	return v, true
}

func (m *Menu) readAddress() (domain.Address, bool) {
	country := m.readLine("Country: ")
	city := m.readLine("City: ")
	street := m.readLine("Street: ")
	postalCode := m.readLine("Postal code: ")

	address, err := domain.NewAddress(country, city, street, postalCode)
	if err != nil {
		m.printError(err)
		return domain.Address{}, false
	}
	return address, true
}

// printError maps domain error kinds to operator-facing messages. Storage
// failures are logged with full detail and reported generically.
func (m *Menu) printError(err error) {
	var lineErr *service.LineError
	if errors.As(err, &lineErr) {
		m.printf("Failed on medicine %d (quantity %d): %s\n", lineErr.MedicineID, lineErr.Quantity, reason(lineErr.Err))
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInsufficientStock):
		m.printf("Error: %s\n", reason(err))
	default:
		m.log.WithError(err).Error("operation failed")
		m.printf("Error: the operation failed, see logs for details.\n")
	}
}

func reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient stock"
	case errors.Is(err, domain.ErrNotFound):
		return "not found"
	case errors.Is(err, domain.ErrConflict):
		return "rejected by an integrity constraint (check referencing records)"
	default:
		return err.Error()
	}
}
