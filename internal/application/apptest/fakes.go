// Package apptest provee repositorios en memoria y un TxRunner con semántica de
// rollback para probar los motores de movimiento sin PostgreSQL.
package apptest

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/soditex/almacen-api/internal/domain/entity"
	"github.com/soditex/almacen-api/internal/domain/repository"
)

// Store estado compartido de los repos fake. El mutex protege los mapas: los
// tests concurrentes golpean los casos de uso desde varias goroutines.
type Store struct {
	mu            sync.Mutex
	Products      map[string]*entity.Product
	Locations     map[string]*entity.Location
	Stock         map[string]*entity.StockEntry // key: productID|locationID
	Manifests     map[string]*entity.TransferManifest
	ManifestItems map[string][]*entity.ManifestItem
	Invoices      map[string]*entity.Invoice
	InvoiceItems  map[string][]*entity.InvoiceItem
	QualityChecks map[string]*entity.QualityCheckRecord // key: productID
}

// NewStore crea un estado vacío.
func NewStore() *Store {
	return &Store{
		Products:      make(map[string]*entity.Product),
		Locations:     make(map[string]*entity.Location),
		Stock:         make(map[string]*entity.StockEntry),
		Manifests:     make(map[string]*entity.TransferManifest),
		ManifestItems: make(map[string][]*entity.ManifestItem),
		Invoices:      make(map[string]*entity.Invoice),
		InvoiceItems:  make(map[string][]*entity.InvoiceItem),
		QualityChecks: make(map[string]*entity.QualityCheckRecord),
	}
}

func stockKey(productID, locationID string) string {
	return productID + "|" + locationID
}

// StockQty retorna la cantidad actual para (producto, ubicación), cero si no hay fila.
func (s *Store) StockQty(productID, locationID string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.Stock[stockKey(productID, locationID)]; ok {
		return e.Quantity
	}
	return decimal.Zero
}

// StockEntry retorna una copia de la entrada almacenada, o nil.
func (s *Store) StockEntry(productID, locationID string) *entity.StockEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.Stock[stockKey(productID, locationID)]
	if !ok {
		return nil
	}
	cp := *e
	return &cp
}

// snapshot copia profunda del estado, para restaurar en rollback.
func (s *Store) snapshot() *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := NewStore()
	for k, v := range s.Products {
		cp := *v
		c.Products[k] = &cp
	}
	for k, v := range s.Locations {
		cp := *v
		c.Locations[k] = &cp
	}
	for k, v := range s.Stock {
		cp := *v
		c.Stock[k] = &cp
	}
	for k, v := range s.Manifests {
		cp := *v
		c.Manifests[k] = &cp
	}
	for k, v := range s.ManifestItems {
		items := make([]*entity.ManifestItem, 0, len(v))
		for _, it := range v {
			cp := *it
			items = append(items, &cp)
		}
		c.ManifestItems[k] = items
	}
	for k, v := range s.Invoices {
		cp := *v
		c.Invoices[k] = &cp
	}
	for k, v := range s.InvoiceItems {
		items := make([]*entity.InvoiceItem, 0, len(v))
		for _, it := range v {
			cp := *it
			items = append(items, &cp)
		}
		c.InvoiceItems[k] = items
	}
	for k, v := range s.QualityChecks {
		cp := *v
		c.QualityChecks[k] = &cp
	}
	return c
}

func (s *Store) restore(from *Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Products = from.Products
	s.Locations = from.Locations
	s.Stock = from.Stock
	s.Manifests = from.Manifests
	s.Invoices = from.Invoices
	s.ManifestItems = from.ManifestItems
	s.InvoiceItems = from.InvoiceItems
	s.QualityChecks = from.QualityChecks
}

// TxRunner fake: ejecuta el callback sobre el estado vivo y restaura el
// snapshot si retorna error (mismo contrato todo-o-nada que la tx real).
// Las transacciones corren de a una: txMu cumple aquí el papel de los
// SELECT FOR UPDATE del adaptador real, de modo que dos goroutines que
// disparan el mismo movimiento serializan y la segunda lee lo committeado.
type TxRunner struct {
	Store *Store
	txMu  sync.Mutex
}

// NewTxRunner construye el runner sobre el estado dado.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{Store: store}
}

func (r *TxRunner) run(fn func() error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	snap := r.Store.snapshot()
	if err := fn(); err != nil {
		r.Store.restore(snap)
		return err
	}
	return nil
}

// Run implementa ledger.TxRunner.
func (r *TxRunner) Run(ctx context.Context, fn func(stockRepo repository.StockRepository) error) error {
	return r.run(func() error { return fn(NewStockRepo(r.Store)) })
}

// RunIntake implementa intake.TxRunner.
func (r *TxRunner) RunIntake(ctx context.Context, fn func(
	qcRepo repository.QualityCheckRepository,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
) error) error {
	return r.run(func() error {
		return fn(NewQualityCheckRepo(r.Store), NewProductRepo(r.Store), NewStockRepo(r.Store))
	})
}

// RunTransfer implementa transfer.TxRunner.
func (r *TxRunner) RunTransfer(ctx context.Context, fn func(
	manifestRepo repository.ManifestRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
) error) error {
	return r.run(func() error {
		return fn(NewManifestRepo(r.Store), NewStockRepo(r.Store), NewProductRepo(r.Store))
	})
}

// RunIssuance implementa issuance.TxRunner.
func (r *TxRunner) RunIssuance(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	stockRepo repository.StockRepository,
) error) error {
	return r.run(func() error {
		return fn(NewInvoiceRepo(r.Store), NewStockRepo(r.Store))
	})
}

// ── Stock ────────────────────────────────────────────────────────────────────

// StockRepo fake en memoria.
type StockRepo struct{ s *Store }

var _ repository.StockRepository = (*StockRepo)(nil)

func NewStockRepo(s *Store) *StockRepo { return &StockRepo{s: s} }

func (r *StockRepo) Get(productID, locationID string) (*entity.StockEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.Stock[stockKey(productID, locationID)]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

// GetForUpdate materializa la entrada en cero si no existe, igual que el
// adaptador real: la primera escritura del par también pasa por la fila.
func (r *StockRepo) GetForUpdate(productID, locationID string) (*entity.StockEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.Stock[stockKey(productID, locationID)]
	if !ok {
		seeded := &entity.StockEntry{
			ProductID:  productID,
			LocationID: locationID,
			Quantity:   decimal.Zero,
			CreatedAt:  time.Now(),
		}
		r.s.Stock[stockKey(productID, locationID)] = seeded
		e = seeded
	}
	cp := *e
	return &cp, nil
}

func (r *StockRepo) Upsert(entry *entity.StockEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *entry
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.s.Stock[stockKey(entry.ProductID, entry.LocationID)] = &cp
	return nil
}

// ── Product ──────────────────────────────────────────────────────────────────

// ProductRepo fake en memoria.
type ProductRepo struct{ s *Store }

var _ repository.ProductRepository = (*ProductRepo)(nil)

func NewProductRepo(s *Store) *ProductRepo { return &ProductRepo{s: s} }

func (r *ProductRepo) Create(product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *product
	r.s.Products[product.ID] = &cp
	return nil
}

func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.Products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *ProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}

func (r *ProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.Products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) UpdatePricing(productID string, price decimal.Decimal, currency string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.Products[productID]; ok {
		p.UnitPrice = price
		p.Currency = currency
		p.UpdatedAt = time.Now()
	}
	return nil
}

func (r *ProductRepo) UpdateAvailability(productID string, available decimal.Decimal, inspectionStatus string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.Products[productID]; ok {
		p.AvailableQuantity = available
		p.InspectionStatus = inspectionStatus
		p.UpdatedAt = time.Now()
	}
	return nil
}

// ── Location ─────────────────────────────────────────────────────────────────

// LocationRepo fake en memoria.
type LocationRepo struct{ s *Store }

var _ repository.LocationRepository = (*LocationRepo)(nil)

func NewLocationRepo(s *Store) *LocationRepo { return &LocationRepo{s: s} }

func (r *LocationRepo) Create(location *entity.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *location
	r.s.Locations[location.ID] = &cp
	return nil
}

func (r *LocationRepo) GetByID(id string) (*entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.Locations[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *LocationRepo) ListByRole(role string) ([]*entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Location
	for _, l := range r.s.Locations {
		if l.Role == role {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ── Manifest ─────────────────────────────────────────────────────────────────

// ManifestRepo fake en memoria.
type ManifestRepo struct{ s *Store }

var _ repository.ManifestRepository = (*ManifestRepo)(nil)

func NewManifestRepo(s *Store) *ManifestRepo { return &ManifestRepo{s: s} }

func copyManifestItems(items []*entity.ManifestItem) []*entity.ManifestItem {
	out := make([]*entity.ManifestItem, 0, len(items))
	for _, it := range items {
		cp := *it
		out = append(out, &cp)
	}
	return out
}

func (r *ManifestRepo) Create(manifest *entity.TransferManifest, items []*entity.ManifestItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *manifest
	r.s.Manifests[manifest.ID] = &cp
	r.s.ManifestItems[manifest.ID] = copyManifestItems(items)
	return nil
}

func (r *ManifestRepo) GetByID(id string) (*entity.TransferManifest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.Manifests[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *ManifestRepo) GetForUpdate(id string) (*entity.TransferManifest, error) {
	return r.GetByID(id)
}

func (r *ManifestRepo) GetItems(manifestID string) ([]*entity.ManifestItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyManifestItems(r.s.ManifestItems[manifestID]), nil
}

func (r *ManifestRepo) ReplaceItems(manifestID string, items []*entity.ManifestItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.ManifestItems[manifestID] = copyManifestItems(items)
	return nil
}

func (r *ManifestRepo) Update(manifest *entity.TransferManifest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *manifest
	r.s.Manifests[manifest.ID] = &cp
	return nil
}

func (r *ManifestRepo) Delete(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.Manifests, id)
	delete(r.s.ManifestItems, id)
	return nil
}

// ── Invoice ──────────────────────────────────────────────────────────────────

// InvoiceRepo fake en memoria.
type InvoiceRepo struct{ s *Store }

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

func NewInvoiceRepo(s *Store) *InvoiceRepo { return &InvoiceRepo{s: s} }

func copyInvoiceItems(items []*entity.InvoiceItem) []*entity.InvoiceItem {
	out := make([]*entity.InvoiceItem, 0, len(items))
	for _, it := range items {
		cp := *it
		out = append(out, &cp)
	}
	return out
}

func (r *InvoiceRepo) Create(invoice *entity.Invoice, items []*entity.InvoiceItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *invoice
	r.s.Invoices[invoice.ID] = &cp
	r.s.InvoiceItems[invoice.ID] = copyInvoiceItems(items)
	return nil
}

func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.Invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *InvoiceRepo) GetItems(invoiceID string) ([]*entity.InvoiceItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyInvoiceItems(r.s.InvoiceItems[invoiceID]), nil
}

func (r *InvoiceRepo) Update(invoice *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *invoice
	r.s.Invoices[invoice.ID] = &cp
	return nil
}

func (r *InvoiceRepo) ReplaceItems(invoiceID string, items []*entity.InvoiceItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.InvoiceItems[invoiceID] = copyInvoiceItems(items)
	return nil
}

func (r *InvoiceRepo) Delete(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.Invoices, id)
	delete(r.s.InvoiceItems, id)
	return nil
}

// ── Quality check ────────────────────────────────────────────────────────────

// QualityCheckRepo fake en memoria.
type QualityCheckRepo struct{ s *Store }

var _ repository.QualityCheckRepository = (*QualityCheckRepo)(nil)

func NewQualityCheckRepo(s *Store) *QualityCheckRepo { return &QualityCheckRepo{s: s} }

func (r *QualityCheckRepo) GetByProduct(productID string) (*entity.QualityCheckRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.QualityChecks[productID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *QualityCheckRepo) Upsert(record *entity.QualityCheckRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *record
	r.s.QualityChecks[record.ProductID] = &cp
	return nil
}
