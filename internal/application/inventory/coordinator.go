package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	policy "github.com/jhoicas/pos-api/internal/domain/inventory"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// StockGuard estrategia de escritura del stock.
type StockGuard string

const (
	// GuardAtomic: decremento condicional (stock >= cantidad) verificado en la misma sentencia que escribe.
	GuardAtomic StockGuard = "atomic"
	// GuardUnguarded: lectura → cálculo → escritura del valor absoluto. Expuesto a pérdida de actualizaciones.
	GuardUnguarded StockGuard = "unguarded"
)

// LedgerMode política entre la escritura de stock y la entrada del libro.
type LedgerMode string

const (
	// LedgerBestEffort: si el libro falla tras escribir stock, no se revierte; solo se registra en log.
	LedgerBestEffort LedgerMode = "best_effort"
	// LedgerTransactional: stock y libro en una transacción; si el libro falla la intención falla.
	LedgerTransactional LedgerMode = "transactional"
)

// Options configuración del coordinador.
type Options struct {
	Guard  StockGuard
	Ledger LedgerMode
}

// Actor usuario que origina el movimiento.
type Actor struct {
	ID   string
	Name string
}

// Intent un cambio de stock pedido con su contexto de negocio.
// Quantity es una magnitud; para adjustment es el stock objetivo.
type Intent struct {
	ProductID string
	Type      string
	Quantity  int
	UnitPrice decimal.Decimal
	Reference string
	Party     *entity.Party
	Actor     *Actor
	Notes     string
}

// Result resultado de una intención aplicada. LedgerRecorded es false si el libro falló en modo best-effort.
type Result struct {
	ProductID      string
	PreviousStock  int
	NewStock       int
	Transition     *entity.StockTransition
	LedgerRecorded bool
}

// IntentError error de una intención concreta dentro de un lote.
type IntentError struct {
	ProductID string
	Err       error
}

func (e *IntentError) Error() string {
	return fmt.Sprintf("producto %s: %v", e.ProductID, e.Err)
}

func (e *IntentError) Unwrap() error { return e.Err }

// Estados de un lote.
const (
	BatchSuccess = "success"
	BatchPartial = "partial"
	BatchFailed  = "failed"
)

// BatchResult éxitos y errores por línea de un lote.
type BatchResult struct {
	Status    string
	Succeeded []Result
	Failed    []IntentError
}

// Fail agrega un error de línea.
func (b *BatchResult) Fail(productID string, err error) {
	b.Failed = append(b.Failed, IntentError{ProductID: productID, Err: err})
}

func (b *BatchResult) finalize() {
	switch {
	case len(b.Failed) == 0:
		b.Status = BatchSuccess
	case len(b.Succeeded) == 0:
		b.Status = BatchFailed
	default:
		b.Status = BatchPartial
	}
}

// Snapshot copia del stock de los productos de un lote, tomada una sola vez al inicio.
type Snapshot struct {
	products map[string]*entity.Product
}

// Product devuelve el producto del snapshot.
func (s *Snapshot) Product(id string) (*entity.Product, bool) {
	p, ok := s.products[id]
	return p, ok
}

// Check valida una intención contra el snapshot sin escribir nada.
func (s *Snapshot) Check(in Intent) error {
	if err := validateIntent(in); err != nil {
		return err
	}
	p, ok := s.products[in.ProductID]
	if !ok {
		return domain.ErrNotFound
	}
	_, err := policy.NextStock(in.Type, in.Quantity, p.Stock)
	return err
}

// Coordinator aplica intenciones de stock: leer → validar → escribir stock → registrar en el libro.
type Coordinator struct {
	tx       TxRunner
	products repository.ProductRepository
	ledger   repository.StockTransitionRepository
	opts     Options
	log      zerolog.Logger
	now      func() time.Time
}

// NewCoordinator construye el coordinador. tx solo es necesario en modo LedgerTransactional;
// sin tx ese modo se registra como advertencia y cae a LedgerBestEffort.
func NewCoordinator(
	tx TxRunner,
	products repository.ProductRepository,
	ledger repository.StockTransitionRepository,
	opts Options,
	log zerolog.Logger,
) *Coordinator {
	if opts.Guard == "" {
		opts.Guard = GuardAtomic
	}
	if opts.Ledger == "" {
		opts.Ledger = LedgerBestEffort
	}
	if opts.Ledger == LedgerTransactional && tx == nil {
		log.Warn().Str("ledger_mode", string(opts.Ledger)).
			Msg("modo de libro transaccional sin TxRunner; se usa best_effort")
		opts.Ledger = LedgerBestEffort
	}
	return &Coordinator{
		tx:       tx,
		products: products,
		ledger:   ledger,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

// Apply aplica una sola intención leyendo el producto actual.
func (c *Coordinator) Apply(ctx context.Context, in Intent) (*Result, error) {
	if err := validateIntent(in); err != nil {
		return nil, err
	}
	product, err := c.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("obtener producto: %w", err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return c.apply(ctx, product, in)
}

// TakeSnapshot lee una vez el stock de los productos indicados.
func (c *Coordinator) TakeSnapshot(ctx context.Context, productIDs []string) (*Snapshot, error) {
	ids := make([]string, 0, len(productIDs))
	seen := make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	products, err := c.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("snapshot de stock: %w", err)
	}
	if products == nil {
		products = map[string]*entity.Product{}
	}
	return &Snapshot{products: products}, nil
}

// ApplyBatch toma un snapshot y aplica cada intención de forma independiente.
func (c *Coordinator) ApplyBatch(ctx context.Context, intents []Intent) (*BatchResult, error) {
	if len(intents) == 0 {
		return nil, domain.ErrInvalidInput
	}
	ids := make([]string, 0, len(intents))
	for _, in := range intents {
		ids = append(ids, in.ProductID)
	}
	snap, err := c.TakeSnapshot(ctx, ids)
	if err != nil {
		return nil, err
	}
	return c.ApplyBatchOn(ctx, snap, intents), nil
}

// ApplyBatchOn aplica las intenciones contra un snapshot ya tomado. Los errores son por línea:
// una línea fallida no aborta las demás.
func (c *Coordinator) ApplyBatchOn(ctx context.Context, snap *Snapshot, intents []Intent) *BatchResult {
	out := &BatchResult{}
	for _, in := range intents {
		if err := validateIntent(in); err != nil {
			out.Fail(in.ProductID, err)
			continue
		}
		product, ok := snap.Product(in.ProductID)
		if !ok {
			out.Fail(in.ProductID, domain.ErrNotFound)
			continue
		}
		res, err := c.apply(ctx, product, in)
		if err != nil {
			out.Fail(in.ProductID, err)
			continue
		}
		// Sin releer: el snapshot avanza con el valor escrito para líneas repetidas del mismo producto.
		product.Stock = res.NewStock
		out.Succeeded = append(out.Succeeded, *res)
	}
	out.finalize()
	return out
}

func (c *Coordinator) apply(ctx context.Context, product *entity.Product, in Intent) (*Result, error) {
	if _, err := policy.NextStock(in.Type, in.Quantity, product.Stock); err != nil {
		return nil, err
	}

	if c.opts.Ledger == LedgerTransactional {
		var res *Result
		err := c.tx.Run(ctx, func(products repository.ProductRepository, ledger repository.StockTransitionRepository) error {
			prev, next, err := c.writeStock(ctx, products, product, in)
			if err != nil {
				return err
			}
			tr := c.newTransition(product, in, prev, next)
			if err := ledger.Append(ctx, tr); err != nil {
				return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
			}
			res = &Result{ProductID: product.ID, PreviousStock: prev, NewStock: next, Transition: tr, LedgerRecorded: true}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return res, nil
	}

	prev, next, err := c.writeStock(ctx, c.products, product, in)
	if err != nil {
		return nil, err
	}
	tr := c.newTransition(product, in, prev, next)
	res := &Result{ProductID: product.ID, PreviousStock: prev, NewStock: next, Transition: tr, LedgerRecorded: true}
	if err := c.ledger.Append(ctx, tr); err != nil {
		// El stock ya quedó escrito: se reporta y la operación sigue siendo exitosa.
		// La entrada no existe en el libro, así que no se expone su ID.
		res.LedgerRecorded = false
		tr.ID = ""
		c.log.Error().
			Err(fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)).
			Str("product_id", product.ID).
			Str("transaction_type", in.Type).
			Str("reference", in.Reference).
			Int("previous_stock", prev).
			Int("new_stock", next).
			Msg("movimiento de stock aplicado sin entrada en el libro")
	}
	return res, nil
}

// writeStock persiste el nuevo stock y devuelve los valores anterior/nuevo usados en la escritura.
func (c *Coordinator) writeStock(
	ctx context.Context,
	products repository.ProductRepository,
	product *entity.Product,
	in Intent,
) (prev, next int, err error) {
	if c.opts.Guard == GuardUnguarded {
		next, err = policy.NextStock(in.Type, in.Quantity, product.Stock)
		if err != nil {
			return 0, 0, err
		}
		if _, err := products.SetStock(ctx, product.ID, next); err != nil {
			return 0, 0, err
		}
		return product.Stock, next, nil
	}

	dir, err := policy.DirectionOf(in.Type)
	if err != nil {
		return 0, 0, err
	}
	switch dir {
	case policy.DirectionDecrease:
		next, err = products.AddStock(ctx, product.ID, -in.Quantity)
		if err != nil {
			return 0, 0, err
		}
		return next + in.Quantity, next, nil
	case policy.DirectionIncrease:
		next, err = products.AddStock(ctx, product.ID, in.Quantity)
		if err != nil {
			return 0, 0, err
		}
		return next - in.Quantity, next, nil
	default:
		// adjustment/delete no dependen del valor anterior.
		next, err = policy.NextStock(in.Type, in.Quantity, 0)
		if err != nil {
			return 0, 0, err
		}
		prev, err = products.SetStock(ctx, product.ID, next)
		if err != nil {
			return 0, 0, err
		}
		return prev, next, nil
	}
}

func (c *Coordinator) newTransition(product *entity.Product, in Intent, prev, next int) *entity.StockTransition {
	qty := policy.LedgerQuantity(in.Type, in.Quantity, prev, next)
	tr := &entity.StockTransition{
		ID:              uuid.New().String(),
		ProductID:       product.ID,
		ProductName:     product.Name,
		TransactionType: in.Type,
		Quantity:        qty,
		PreviousStock:   prev,
		NewStock:        next,
		UnitPrice:       in.UnitPrice,
		TotalValue:      in.UnitPrice.Mul(decimal.NewFromInt(int64(qty))),
		Reference:       in.Reference,
		Party:           in.Party,
		UserName:        "System",
		Notes:           in.Notes,
		CreatedAt:       c.now(),
	}
	if in.Actor != nil {
		if in.Actor.Name != "" {
			tr.UserName = in.Actor.Name
		}
		if id, ok := IdentityRef(in.Actor.ID); ok {
			tr.UserID = &id
		}
	}
	return tr
}

// IdentityRef normaliza el ID del actor; solo los UUID se consideran referencias de identidad válidas.
func IdentityRef(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

func validateIntent(in Intent) error {
	if in.ProductID == "" {
		return domain.ErrInvalidInput
	}
	if !policy.ValidTransactionType(in.Type) {
		return domain.ErrInvalidTransactionType
	}
	if in.UnitPrice.IsNegative() {
		return domain.ErrInvalidInput
	}
	switch in.Type {
	case entity.TransactionAdjustment:
		if in.Quantity < 0 {
			return domain.ErrInvalidInput
		}
	case entity.TransactionDelete:
	default:
		if in.Quantity <= 0 {
			return domain.ErrInvalidInput
		}
	}
	return nil
}
