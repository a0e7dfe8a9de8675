package memory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// Store almacenamiento en memoria para desarrollo y pruebas. Todas las lecturas devuelven copias.
type Store struct {
	mu          sync.RWMutex
	txMu        sync.Mutex
	products    map[string]entity.Product
	transitions []entity.StockTransition
	orders      map[string]entity.Order
	returns     map[string]entity.Return
	users       map[string]entity.User
}

// New crea un Store vacío.
func New() *Store {
	return &Store{
		products: make(map[string]entity.Product),
		orders:   make(map[string]entity.Order),
		returns:  make(map[string]entity.Return),
		users:    make(map[string]entity.User),
	}
}

// NewSeeded crea un Store con usuarios iniciales admin y cashier.
// Las contraseñas salen de SEED_ADMIN_PASSWORD y SEED_CASHIER_PASSWORD; si faltan se usan las de desarrollo.
func NewSeeded(log zerolog.Logger) (*Store, error) {
	s := New()
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	cashierPwd := envOr("SEED_CASHIER_PASSWORD", "cashier123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_CASHIER_PASSWORD") == "" {
		log.Warn().Msg("store en memoria con credenciales de desarrollo; definir SEED_ADMIN_PASSWORD y SEED_CASHIER_PASSWORD")
	}
	now := time.Now().UTC()
	for _, u := range []struct {
		username, password, role string
	}{
		{"admin", adminPwd, entity.RoleAdmin},
		{"cashier", cashierPwd, entity.RoleCashier},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash de usuario semilla %s: %w", u.username, err)
		}
		id := uuid.New().String()
		s.users[id] = entity.User{
			ID:           id,
			Username:     u.username,
			PasswordHash: string(hash),
			Role:         u.role,
			Status:       "active",
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}
	return s, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Products repositorio de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Transitions repositorio del libro.
func (s *Store) Transitions() *StockTransitionRepo { return &StockTransitionRepo{s: s} }

// Orders repositorio de órdenes.
func (s *Store) Orders() *OrderRepo { return &OrderRepo{s: s} }

// Returns repositorio de devoluciones.
func (s *Store) Returns() *ReturnRepo { return &ReturnRepo{s: s} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// TxRunner unidad de trabajo sobre el Store.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

// TxRunner serializa las unidades de trabajo. Si fn falla se deshacen solo las escrituras hechas
// a través de los repositorios de la unidad; lo escrito por fuera de Run se conserva.
type TxRunner struct {
	s *Store
}

// Run ejecuta fn con repositorios que registran la imagen previa de cada producto tocado
// y los IDs de las entradas agregadas al libro.
func (r *TxRunner) Run(ctx context.Context, fn func(
	products repository.ProductRepository,
	ledger repository.StockTransitionRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	u := &unitOfWork{s: r.s, before: make(map[string]*entity.Product), appended: make(map[string]struct{})}
	if err := fn(&txProductRepo{ProductRepo: r.s.Products(), u: u}, &txStockTransitionRepo{StockTransitionRepo: r.s.Transitions(), u: u}); err != nil {
		u.rollback()
		return err
	}
	return nil
}

type unitOfWork struct {
	s        *Store
	before   map[string]*entity.Product // nil = no existía
	appended map[string]struct{}
}

// touch guarda la imagen previa la primera vez que la unidad escribe el producto.
func (u *unitOfWork) touch(id string) {
	if _, seen := u.before[id]; seen {
		return
	}
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	if p, ok := u.s.products[id]; ok {
		u.before[id] = &p
		return
	}
	u.before[id] = nil
}

func (u *unitOfWork) rollback() {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for id, pre := range u.before {
		if pre == nil {
			delete(u.s.products, id)
			continue
		}
		u.s.products[id] = *pre
	}
	if len(u.appended) == 0 {
		return
	}
	kept := u.s.transitions[:0]
	for _, t := range u.s.transitions {
		if _, ok := u.appended[t.ID]; !ok {
			kept = append(kept, t)
		}
	}
	u.s.transitions = kept
}

type txProductRepo struct {
	*ProductRepo
	u *unitOfWork
}

func (r *txProductRepo) Create(ctx context.Context, p *entity.Product) error {
	r.u.touch(p.ID)
	return r.ProductRepo.Create(ctx, p)
}

func (r *txProductRepo) Update(ctx context.Context, p *entity.Product) error {
	r.u.touch(p.ID)
	return r.ProductRepo.Update(ctx, p)
}

func (r *txProductRepo) Delete(ctx context.Context, id string) error {
	r.u.touch(id)
	return r.ProductRepo.Delete(ctx, id)
}

func (r *txProductRepo) AddStock(ctx context.Context, id string, delta int) (int, error) {
	r.u.touch(id)
	return r.ProductRepo.AddStock(ctx, id, delta)
}

func (r *txProductRepo) SetStock(ctx context.Context, id string, value int) (int, error) {
	r.u.touch(id)
	return r.ProductRepo.SetStock(ctx, id, value)
}

type txStockTransitionRepo struct {
	*StockTransitionRepo
	u *unitOfWork
}

func (r *txStockTransitionRepo) Append(ctx context.Context, t *entity.StockTransition) error {
	if err := r.StockTransitionRepo.Append(ctx, t); err != nil {
		return err
	}
	r.u.appended[t.ID] = struct{}{}
	return nil
}

// ProductRepo implementa repository.ProductRepository en memoria.
type ProductRepo struct {
	s *Store
}

var _ repository.ProductRepository = (*ProductRepo)(nil)

// Create inserta el producto. ErrDuplicate si el ID o el código de barras ya existen.
func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	if p.Barcode != "" {
		for _, other := range r.s.products {
			if other.Barcode == p.Barcode {
				return domain.ErrDuplicate
			}
		}
	}
	r.s.products[p.ID] = *p
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetByIDs lee varios productos bajo un mismo bloqueo.
func (r *ProductRepo) GetByIDs(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			cp := p
			out[id] = &cp
		}
	}
	return out, nil
}

// GetByBarcode devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetByBarcode(_ context.Context, barcode string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.products {
		if p.Barcode == barcode {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

// Update reemplaza los campos de catálogo conservando el stock almacenado.
func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Barcode != "" && p.Barcode != cur.Barcode {
		for id, other := range r.s.products {
			if id != p.ID && other.Barcode == p.Barcode {
				return domain.ErrDuplicate
			}
		}
	}
	next := *p
	next.Stock = cur.Stock
	next.CreatedAt = cur.CreatedAt
	r.s.products[p.ID] = next
	return nil
}

// List filtra por texto (nombre, descripción, categoría, código de barras o ID) y categoría; ordena por nombre.
func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		cp := p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func matchesSearch(p entity.Product, search string) bool {
	for _, field := range []string{p.Name, p.Description, p.Category, p.Barcode, p.ID} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// Delete elimina el producto. Las entradas del libro no se tocan.
func (r *ProductRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

// AddStock verifica y escribe bajo el mismo bloqueo.
func (r *ProductRepo) AddStock(_ context.Context, id string, delta int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if p.Stock+delta < 0 {
		return 0, domain.ErrInsufficientStock
	}
	p.Stock += delta
	p.UpdatedAt = time.Now()
	r.s.products[id] = p
	return p.Stock, nil
}

// SetStock fija el stock y devuelve el anterior.
func (r *ProductRepo) SetStock(_ context.Context, id string, value int) (int, error) {
	if value < 0 {
		return 0, domain.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	prev := p.Stock
	p.Stock = value
	p.UpdatedAt = time.Now()
	r.s.products[id] = p
	return prev, nil
}

// StockTransitionRepo libro en memoria: solo inserción.
type StockTransitionRepo struct {
	s *Store
}

var _ repository.StockTransitionRepository = (*StockTransitionRepo)(nil)

// Append agrega una entrada al final del libro.
func (r *StockTransitionRepo) Append(_ context.Context, t *entity.StockTransition) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.transitions = append(r.s.transitions, copyTransition(*t))
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *StockTransitionRepo) GetByID(_ context.Context, id string) (*entity.StockTransition, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, t := range r.s.transitions {
		if t.ID == id {
			cp := copyTransition(t)
			return &cp, nil
		}
	}
	return nil, nil
}

// List filtra con semántica AND y devuelve las más recientes primero.
func (r *StockTransitionRepo) List(_ context.Context, f repository.StockTransitionFilter) ([]*entity.StockTransition, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	matched := make([]*entity.StockTransition, 0)
	// Recorrido inverso: a igual createdAt, la insertada después va primero.
	for i := len(r.s.transitions) - 1; i >= 0; i-- {
		t := r.s.transitions[i]
		if f.ProductID != "" && t.ProductID != f.ProductID {
			continue
		}
		if f.TransactionType != "" && t.TransactionType != f.TransactionType {
			continue
		}
		if f.From != nil && t.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && t.CreatedAt.After(*f.To) {
			continue
		}
		cp := copyTransition(t)
		matched = append(matched, &cp)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	start := f.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if f.Limit > 0 && start+f.Limit < end {
		end = start + f.Limit
	}
	return matched[start:end], total, nil
}

func copyTransition(t entity.StockTransition) entity.StockTransition {
	if t.Party != nil {
		p := *t.Party
		t.Party = &p
	}
	if t.UserID != nil {
		u := *t.UserID
		t.UserID = &u
	}
	return t
}

// OrderRepo órdenes en memoria.
type OrderRepo struct {
	s *Store
}

var _ repository.OrderRepository = (*OrderRepo)(nil)

// Create guarda la orden.
func (r *OrderRepo) Create(_ context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[o.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.orders[o.ID] = copyOrder(*o)
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	cp := copyOrder(o)
	return &cp, nil
}

// List devuelve las órdenes más recientes primero.
func (r *OrderRepo) List(_ context.Context, limit, offset int) ([]*entity.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]*entity.Order, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		cp := copyOrder(o)
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, limit, offset), nil
}

// Delete elimina la orden.
func (r *OrderRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.orders, id)
	return nil
}

func copyOrder(o entity.Order) entity.Order {
	if o.Customer != nil {
		c := *o.Customer
		o.Customer = &c
	}
	o.Cart = append([]entity.OrderLine(nil), o.Cart...)
	o.PaymentDetails = append([]byte(nil), o.PaymentDetails...)
	return o
}

// ReturnRepo devoluciones en memoria.
type ReturnRepo struct {
	s *Store
}

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

// Create guarda la devolución.
func (r *ReturnRepo) Create(_ context.Context, ret *entity.Return) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.returns[ret.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.returns[ret.ID] = *ret
	return nil
}

// UpdateOutcome guarda estado y valores de stock aplicados.
func (r *ReturnRepo) UpdateOutcome(_ context.Context, ret *entity.Return) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.returns[ret.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Status = ret.Status
	cur.PreviousStock = ret.PreviousStock
	cur.NewStock = ret.NewStock
	cur.FailureReason = ret.FailureReason
	cur.UpdatedAt = ret.UpdatedAt
	r.s.returns[ret.ID] = cur
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *ReturnRepo) GetByID(_ context.Context, id string) (*entity.Return, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ret, ok := r.s.returns[id]
	if !ok {
		return nil, nil
	}
	return &ret, nil
}

// List devuelve las devoluciones más recientes primero.
func (r *ReturnRepo) List(_ context.Context, limit, offset int) ([]*entity.Return, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]*entity.Return, 0, len(r.s.returns))
	for _, ret := range r.s.returns {
		cp := ret
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, limit, offset), nil
}

// UserRepo usuarios en memoria.
type UserRepo struct {
	s *Store
}

var _ repository.UserRepository = (*UserRepo)(nil)

// Create guarda el usuario. ErrUsernameAlreadyExists si el nombre ya existe.
func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.users {
		if strings.EqualFold(other.Username, u.Username) {
			return domain.ErrUsernameAlreadyExists
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// GetByUsername devuelve (nil, nil) si no existe.
func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Username, username) {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func paginate[T any](all []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}
