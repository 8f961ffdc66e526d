package services

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"marketplace/models"
	"marketplace/repository"
)

// In-memory repository fakes, mutex-guarded maps behind the repository
// interfaces. Failure modes are toggled per test via the fail* fields.

type memProductRepo struct {
	mu       sync.Mutex
	products map[string]models.Product
	nextID   int
	failAll  bool
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: map[string]models.Product{}}
}

var errBackendDown = errors.New("backend down")

func (r *memProductRepo) FindByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errBackendDown
	}
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *memProductRepo) FindAll(ctx context.Context) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errBackendDown
	}
	out := []models.Product{}
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *memProductRepo) SearchByName(ctx context.Context, name string) ([]models.Product, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Product{}
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(name)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProductRepo) FindByMaxPrice(ctx context.Context, price decimal.Decimal) ([]models.Product, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Product{}
	for _, p := range all {
		if p.Price.LessThanOrEqual(price) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProductRepo) Save(ctx context.Context, product *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errBackendDown
	}
	if product.ID == "" {
		r.nextID++
		product.ID = "p" + strconv.Itoa(r.nextID)
	}
	r.products[product.ID] = *product
	return product, nil
}

func (r *memProductRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errBackendDown
	}
	delete(r.products, id)
	return nil
}

func (r *memProductRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return false, errBackendDown
	}
	_, ok := r.products[id]
	return ok, nil
}

func (r *memProductRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

type memCartRepo struct {
	mu       sync.Mutex
	carts    map[string]models.Cart // keyed by user id
	nextID   int
	failSave bool
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: map[string]models.Cart{}}
}

func (r *memCartRepo) FindByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		return nil, nil
	}
	copied := c
	copied.Items = append([]models.CartItem{}, c.Items...)
	return &copied, nil
}

func (r *memCartRepo) Save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave {
		return nil, errBackendDown
	}
	if cart.ID == "" {
		r.nextID++
		cart.ID = "c" + strconv.Itoa(r.nextID)
	}
	stored := *cart
	stored.Items = append([]models.CartItem{}, cart.Items...)
	r.carts[cart.UserID] = stored
	return cart, nil
}

func (r *memCartRepo) DeleteByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}

type memOrderRepo struct {
	mu         sync.Mutex
	orders     map[string]models.Order
	nextID     int
	failInsert bool
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: map[string]models.Order{}}
}

func (r *memOrderRepo) FindByID(ctx context.Context, id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *memOrderRepo) Insert(ctx context.Context, order *models.Order) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failInsert {
		return nil, errBackendDown
	}
	r.nextID++
	order.ID = "o" + strconv.Itoa(r.nextID)
	stored := *order
	stored.Items = append([]models.CartItem{}, order.Items...)
	r.orders[order.ID] = stored
	return order, nil
}

func (r *memOrderRepo) Update(ctx context.Context, order *models.Order) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = *order
	return order, nil
}

func (r *memOrderRepo) sorted(filter func(models.Order) bool) []models.Order {
	out := []models.Order{}
	for _, o := range r.orders {
		if filter(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *memOrderRepo) FindByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (r *memOrderRepo) FindByUserIDPage(ctx context.Context, userID string, page, size int) ([]models.Order, error) {
	all, _ := r.FindByUserID(ctx, userID)
	return paginate(all, page, size), nil
}

func (r *memOrderRepo) FindAllPage(ctx context.Context, page, size int) ([]models.Order, error) {
	r.mu.Lock()
	all := r.sorted(func(models.Order) bool { return true })
	r.mu.Unlock()
	return paginate(all, page, size), nil
}

func (r *memOrderRepo) FindByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(o models.Order) bool { return o.Status == status }), nil
}

func (r *memOrderRepo) CountByStatus(ctx context.Context, status models.OrderStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, o := range r.orders {
		if o.Status == status {
			count++
		}
	}
	return count, nil
}

func paginate(orders []models.Order, page, size int) []models.Order {
	start := page * size
	if start >= len(orders) {
		return []models.Order{}
	}
	end := start + size
	if end > len(orders) {
		end = len(orders)
	}
	return orders[start:end]
}

type memUserRepo struct {
	mu     sync.Mutex
	users  map[string]models.User
	nextID int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]models.User{}}
}

func (r *memUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	u, err := r.FindByUsername(ctx, username)
	return u != nil, err
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	u, err := r.FindByEmail(ctx, email)
	return u != nil, err
}

func (r *memUserRepo) Insert(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = "u" + strconv.Itoa(r.nextID)
	r.users[user.ID] = *user
	return user, nil
}

func (r *memUserRepo) Update(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return user, nil
}

func (r *memUserRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

var (
	_ repository.ProductRepository = (*memProductRepo)(nil)
	_ repository.CartRepository    = (*memCartRepo)(nil)
	_ repository.OrderRepository   = (*memOrderRepo)(nil)
	_ repository.UserRepository    = (*memUserRepo)(nil)
)
