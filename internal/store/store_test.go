package store

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurawell/aurawell-api/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(dir, testLogger())
	require.NoError(t, err)
	return s, dir
}

func mustPrice(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	require.NoError(t, err)
	return d
}

func TestOpen_SeedsOnFirstRun(t *testing.T) {
	s, dir := newTestStore(t)

	for _, name := range []string{usersFile, productsFile, cartsFile, ordersFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	admin, err := s.GetUserByEmail("admin@aurawell.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	assert.NotEmpty(t, s.ListProducts())
	assert.Empty(t, s.ListOrders())
}

func TestOpen_DoesNotReseedExistingFiles(t *testing.T) {
	s, dir := newTestStore(t)

	p := &model.Product{Name: "Chamomile Tea", Price: mustPrice(t, "6.50"), Stock: 10, Category: "teas"}
	require.NoError(t, s.CreateProduct(p))
	before := len(s.ListProducts())

	reopened, err := Open(dir, testLogger())
	require.NoError(t, err)
	assert.Len(t, reopened.ListProducts(), before)

	got, err := reopened.GetProductByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chamomile Tea", got.Name)
}

func TestCreateUser_DuplicateEmailCaseInsensitive(t *testing.T) {
	s, _ := newTestStore(t)

	u := &model.User{Email: "jane@example.com", Password: "secret1", FirstName: "Jane", LastName: "Doe"}
	require.NoError(t, s.CreateUser(u))
	assert.Equal(t, model.RoleCustomer, u.Role)

	dup := &model.User{Email: "JANE@Example.COM", Password: "other", FirstName: "Janet", LastName: "Doe"}
	assert.ErrorIs(t, s.CreateUser(dup), ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	s, _ := newTestStore(t)

	u := &model.User{Email: "jane@example.com", Password: "secret1", FirstName: "Jane", LastName: "Doe"}
	require.NoError(t, s.CreateUser(u))

	got, err := s.Authenticate("Jane@Example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Authenticate("jane@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Authenticate("nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// breakCollectionFile makes every future rewrite of the named collection file
// fail by replacing it with a directory, so the rename step cannot land.
func breakCollectionFile(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o755))
}

func TestCreateUser_FailedWriteLeavesMemoryUntouched(t *testing.T) {
	s, dir := newTestStore(t)
	breakCollectionFile(t, dir, usersFile)

	u := &model.User{Email: "jane@example.com", Password: "secret1", FirstName: "Jane", LastName: "Doe"}
	err := s.CreateUser(u)
	require.Error(t, err)
	assert.ErrorContains(t, err, "persist users")

	_, err = s.GetUserByEmail("jane@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	// The collection is still usable once the disk recovers.
	require.NoError(t, os.Remove(filepath.Join(dir, usersFile)))
	require.NoError(t, s.CreateUser(u))
}

func TestPlaceOrder_FailedWriteLeavesMemoryUntouched(t *testing.T) {
	s, dir := newTestStore(t)
	userID := uuid.New()

	p := &model.Product{Name: "Arnica Gel", Price: mustPrice(t, "9.00"), Stock: 10}
	require.NoError(t, s.CreateProduct(p))
	_, err := s.AddCartItem(userID, p.ID, 2)
	require.NoError(t, err)

	breakCollectionFile(t, dir, productsFile)

	before := len(s.ListOrders())
	_, err = s.PlaceOrder(userID, "1 Wellness Way")
	require.Error(t, err)

	// None of the staged checkout effects may be visible.
	got, err := s.GetProductByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)
	assert.Len(t, s.ListOrders(), before)
	cart, err := s.GetCart(userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestRoundTrip_ReloadYieldsIdenticalCollections(t *testing.T) {
	s, dir := newTestStore(t)

	user := &model.User{Email: "jane@example.com", Password: "secret1", FirstName: "Jane", LastName: "Doe"}
	require.NoError(t, s.CreateUser(user))

	p := &model.Product{
		Name: "Rosehip Oil", Description: "Cold-pressed facial oil",
		Price: mustPrice(t, "18.40"), Stock: 12,
		Category: "aromatherapy", AgeGroup: "adult", ImageURL: "/images/rosehip.jpg",
	}
	require.NoError(t, s.CreateProduct(p))

	_, err := s.AddCartItem(user.ID, p.ID, 2)
	require.NoError(t, err)
	_, err = s.PlaceOrder(user.ID, "1 Wellness Way")
	require.NoError(t, err)

	reopened, err := Open(dir, testLogger())
	require.NoError(t, err)

	assert.Equal(t, s.users, reopened.users)
	assert.Equal(t, s.products, reopened.products)
	assert.Equal(t, s.carts, reopened.carts)
	assert.Equal(t, s.orders, reopened.orders)
}
