package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ariefcatur/go-snack-orders/internal/inventory"
	"github.com/ariefcatur/go-snack-orders/internal/orders"
	"github.com/ariefcatur/go-snack-orders/internal/referral"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const orderID = "6f1c2b1e-8a55-4c4e-9d0e-3f6c1d2a7b90"

type fakeOrders struct {
	submitted []orders.Draft
	submitErr error
	receipt   orders.Receipt

	statusTo  orders.Status
	statusErr error

	cancelled []string
	deleted   []string
	list      []orders.Order
}

func (f *fakeOrders) Submit(_ context.Context, d orders.Draft) (orders.Receipt, error) {
	f.submitted = append(f.submitted, d)
	return f.receipt, f.submitErr
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id string, to orders.Status) (orders.Transition, error) {
	f.statusTo = to
	if f.statusErr != nil {
		return orders.Transition{}, f.statusErr
	}
	return orders.Transition{
		Order: orders.Order{ID: id, Estado: to},
		Plan:  orders.Plan{From: orders.StatusPending, To: to},
	}, nil
}

func (f *fakeOrders) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeOrders) CancelByCustomer(_ context.Context, id, phone string) error {
	if err := orders.ValidatePhone(phone); err != nil {
		return err
	}
	f.cancelled = append(f.cancelled, id)
	return nil
}

func (f *fakeOrders) StatusOf(_ context.Context, id string) (orders.Status, error) {
	if id != orderID {
		return "", orders.ErrNotFound
	}
	return orders.StatusEnRoute, nil
}

func (f *fakeOrders) ListAll(context.Context) ([]orders.Order, error) { return f.list, nil }

func (f *fakeOrders) ListByPhone(_ context.Context, phone string) ([]orders.Order, error) {
	if phone == "" {
		return nil, &orders.ValidationError{Field: "telefono", Message: "Ingresa un número de teléfono para buscar tus pedidos"}
	}
	return f.list, nil
}

type fakeStock struct {
	snap        inventory.Snapshot
	err         error
	invalidated int
}

func (f *fakeStock) Current(context.Context) (inventory.Snapshot, error) { return f.snap, f.err }
func (f *fakeStock) Invalidate(context.Context)                         { f.invalidated++ }

type fakeReferrals map[string]referral.Referrer

func (f fakeReferrals) Lookup(_ context.Context, code string) (referral.Referrer, error) {
	r, ok := f[code]
	if !ok {
		return referral.Referrer{}, referral.ErrNotFound
	}
	return r, nil
}

type fakeInventory struct {
	rec   inventory.Record
	found bool
}

func (f *fakeInventory) Get(context.Context) (inventory.Record, bool, error) { return f.rec, f.found, nil }

func (f *fakeInventory) Save(_ context.Context, r inventory.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	f.rec, f.found = r, true
	return nil
}

type fixture struct {
	router http.Handler
	orders *fakeOrders
	stock  *fakeStock
	inv    *fakeInventory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3creta"), bcrypt.MinCost)
	require.NoError(t, err)

	f := &fixture{
		orders: &fakeOrders{receipt: orders.Receipt{OrderID: orderID, Total: 18000, Descuento: 2000, Estado: orders.StatusPending}},
		stock:  &fakeStock{snap: inventory.Snapshot{Record: inventory.Record{MaxiVasos: 4, Bolsas: 2}, Available: true}},
		inv:    &fakeInventory{},
	}
	r := NewRouter()
	(&OrdersHandler{
		Orders:    f.orders,
		Stock:     f.stock,
		Referrals: fakeReferrals{"ANA12": {NumReferido: "ANA12", PuntosTotal: 55, VasosComprados: 6, BolsasCompradas: 1}},
	}).Register(r)
	(&AdminHandler{
		Orders:       f.orders,
		Inventory:    f.inv,
		Stock:        f.stock,
		Email:        "admin@tienda.co",
		PasswordHash: string(hash),
	}).Register(r)
	f.router = r
	return f
}

func (f *fixture) do(method, target, body string, admin bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if admin {
		req.SetBasicAuth("admin@tienda.co", "s3creta")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/orders", `{"nombre":"Laura","telefono":"3001234567","tipoOrden":"inmediato",
		"ubicacion":"Biblioteca","horaEntrega":"10:30","maxiVasos":2,"codigoReferido":"ana12","total":1}`, false)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, orderID, body["orderId"])
	assert.EqualValues(t, 18000, body["total"])

	require.Len(t, f.orders.submitted, 1)
	d := f.orders.submitted[0]
	assert.Equal(t, orders.KindImmediate, d.Kind)
	assert.Equal(t, "Biblioteca", d.Immediate.Ubicacion)
	assert.Equal(t, "ana12", d.CodigoReferido)
}

func TestCreateOrderIdempotencyHeader(t *testing.T) {
	f := newFixture(t)
	f.orders.receipt.Idempotent = true
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"nombre":"Laura","tipoOrden":"inmediato"}`))
	req.Header.Set("Idempotency-Key", "form-123")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.orders.submitted, 1)
	assert.Equal(t, "form-123", f.orders.submitted[0].ExternalID)
}

func TestCreateOrderErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"validation", &orders.ValidationError{Field: "nombre", Message: "El nombre es obligatorio"}, http.StatusUnprocessableEntity, "El nombre es obligatorio"},
		{"unknown code", referral.ErrNotFound, http.StatusNotFound, "Código de referido inválido"},
		{"self referral", referral.ErrSelfReferral, http.StatusConflict, "No puedes usar tu propio código de referido"},
		{"store down", assert.AnError, http.StatusServiceUnavailable, "Hubo un error, inténtalo de nuevo"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.orders.submitErr = tc.err
			rec := f.do(http.MethodPost, "/orders", `{"nombre":"Laura"}`, false)
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.msg, decodeBody(t, rec)["error"])
		})
	}
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/orders", `{nope`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/orders", `{"tipoOrden":"mañana"}`, false)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "tipoOrden", decodeBody(t, rec)["field"])

	assert.Empty(t, f.orders.submitted)
}

func TestGetOrderStatus(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/orders/"+orderID, "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "en_camino", body["estado"])
	assert.Equal(t, "En Camino", body["etiqueta"])

	rec = f.do(http.MethodGet, "/orders/nope", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOrdersNeedsPhone(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/orders", "", false)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(http.MethodGet, "/orders?telefono=3001234567", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCancelOrder(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodDelete, "/orders/"+orderID+"?telefono=2001234567", "", false)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(http.MethodDelete, "/orders/"+orderID+"?telefono=3001234567", "", false)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{orderID}, f.orders.cancelled)
}

func TestInventoryDisplay(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/inventory", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"maxiVasos":4,"bolsas":2,"disponible":true}`, rec.Body.String())

	f.stock.err = inventory.ErrUnavailable
	rec = f.do(http.MethodGet, "/inventory", "", false)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "network error", decodeBody(t, rec)["error"])
}

func TestReferrerSummary(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/referidos/ana12", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "55", body["PuntosTotal"])
	assert.EqualValues(t, 2, body["nivel"])
	assert.Equal(t, "Un vaso gratis", body["premio"])

	rec = f.do(http.MethodGet, "/referidos/ZZZ", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRequiresAuth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/admin/orders", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.SetBasicAuth("admin@tienda.co", "wrong")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/admin/orders", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminLockedWithoutHash(t *testing.T) {
	r := NewRouter()
	(&AdminHandler{Orders: &fakeOrders{}, Email: "admin@tienda.co"}).Register(r)

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.SetBasicAuth("admin@tienda.co", "")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminUpdateStatus(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPut, "/admin/orders/"+orderID+"/estado", `{"estado":"entregado"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, orders.StatusDelivered, f.orders.statusTo)
	body := decodeBody(t, rec)
	assert.Equal(t, "pendiente", body["from"])
	assert.Equal(t, "entregado", body["to"])

	f.orders.statusErr = orders.ErrNotFound
	rec = f.do(http.MethodPut, "/admin/orders/"+orderID+"/estado", `{"estado":"entregado"}`, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminDeleteOrder(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodDelete, "/admin/orders/"+orderID, "", true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{orderID}, f.orders.deleted)
}

func TestAdminInventory(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/admin/inventory", "", true)
	assert.JSONEq(t, `{"maxiVasos":0,"bolsas":0,"disponible":false}`, rec.Body.String())

	rec = f.do(http.MethodPut, "/admin/inventory", `{"maxiVasos":12,"bolsas":7}`, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, inventory.Record{MaxiVasos: 12, Bolsas: 7}, f.inv.rec)
	assert.Equal(t, 1, f.stock.invalidated)

	rec = f.do(http.MethodPut, "/admin/inventory", `{"maxiVasos":-1,"bolsas":7}`, true)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, 1, f.stock.invalidated)
}
