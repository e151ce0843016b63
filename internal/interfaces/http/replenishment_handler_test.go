package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/replenishment-api/internal/application/dto"
	"github.com/jhoicas/replenishment-api/internal/application/replenishment"
	"github.com/jhoicas/replenishment-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/replenishment-api/internal/interfaces/http"
	"github.com/jhoicas/replenishment-api/pkg/idgen"
	"github.com/jhoicas/replenishment-api/pkg/metrics"
)

type nopNotifier struct{}

func (nopNotifier) Publish(context.Context, string, string, any) {}

// envelope respuesta exitosa con data tipada.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func newAPI(t *testing.T, jwtSecret string) *fiber.App {
	t.Helper()
	return newAPIWith(t, apphttp.RouterDeps{JWTSecret: jwtSecret})
}

// newAPIWith completa deps con repositorio en memoria, casos de uso y métricas.
func newAPIWith(t *testing.T, deps apphttp.RouterDeps) *fiber.App {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.NewWorkflowMetrics(reg)
	repo := memory.NewReplenishmentOrderRepository()
	deps.Workflow = replenishment.NewWorkflowUseCase(repo, idgen.New(nil), nopNotifier{},
		replenishment.DefaultChannels(), nil, m, nil)
	deps.Query = replenishment.NewQueryUseCase(repo)
	deps.Gatherer = reg

	app := fiber.New()
	apphttp.Router(app, deps)
	return app
}

func call(t *testing.T, app *fiber.App, method, path, body, auth string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

const alertBody = `{
	"store_id": "ST-001",
	"store_name": "Tienda Centro",
	"product_id": "PRD-001",
	"product_name": "Leche entera 1L",
	"current_quantity": 5,
	"reorder_threshold": 10,
	"requested_quantity": 50
}`

func createAlert(t *testing.T, app *fiber.App) dto.ReplenishmentOrderResponse {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/replenishment/alert", alertBody, "")
	require.Equal(t, http.StatusCreated, status, string(body))
	var out envelope[dto.ReplenishmentOrderResponse]
	require.NoError(t, json.Unmarshal(body, &out))
	require.True(t, out.Success)
	return out.Data
}

func decodeError(t *testing.T, body []byte) dto.ErrorResponse {
	t.Helper()
	var out dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.False(t, out.Success)
	return out
}

func TestHandler_FlujoCompleto(t *testing.T) {
	app := newAPI(t, "")
	created := createAlert(t, app)
	assert.True(t, strings.HasPrefix(created.ReplenishmentID, "REP-"))
	assert.Equal(t, "ALERT_RAISED", created.Status)
	id := created.ReplenishmentID

	status, body := call(t, app, http.MethodPost, "/api/replenishment/transfer-order/"+id,
		`{"warehouse_id":"WH-001","warehouse_stock":1000}`, "")
	require.Equal(t, http.StatusOK, status, string(body))
	var transferred envelope[dto.ReplenishmentOrderResponse]
	require.NoError(t, json.Unmarshal(body, &transferred))
	assert.Equal(t, "PENDING_PICKING", transferred.Data.Status)
	assert.True(t, strings.HasPrefix(transferred.Data.TransferOrderID, "TO-"))

	status, body = call(t, app, http.MethodPost, "/api/replenishment/dispatch/"+id, "", "")
	require.Equal(t, http.StatusOK, status, string(body))
	var dispatched envelope[dto.ReplenishmentOrderResponse]
	require.NoError(t, json.Unmarshal(body, &dispatched))
	assert.Equal(t, "IN_TRANSIT", dispatched.Data.Status)
	assert.True(t, strings.HasPrefix(dispatched.Data.TrackingNumber, "TRK-"))
	assert.Equal(t, strings.ToUpper(dispatched.Data.TrackingNumber), dispatched.Data.TrackingNumber)

	status, body = call(t, app, http.MethodPost, "/api/replenishment/receive/"+id, "", "")
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = call(t, app, http.MethodGet, "/api/replenishment/orders/"+id, "", "")
	require.Equal(t, http.StatusOK, status)
	var got envelope[dto.ReplenishmentOrderResponse]
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "COMPLETED", got.Data.Status)
	assert.Len(t, got.Data.StageHistory, 4)
}

func TestHandler_CreateAlert_Validacion(t *testing.T) {
	app := newAPI(t, "")

	status, body := call(t, app, http.MethodPost, "/api/replenishment/alert",
		`{"store_id":"ST-001","current_quantity":-1}`, "")
	assert.Equal(t, http.StatusBadRequest, status)
	e := decodeError(t, body)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Contains(t, e.Message, "store_name es requerido")
	assert.Contains(t, e.Message, "current_quantity debe ser al menos 0")

	status, body = call(t, app, http.MethodPost, "/api/replenishment/alert", `{no es json`, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_BODY", decodeError(t, body).Code)

	status, body = call(t, app, http.MethodGet, "/api/replenishment/orders", "", "")
	require.Equal(t, http.StatusOK, status)
	var list envelope[[]dto.ReplenishmentOrderResponse]
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Empty(t, list.Data, "una alerta inválida no crea orden")
}

func TestHandler_CantidadesFueraDeRango_400(t *testing.T) {
	app := newAPI(t, "")

	status, body := call(t, app, http.MethodPost, "/api/replenishment/alert",
		strings.Replace(alertBody, `"requested_quantity": 50`, `"requested_quantity": 3000000000`, 1), "")
	assert.Equal(t, http.StatusBadRequest, status)
	e := decodeError(t, body)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Contains(t, e.Message, "requested_quantity debe ser como máximo 2147483647")

	created := createAlert(t, app)
	status, body = call(t, app, http.MethodPost, "/api/replenishment/transfer-order/"+created.ReplenishmentID,
		`{"warehouse_id":"WH-001","warehouse_stock":3000000000}`, "")
	assert.Equal(t, http.StatusBadRequest, status)
	e = decodeError(t, body)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Contains(t, e.Message, "warehouse_stock debe ser como máximo 2147483647")

	// La orden sigue esperando la orden de traslado
	status, body = call(t, app, http.MethodGet, "/api/replenishment/orders/"+created.ReplenishmentID, "", "")
	require.Equal(t, http.StatusOK, status)
	var got envelope[dto.ReplenishmentOrderResponse]
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "ALERT_RAISED", got.Data.Status)
	assert.Nil(t, got.Data.WarehouseStock)
}

func TestHandler_StockInsuficiente_409(t *testing.T) {
	app := newAPI(t, "")
	created := createAlert(t, app)

	status, body := call(t, app, http.MethodPost, "/api/replenishment/transfer-order/"+created.ReplenishmentID,
		`{"warehouse_id":"WH-001","warehouse_stock":10}`, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "PRECONDITION_FAILED", decodeError(t, body).Code)
}

func TestHandler_TransicionFueraDeOrden_409(t *testing.T) {
	app := newAPI(t, "")
	created := createAlert(t, app)

	status, body := call(t, app, http.MethodPost, "/api/replenishment/receive/"+created.ReplenishmentID, "", "")
	assert.Equal(t, http.StatusConflict, status)
	e := decodeError(t, body)
	assert.Equal(t, "PRECONDITION_FAILED", e.Code)
	assert.Contains(t, e.Message, "ALERT_RAISED")
}

func TestHandler_OrdenInexistente_404(t *testing.T) {
	app := newAPI(t, "")

	for _, path := range []string{
		"/api/replenishment/dispatch/REP-X",
		"/api/replenishment/receive/REP-X",
	} {
		status, body := call(t, app, http.MethodPost, path, "", "")
		assert.Equal(t, http.StatusNotFound, status, path)
		assert.Equal(t, "NOT_FOUND", decodeError(t, body).Code)
	}

	status, _ := call(t, app, http.MethodPost, "/api/replenishment/transfer-order/REP-X",
		`{"warehouse_id":"WH-001","warehouse_stock":10}`, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, app, http.MethodGet, "/api/replenishment/orders/REP-X", "", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHandler_TransferOrder_SinStock_400(t *testing.T) {
	app := newAPI(t, "")
	created := createAlert(t, app)

	status, body := call(t, app, http.MethodPost, "/api/replenishment/transfer-order/"+created.ReplenishmentID,
		`{"warehouse_id":"WH-001"}`, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, decodeError(t, body).Message, "warehouse_stock")
}

func TestHandler_ConJWT_ExigeRol(t *testing.T) {
	app := newAPI(t, testJWTSecret)

	status, _ := call(t, app, http.MethodPost, "/api/replenishment/alert", alertBody, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, app, http.MethodPost, "/api/replenishment/alert", alertBody, tokenForRole(t, apphttp.RoleWarehouse))
	assert.Equal(t, http.StatusForbidden, status)

	status, body := call(t, app, http.MethodPost, "/api/replenishment/alert", alertBody, tokenForRole(t, apphttp.RoleStore))
	require.Equal(t, http.StatusCreated, status, string(body))

	// Las consultas no exigen token
	status, _ = call(t, app, http.MethodGet, "/api/replenishment/orders", "", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestHandler_HealthYMetrics(t *testing.T) {
	app := newAPI(t, "")
	createAlert(t, app)

	status, body := call(t, app, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	status, body = call(t, app, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, bytes.Contains(body, []byte(`replenishment_transitions_total{operation="raise_alert",outcome="success"} 1`)), string(body))
}

func preflight(t *testing.T, app *fiber.App, origin string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodOptions, "/api/replenishment/alert", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type, Authorization")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandler_CORS_Preflight(t *testing.T) {
	app := newAPIWith(t, apphttp.RouterDeps{AllowOrigins: "http://localhost:5173,https://sentry.example.com"})

	resp := preflight(t, app, "http://localhost:5173")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Authorization")
	assert.Equal(t, "300", resp.Header.Get("Access-Control-Max-Age"))

	resp = preflight(t, app, "https://otro.example.com")
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))

	// Petición simple desde un origen permitido
	req := httptest.NewRequest(http.MethodGet, "/api/replenishment/orders", nil)
	req.Header.Set("Origin", "https://sentry.example.com")
	got, err := app.Test(req, -1)
	require.NoError(t, err)
	defer got.Body.Close()
	assert.Equal(t, http.StatusOK, got.StatusCode)
	assert.Equal(t, "https://sentry.example.com", got.Header.Get("Access-Control-Allow-Origin"))
}

func TestHandler_CORS_Comodin(t *testing.T) {
	app := newAPIWith(t, apphttp.RouterDeps{AllowOrigins: "*"})

	resp := preflight(t, app, "http://cualquiera.example.com")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestHandler_SinCORS(t *testing.T) {
	app := newAPI(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/replenishment/orders", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
