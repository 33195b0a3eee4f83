package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"firmeza/internal/config"
	"firmeza/internal/dto"
	"firmeza/internal/infra"
	"firmeza/internal/middleware"
	"firmeza/internal/model"
	"firmeza/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() { gin.SetMode(gin.TestMode) }

type testEnv struct {
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config

	cemento *model.Producto
	arena   *model.Producto
}

func testConfig() *config.Config {
	return &config.Config{
		Env:                "test",
		CORSOrigins:        "*",
		JWTSecret:          "test-secret-0123456789abcdef",
		JWTIssuer:          "firmeza-api",
		JWTAudience:        "firmeza-clientes",
		JWTExpirationHours: 3,
		SessionSecret:      "session-secret-0123456789",
		SessionHours:       8,
	}
}

// setupTestEnv builds the full stack on in-memory SQLite with an admin,
// a linked customer (ana) and two products. Redis and Gemini are absent.
func setupTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, infra.AutoMigrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	env := &testEnv{db: db, cfg: cfg}
	seedUsuario(t, db, "admin@example.com", "Admin123!", model.RolAdministrador)
	ana := seedUsuario(t, db, "ana@example.com", "Cliente123!", model.RolCliente)
	require.NoError(t, db.Create(&model.Cliente{Nombre: "Ana", Documento: "1", Telefono: "2", Email: "ana@example.com", UsuarioID: &ana.ID}).Error)

	env.cemento = &model.Producto{Nombre: "Cemento", Categoria: "Obra", Precio: decimal.RequireFromString("10.00"), Stock: 5}
	env.arena = &model.Producto{Nombre: "Arena", Categoria: "Obra", Precio: decimal.RequireFromString("5.00"), Stock: 3}
	require.NoError(t, db.Create(env.cemento).Error)
	require.NoError(t, db.Create(env.arena).Error)

	env.engine = router.New(cfg, db, nil, nil)
	return env
}

func seedUsuario(t *testing.T, db *gorm.DB, email, password, rol string) *model.Usuario {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.Usuario{Username: email, Email: email, PasswordHash: string(hash), Rol: rol, Activo: true}
	require.NoError(t, db.Create(u).Error)
	return u
}

// ── helpers ──────────────────────────────────────────────────────────────────

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

type reqOpt func(*http.Request)

func withToken(token string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withCookie(ck *http.Cookie) reqOpt {
	return func(r *http.Request) { r.AddCookie(ck) }
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, opts ...reqOpt) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, o := range opts {
		o(req)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/login", jsonBody(dto.LoginRequest{Email: email, Password: password}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	decodeJSON(t, w, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (e *testEnv) adminSession(t *testing.T) *http.Cookie {
	t.Helper()
	w := e.do(t, http.MethodPost, "/admin/login", jsonBody(dto.LoginRequest{Email: "admin@example.com", Password: "Admin123!"}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	for _, ck := range w.Result().Cookies() {
		if ck.Name == middleware.SessionCookieName {
			return ck
		}
	}
	t.Fatal("no session cookie")
	return nil
}

// ── status normalization ─────────────────────────────────────────────────────

func TestNoRoute(t *testing.T) {
	env := setupTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/no-existe", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]interface{}
	decodeJSON(t, w, &body)
	assert.EqualValues(t, 404, body["codigo"])
	assert.Equal(t, "Recurso no encontrado.", body["mensaje"])
}

func TestSinToken401(t *testing.T) {
	env := setupTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/productos", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]interface{}
	decodeJSON(t, w, &body)
	assert.Equal(t, "No autenticado.", body["mensaje"])
}

func TestRolIncorrecto403(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, "ana@example.com", "Cliente123!")

	w := env.do(t, http.MethodGet, "/api/clientes", nil, withToken(token))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// administrators cannot place orders
	admin := env.login(t, "admin@example.com", "Admin123!")
	w = env.do(t, http.MethodPost, "/api/ventas", jsonBody(dto.CrearVentaRequest{
		MetodoPago: "Efectivo", Detalles: []dto.DetalleVentaRequest{{ProductoID: env.cemento.ID, Cantidad: 1}},
	}), withToken(admin))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestModificarVenta405(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, "admin@example.com", "Admin123!")

	w := env.do(t, http.MethodPut, "/api/ventas/1", jsonBody(map[string]string{"metodoPago": "x"}), withToken(token))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	var body map[string]interface{}
	decodeJSON(t, w, &body)
	assert.Equal(t, "Las ventas no se pueden modificar.", body["detalle"])
}

func TestLoginInvalido(t *testing.T) {
	env := setupTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/auth/login", jsonBody(dto.LoginRequest{Email: "ana@example.com", Password: "mal"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]interface{}
	decodeJSON(t, w, &body)
	assert.Equal(t, "Credenciales inválidas.", body["mensaje"])
}

func TestProducto_PrecioCero(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, "admin@example.com", "Admin123!")

	req := dto.ProductoRequest{Nombre: "Muestra", Categoria: "Promoción", Precio: decimal.Zero, Stock: 4}
	w := env.do(t, http.MethodPost, "/api/productos", jsonBody(req), withToken(token))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p dto.ProductoResponse
	decodeJSON(t, w, &p)
	assert.True(t, p.Precio.IsZero())

	req.Stock = 6
	w = env.do(t, http.MethodPut, "/api/productos/"+uintStr(p.ID), jsonBody(req), withToken(token))
	assert.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	req.Precio = decimal.RequireFromString("-1")
	w = env.do(t, http.MethodPost, "/api/productos", jsonBody(req), withToken(token))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ── order flow ───────────────────────────────────────────────────────────────

func TestPedido_Flujo(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, "ana@example.com", "Cliente123!")

	w := env.do(t, http.MethodPost, "/api/ventas", jsonBody(dto.CrearVentaRequest{
		MetodoPago: "Efectivo",
		Detalles: []dto.DetalleVentaRequest{
			{ProductoID: env.cemento.ID, Cantidad: 2},
			{ProductoID: env.arena.ID, Cantidad: 1},
		},
	}), withToken(token))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var venta dto.VentaResponse
	decodeJSON(t, w, &venta)
	assert.True(t, venta.Total.Equal(decimal.NewFromInt(25)), "total %s", venta.Total)
	assert.Len(t, venta.Detalles, 2)

	var p dto.ProductoResponse
	w = env.do(t, http.MethodGet, "/api/productos/"+uintStr(env.cemento.ID), nil, withToken(token))
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &p)
	assert.Equal(t, 3, p.Stock)

	var propias []dto.VentaResponse
	w = env.do(t, http.MethodGet, "/api/ventas", nil, withToken(token))
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &propias)
	require.Len(t, propias, 1)
	assert.Equal(t, venta.ID, propias[0].ID)

	w = env.do(t, http.MethodGet, "/api/ventas/"+uintStr(venta.ID), nil, withToken(token))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPedido_SinStock(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, "ana@example.com", "Cliente123!")

	w := env.do(t, http.MethodPost, "/api/ventas", jsonBody(dto.CrearVentaRequest{
		MetodoPago: "Efectivo",
		Detalles:   []dto.DetalleVentaRequest{{ProductoID: env.arena.ID, Cantidad: 4}},
	}), withToken(token))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	decodeJSON(t, w, &body)
	assert.Equal(t, "No hay suficiente stock para el producto Arena. Stock actual: 3", body["mensaje"])

	var stock int
	require.NoError(t, env.db.Model(&model.Producto{}).Select("stock").Where("id = ?", env.arena.ID).Scan(&stock).Error)
	assert.Equal(t, 3, stock)
	var n int64
	require.NoError(t, env.db.Model(&model.Venta{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestPedido_Validacion(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, "ana@example.com", "Cliente123!")

	w := env.do(t, http.MethodPost, "/api/ventas", jsonBody(map[string]interface{}{
		"metodoPago": "Efectivo",
		"detalles":   []map[string]int{{"productoId": 1, "cantidad": 0}},
	}), withToken(token))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Errores map[string]string `json:"errores"`
	}
	decodeJSON(t, w, &body)
	assert.Contains(t, body.Errores, "detalles[0].cantidad")
}

func TestRegistro(t *testing.T) {
	env := setupTestEnv(t)
	req := dto.RegisterRequest{Nombre: "Beto", Documento: "9", Telefono: "8", Email: "beto@example.com", Password: "secreto1"}

	w := env.do(t, http.MethodPost, "/api/auth/register", jsonBody(req))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	token := env.login(t, "beto@example.com", "secreto1")
	w = env.do(t, http.MethodGet, "/api/clientes/me", nil, withToken(token))
	require.Equal(t, http.StatusOK, w.Code)
	var perfil dto.ClienteResponse
	decodeJSON(t, w, &perfil)
	assert.Equal(t, "Beto", perfil.Nombre)

	w = env.do(t, http.MethodPost, "/api/auth/register", jsonBody(req))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ── admin panel ──────────────────────────────────────────────────────────────

func TestAdmin_SesionYDashboard(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/admin/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	ck := env.adminSession(t)
	w = env.do(t, http.MethodGet, "/admin/dashboard", nil, withCookie(ck))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var dash dto.DashboardResponse
	decodeJSON(t, w, &dash)
	assert.EqualValues(t, 1, dash.Clientes)
	assert.EqualValues(t, 2, dash.Productos)
	assert.Len(t, dash.Historial, 7)
	assert.Equal(t, "Hoy no se han registrado ventas todavía.", dash.Insight)

	w = env.do(t, http.MethodPost, "/admin/chat", jsonBody(dto.ChatRequest{Question: "¿Qué tal?"}), withCookie(ck))
	require.Equal(t, http.StatusOK, w.Code)
	var chat dto.ChatResponse
	decodeJSON(t, w, &chat)
	assert.Equal(t, "No pude procesar tu pregunta en este momento.", chat.Answer)
}

func TestAdmin_LoginClienteRechazado(t *testing.T) {
	env := setupTestEnv(t)
	w := env.do(t, http.MethodPost, "/admin/login", jsonBody(dto.LoginRequest{Email: "ana@example.com", Password: "Cliente123!"}))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestAdmin_ImportarYPDF(t *testing.T) {
	env := setupTestEnv(t)
	ck := env.adminSession(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("archivo", "productos.csv")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("nombre,categoria,precio,stock\nWidget,Herramientas,9.99,5\nCemento,Obra,1,1\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/productos/importar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(ck)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var imp dto.ImportResponse
	decodeJSON(t, w, &imp)
	assert.Equal(t, 1, imp.Cantidad)
	assert.Equal(t, "Se cargaron 1 productos desde CSV correctamente.", imp.Mensaje)

	w = env.do(t, http.MethodPost, "/admin/productos/importar", nil, withCookie(ck))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/admin/ventas/pdf", nil, withCookie(ck))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ventas_todas_")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = env.do(t, http.MethodGet, "/admin/ventas/pdf/dia?fecha=2026-13-40", nil, withCookie(ck))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdmin_Logout(t *testing.T) {
	env := setupTestEnv(t)
	ck := env.adminSession(t)

	w := env.do(t, http.MethodPost, "/admin/logout", nil, withCookie(ck))
	assert.Equal(t, http.StatusNoContent, w.Code)
	require.NotEmpty(t, w.Result().Cookies())
	assert.Negative(t, w.Result().Cookies()[0].MaxAge)
}

// ── misc ─────────────────────────────────────────────────────────────────────

func TestEnvelope(t *testing.T) {
	env := setupTestEnv(t, func(c *config.Config) { c.APIEnvelope = true })
	token := env.login(t, "ana@example.com", "Cliente123!")

	w := env.do(t, http.MethodGet, "/api/productos", nil, withToken(token))
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Exito  bool                   `json:"exito"`
		Codigo int                    `json:"codigo"`
		Data   []dto.ProductoResponse `json:"data"`
	}
	decodeJSON(t, w, &body)
	assert.True(t, body.Exito)
	assert.Equal(t, 200, body.Codigo)
	assert.Len(t, body.Data, 2)

	// errors are never wrapped
	w = env.do(t, http.MethodGet, "/api/productos/999", nil, withToken(token))
	assert.Equal(t, http.StatusNotFound, w.Code)
	var errBody map[string]interface{}
	decodeJSON(t, w, &errBody)
	assert.NotContains(t, errBody, "exito")
}

func TestHealth(t *testing.T) {
	env := setupTestEnv(t)
	w := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	decodeJSON(t, w, &body)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "disabled", body["redis"])
}

func uintStr(id uint) string { return strconv.FormatUint(uint64(id), 10) }
