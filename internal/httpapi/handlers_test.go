package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudo-init-do/agroledger/internal/asset"
	"github.com/sudo-init-do/agroledger/internal/audit"
	"github.com/sudo-init-do/agroledger/internal/escrow"
	"github.com/sudo-init-do/agroledger/internal/identity"
	"github.com/sudo-init-do/agroledger/internal/loan"
	mware "github.com/sudo-init-do/agroledger/internal/middleware"
	"github.com/sudo-init-do/agroledger/internal/pool"
	"github.com/sudo-init-do/agroledger/internal/shared"
)

const (
	testSecret = "test-secret"
	authority  = shared.Address("authority")
	harvest    = shared.Address("HRVST")
)

type api struct {
	e     *echo.Echo
	token *asset.MemoryToken
}

func newAPI(t *testing.T) *api {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	events := audit.NewLog()

	reg := asset.NewRegistry()
	token := reg.Register(harvest, authority)
	require.NoError(t, token.Mint(context.Background(), authority, "loan-custody", big.NewInt(1_000_000)))

	ids := identity.NewService(identity.NewMemoryRepository(), authority, events, logger)
	loans := loan.NewService(loan.NewMemoryRepository(), ids, token, "loan-custody", events, logger)
	pools := pool.NewService(pool.NewMemoryRepository(), reg, "pool-custody", authority, events, logger)
	escrows := escrow.NewService(escrow.NewMemoryRepository(), reg, "escrow-custody", authority, events, logger)

	h := &Handler{
		Identity: ids,
		Loans:    loans,
		Pools:    pools,
		Escrows:  escrows,
		Assets:   reg,
		Audit:    events,
	}
	e := echo.New()
	h.Register(e, mware.Auth(testSecret))
	return &api{e: e, token: token}
}

func signToken(t *testing.T, wallet shared.Address, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"wallet": wallet.String(),
		"role":   role,
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (a *api) do(t *testing.T, method, path, body string, as shared.Address, role string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if as != "" {
		req.Header.Set("Authorization", "Bearer "+signToken(t, as, role))
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthIsPublic(t *testing.T) {
	a := newAPI(t)
	rec := a.do(t, http.MethodGet, "/health", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutesRequireToken(t *testing.T) {
	a := newAPI(t)
	rec := a.do(t, http.MethodGet, "/loans/1", "", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentityRoutes(t *testing.T) {
	a := newAPI(t)

	rec := a.do(t, http.MethodPost, "/identities", `{"did":"did:agro:bob"}`, "bob", "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(t, http.MethodPost, "/identities", `{"did":"did:agro:bob"}`, "carl", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "did already registered", decode(t, rec)["error"])

	rec = a.do(t, http.MethodGet, "/identities/bob/verified", "", "carl", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["verified"])

	// reputation writes take the authority role; the role gate fires first
	rec = a.do(t, http.MethodPatch, "/identities/bob/reputation", `{"score":900}`, "carl", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodPatch, "/identities/bob/reputation", `{"score":900}`, authority, mware.RoleAuthority)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodGet, "/identities/bob/reputation", "", "bob", "")
	assert.Equal(t, float64(900), decode(t, rec)["reputation_score"])
}

func TestLoanRoutes(t *testing.T) {
	a := newAPI(t)
	ctx := context.Background()

	rec := a.do(t, http.MethodPost, "/identities", `{"did":"did:agro:bob"}`, "bob", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	body := `{"principal":"1000","interest_rate_bps":850,"duration_secs":31536000}`
	rec = a.do(t, http.MethodPost, "/loans", body, "bob", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode(t, rec)
	assert.Equal(t, "1000", created["principal"])

	rec = a.do(t, http.MethodGet, "/loans/1/owed", "", "bob", "")
	assert.Equal(t, "1085", decode(t, rec)["total_owed"])

	// over-repayment maps to 400 with the ledger code intact
	require.NoError(t, a.token.Mint(ctx, authority, "bob", big.NewInt(85)))
	require.NoError(t, a.token.Approve(ctx, "bob", "loan-custody", big.NewInt(2000)))
	rec = a.do(t, http.MethodPost, "/loans/1/repay", `{"amount":"1200"}`, "bob", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "over repayment", decode(t, rec)["error"])

	rec = a.do(t, http.MethodPost, "/loans/1/repay", `{"amount":"1085"}`, "bob", "")
	require.Equal(t, http.StatusOK, rec.Code)
	repaid := decode(t, rec)
	assert.Equal(t, true, repaid["is_repaid"])

	rec = a.do(t, http.MethodGet, "/loans/9", "", "bob", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPoolRoutes(t *testing.T) {
	a := newAPI(t)
	ctx := context.Background()
	require.NoError(t, a.token.Mint(ctx, authority, "alice", big.NewInt(1000)))
	require.NoError(t, a.token.Approve(ctx, "alice", "pool-custody", big.NewInt(1000)))

	// pool creation is gated on the authority role
	rec := a.do(t, http.MethodPost, "/pools", `{"asset":"HRVST","interest_rate_bps":500}`, "alice", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodPost, "/pools", `{"asset":"HRVST","interest_rate_bps":500}`, authority, mware.RoleAuthority)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(t, http.MethodPost, "/pools/HRVST/deposit", `{"amount":"100"}`, "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodPost, "/pools/HRVST/issue", `{"borrower":"bob","amount":"60"}`, authority, mware.RoleAuthority)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodGet, "/pools/HRVST", "", "alice", "")
	info := decode(t, rec)
	assert.Equal(t, "100", info["total_liquidity"])
	assert.Equal(t, "60", info["total_borrowed"])
	assert.Equal(t, "40", info["available_liquidity"])

	rec = a.do(t, http.MethodPost, "/pools/HRVST/withdraw", `{"amount":"50"}`, "alice", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "insufficient pool liquidity", decode(t, rec)["error"])
}

func TestEscrowRoutes(t *testing.T) {
	a := newAPI(t)
	ctx := context.Background()
	require.NoError(t, a.token.Mint(ctx, authority, "buyer", big.NewInt(500)))
	require.NoError(t, a.token.Approve(ctx, "buyer", "escrow-custody", big.NewInt(500)))

	rec := a.do(t, http.MethodPost, "/escrows", `{"seller":"seller","amount":"250","asset":"HRVST"}`, "buyer", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	// settlement before delivery is a state conflict
	rec = a.do(t, http.MethodPost, "/escrows/1/complete", "", "seller", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid state", decode(t, rec)["error"])

	rec = a.do(t, http.MethodPost, "/escrows/1/fund", "", "buyer", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodPost, "/escrows/1/deliver", `{"proof":"waybill-9"}`, authority, mware.RoleAuthority)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodPost, "/escrows/1/complete", "", "seller", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "completed", decode(t, rec)["status"])

	rec = a.do(t, http.MethodPost, "/escrows/1/cancel", "", "buyer", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "escrow already settled", decode(t, rec)["error"])
}

func TestEventsLogGrows(t *testing.T) {
	a := newAPI(t)
	rec := a.do(t, http.MethodPost, "/identities", `{"did":"did:agro:bob"}`, "bob", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(t, http.MethodGet, "/events", "", "bob", "")
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode(t, rec)["events"].([]any)
	require.Len(t, events, 1)
	first := events[0].(map[string]any)
	assert.Equal(t, "identity.created", first["fact"])
}
