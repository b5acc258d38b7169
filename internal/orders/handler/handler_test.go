package handler

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphtrust/internal/orders"
	"graphtrust/pkg/testutil"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, err := orders.NewService(orders.NewInMemoryStore())
	require.NoError(t, err)
	r := chi.NewRouter()
	New(svc, slog.New(slog.DiscardHandler)).Register(r)
	return r
}

func TestHandleUpsertOrder(t *testing.T) {
	router := newRouter(t)

	t.Run("records delivered order with numeric ids", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequestWithBody(http.MethodPut, "/orders/77", `{"buyer_id":1,"seller_id":2,"status":"Delivered"}`))

		require.Equal(t, http.StatusOK, rr.Code)
		resp := testutil.UnmarshalResponse[OrderResponse](t, rr)
		assert.Equal(t, "77", resp.OrderID)
		assert.Equal(t, "1", resp.BuyerID)
		assert.Equal(t, "delivered", resp.Status)
	})

	t.Run("different buyer conflicts", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequestWithBody(http.MethodPut, "/orders/77", `{"buyer_id":5,"status":"shipped"}`))
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequestWithBody(http.MethodPut, "/orders/78", `{"buyer_id":1,"status":"teleported"}`))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})

	t.Run("malformed body", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequestWithBody(http.MethodPut, "/orders/79", `{`))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
