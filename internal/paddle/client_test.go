package paddle

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paddle/internal/types"
	"paddle/internal/webhook"
)

// captured is what the fake vendor saw for one request.
type captured struct {
	Method      string
	Path        string
	EscapedPath string
	Query       url.Values
	Form        url.Values
	Header      http.Header
}

type fakeVendor struct {
	*httptest.Server

	mu   sync.Mutex
	last captured
	hits int
}

// newFakeVendor serves body with status for every request and records the
// most recent one.
func newFakeVendor(t *testing.T, status int, body string) *fakeVendor {
	t.Helper()
	fv := &fakeVendor{}
	fv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(raw))

		fv.mu.Lock()
		fv.last = captured{
			Method:      r.Method,
			Path:        r.URL.Path,
			EscapedPath: r.URL.EscapedPath(),
			Query:       r.URL.Query(),
			Form:        form,
			Header:      r.Header.Clone(),
		}
		fv.hits++
		fv.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(fv.Close)
	return fv
}

func (fv *fakeVendor) request() captured {
	fv.mu.Lock()
	defer fv.mu.Unlock()
	return fv.last
}

func (fv *fakeVendor) hitCount() int {
	fv.mu.Lock()
	defer fv.mu.Unlock()
	return fv.hits
}

func newTestClient(serverURL string, opts ...Option) *Client {
	return New(Config{
		VendorID:       1234,
		VendorAuthCode: types.SecretString("s3cret"),
		ServerURL:      serverURL,
		HTTPClient:     &http.Client{Timeout: 5 * time.Second},
	}, opts...)
}

func TestNew_Defaults(t *testing.T) {
	c := New(Config{VendorID: 1})
	assert.Equal(t, DefaultServerURL, c.ServerURL())
}

func TestNew_StripsOneTrailingSlash(t *testing.T) {
	assert.Equal(t, "https://example.com/api", New(Config{ServerURL: "https://example.com/api/"}).ServerURL())
	assert.Equal(t, "https://example.com/api", New(Config{ServerURL: "https://example.com/api"}).ServerURL())
}

func TestRequest_NoDoubleSlashAfterNormalization(t *testing.T) {
	fv := newFakeVendor(t, http.StatusOK, `{"success":true,"response":{"total":0,"count":0,"products":[]}}`)
	c := newTestClient(fv.URL + "/api/")

	_, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/product/get_products", fv.request().Path)
}

func TestRequest_CredentialsAndContentType(t *testing.T) {
	fv := newFakeVendor(t, http.StatusOK, `{"success":true,"response":{"total":1,"count":1,"products":[{"id":5,"name":"Pro","description":null,"base_price":9.5,"sale_price":null,"screenshots":[],"icon":"","currency":"USD"}]}}`)
	c := newTestClient(fv.URL)

	res, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, int64(5), res.Products[0].ID)
	assert.Nil(t, res.Products[0].Description)
	assert.Equal(t, types.CurrencyUSD, res.Products[0].Currency)

	got := fv.request()
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "application/x-www-form-urlencoded", got.Header.Get("Content-Type"))
	assert.Equal(t, url.Values{"vendor_id": {"1234"}, "vendor_auth_code": {"s3cret"}}, got.Form)
}

func TestRequest_VendorErrorExposesCode(t *testing.T) {
	fv := newFakeVendor(t, http.StatusOK, `{"success":false,"error":{"code":123,"message":"bad vendor id"}}`)
	c := newTestClient(fv.URL)

	_, err := c.ListPlans(context.Background(), ListPlansParams{})
	require.Error(t, err)

	apiErr, ok := IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 123, apiErr.Code)
	assert.Equal(t, "bad vendor id", apiErr.Message)
	assert.Contains(t, err.Error(), "123")
}

func TestRequest_FailureWithoutErrorObject(t *testing.T) {
	fv := newFakeVendor(t, http.StatusOK, `{"success":false}`)
	c := newTestClient(fv.URL)

	err := c.CancelUser(context.Background(), CancelUserParams{SubscriptionID: 1})
	apiErr, ok := IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 0, apiErr.Code)
}

func TestRequest_NonJSONBody(t *testing.T) {
	fv := newFakeVendor(t, http.StatusBadGateway, `<html>upstream down</html>`)
	c := newTestClient(fv.URL)

	_, err := c.ListUsers(context.Background(), ListUsersParams{})
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeUpstreamInvalidResponse, appErr.Code)
	assert.Equal(t, http.StatusBadGateway, appErr.Details["status"])

	_, isAPI := IsAPIError(err)
	assert.False(t, isAPI)
}

func TestListTransactions_PathAndBody(t *testing.T) {
	fv := newFakeVendor(t, http.StatusOK, `{"success":true,"response":[{"order_id":"1-2","status":"active","user":{"user_id":9,"email":"a@b.c","marketing_consent":true},"subscription":null}]}`)
	c := newTestClient(fv.URL)

	txs, err := c.ListTransactions(context.Background(), ListTransactionsParams{
		Entity:   EntityUser,
		EntityID: "42",
		Page:     Ptr(2),
	})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Nil(t, txs[0].Subscription)
	assert.Equal(t, int64(9), txs[0].User.UserID)

	got := fv.request()
	assert.Equal(t, "/user/42/transactions", got.Path)
	assert.Equal(t, url.Values{
		"page":             {"2"},
		"vendor_id":        {"1234"},
		"vendor_auth_code": {"s3cret"},
	}, got.Form)
}

func TestListTransactions_EscapesPathSegments(t *testing.T) {
	fv := newFakeVendor(t, http.StatusOK, `{"success":true,"response":[]}`)
	c := newTestClient(fv.URL)

	_, err := c.ListTransactions(context.Background(), ListTransactionsParams{Entity: EntityOrder, EntityID: "a/b"})
	require.NoError(t, err)
	assert.Equal(t, "/order/a%2Fb/transactions", fv.request().EscapedPath)
}

func TestCreateOneOffCharge_SubscriptionIDOnlyInPath(t *testing.T) {
	fv := newFakeVendor(t, http.StatusOK, `{"success":true,"response":{"invoice_id":1,"subscription_id":77,"amount":"5.00","currency":"USD","status":"pending"}}`)
	c := newTestClient(fv.URL)

	res, err := c.CreateOneOffCharge(context.Background(), CreateOneOffChargeParams{
		SubscriptionID: 77,
		Amount:         5,
		ChargeName:     "Extra seats",
	})
	require.NoError(t, err)
	assert.Equal(t, ChargePending, res.Status)

	got := fv.request()
	assert.Equal(t, "/subscription/77/charge", got.Path)
	assert.NotContains(t, got.Form, "subscription_id")
	assert.Equal(t, "5", got.Form.Get("amount"))
	assert.Equal(t, "Extra seats", got.Form.Get("charge_name"))
}

func TestRequest_ParamsCannotShadowCredentials(t *testing.T) {
	fv := newFakeVendor(t, http.StatusOK, `{"success":true,"response":{}}`)
	c := newTestClient(fv.URL)

	params := struct {
		VendorID       string `url:"vendor_id"`
		VendorAuthCode string `url:"vendor_auth_code"`
		Page           int    `url:"page"`
	}{"999", "forged", 3}

	_, err := post[map[string]any](context.Background(), c, "/alert/webhooks", params)
	require.NoError(t, err)

	got := fv.request()
	assert.Equal(t, []string{"1234"}, got.Form["vendor_id"])
	assert.Equal(t, []string{"s3cret"}, got.Form["vendor_auth_code"])
	assert.Equal(t, "3", got.Form.Get("page"))
}

func TestRequest_GETCarriesFormInQuery(t *testing.T) {
	fv := newFakeVendor(t, http.StatusOK, `{"success":true,"response":{"url":"https://pay.example/x"}}`)
	c := newTestClient(fv.URL)

	res, err := request[GeneratePayLinkResponse](context.Background(), c, http.MethodGet, "/product/generate_pay_link",
		GeneratePayLinkParams{ProductID: Ptr[int64](8)})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/x", res.URL)

	got := fv.request()
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "1234", got.Query.Get("vendor_id"))
	assert.Equal(t, "8", got.Query.Get("product_id"))
	assert.Empty(t, got.Form)
}

func TestRequest_InjectsHeaders(t *testing.T) {
	fv := newFakeVendor(t, http.StatusOK, `{"success":true}`)
	c := New(Config{VendorID: 1, ServerURL: fv.URL, UserAgent: "paddlectl/test"})

	ctx := types.WithRequestID(context.Background(), "req-123")
	require.NoError(t, c.DeleteModifier(ctx, DeleteModifierParams{ModifierID: 3}))

	got := fv.request()
	assert.Equal(t, "paddlectl/test", got.Header.Get("User-Agent"))
	assert.Equal(t, "req-123", got.Header.Get("X-Request-ID"))
	assert.Equal(t, "3", got.Form.Get("modifier_id"))
}

type failingTransport struct{ err error }

func (f failingTransport) RoundTrip(*http.Request) (*http.Response, error) { return nil, f.err }

func TestRequest_TransportErrorPassesThrough(t *testing.T) {
	boom := errors.New("connection refused")
	c := New(Config{
		VendorID:   1,
		ServerURL:  "https://vendor.invalid",
		HTTPClient: &http.Client{Transport: failingTransport{err: boom}},
	})

	_, err := c.ListCoupons(context.Background(), ListCouponsParams{ProductID: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var urlErr *url.Error
	assert.ErrorAs(t, err, &urlErr)

	var appErr *types.AppError
	assert.False(t, errors.As(err, &appErr))
	_, isAPI := IsAPIError(err)
	assert.False(t, isAPI)
}

func TestRequest_NoRetryOnServerError(t *testing.T) {
	fv := newFakeVendor(t, http.StatusInternalServerError, `oops`)
	c := newTestClient(fv.URL)

	_, err := c.ListPayments(context.Background(), ListPaymentsParams{})
	require.Error(t, err)
	assert.Equal(t, 1, fv.hitCount())
}

func TestWithCircuitBreaker_OpenStateSurfaced(t *testing.T) {
	boom := errors.New("dial tcp: refused")
	c := New(Config{
		VendorID:   1,
		ServerURL:  "https://vendor.invalid",
		HTTPClient: &http.Client{Transport: failingTransport{err: boom}},
	}, WithCircuitBreaker("paddle-test"))

	ctx := context.Background()
	for i := 0; i < 6; i++ {
		_, err := c.ListPlans(ctx, ListPlansParams{})
		require.ErrorIs(t, err, boom)
	}

	_, err := c.ListPlans(ctx, ListPlansParams{})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestWithCircuitBreaker_ServerErrorStillReturnsBody(t *testing.T) {
	fv := newFakeVendor(t, http.StatusServiceUnavailable, `{"success":false,"error":{"code":500,"message":"maintenance"}}`)
	c := newTestClient(fv.URL, WithCircuitBreaker("paddle-5xx"))

	_, err := c.ListPlans(context.Background(), ListPlansParams{})
	apiErr, ok := IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "maintenance", apiErr.Message)
}

func TestVerifyWebhook_RequiresPublicKey(t *testing.T) {
	c := New(Config{VendorID: 1})
	ok, err := c.VerifyWebhook(webhook.Payload{"alert_name": "transfer_paid", "p_signature": "abc"})
	assert.False(t, ok)
	assert.ErrorIs(t, err, webhook.ErrMissingPublicKey)
}
