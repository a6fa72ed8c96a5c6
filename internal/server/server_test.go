package server_test

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"garthbid/internal/domain/entity"
	"garthbid/internal/domain/service/banker"
	"garthbid/internal/domain/service/dealflow"
	"garthbid/internal/domain/value"
	"garthbid/internal/infrastructure/mockdata"
	"garthbid/internal/server"
	"garthbid/pkg/contextx"
	"garthbid/pkg/errcodes"
	"garthbid/pkg/httpx"
	"garthbid/pkg/middlewarex"
	"garthbid/pkg/rest"
	"garthbid/pkg/tests"
)

type testEnv struct {
	client tests.APIClient
	http   *http.Client
	url    string
	clock  *clock.Mock
}

func sequentialIDs() func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

func maxAmount(v float64) *float64 { return &v }

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	now := time.Date(2026, time.February, 4, 10, 0, 0, 0, time.UTC) // Wednesday
	mock := clock.NewMock()
	mock.Set(now)

	deals := dealflow.NewService(dealflow.NewStore(), mock).WithIDGenerator(sequentialIDs())
	require.NoError(t, mockdata.SeedDeals(context.Background(), deals, now))

	market := banker.NewCompetitionSelector(time.Minute).WithGenerator(func(string) []entity.CompetingOffer {
		return banker.Rank([]entity.CompetingOffer{
			{APR: 6.0, TermMonths: 60, MaxAmount: maxAmount(25000)},
			{APR: 6.5, TermMonths: 48},
			{APR: 7.25, TermMonths: 36},
		})
	})

	console := banker.NewConsole(mockdata.BankerItems(now), mock,
		banker.NewLockClock(time.Monday, 12, time.UTC, value.LockOverrideNone)).
		WithSelector(market).
		WithIDGenerator(sequentialIDs())

	srv := server.NewServer(server.NewDealServer(deals), server.NewBankerServer(console))

	r := chi.NewRouter()
	r.Use(middlewarex.TraceID, middlewarex.Recovery)
	srv.RegisterRoutes(r)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	httpClient := &http.Client{Transport: httpx.NewLoggingRoundTripper(http.DefaultTransport)}

	return testEnv{
		client: tests.NewAPIClient(ts.URL, httpClient),
		http:   httpClient,
		url:    ts.URL,
		clock:  mock,
	}
}

func TestListDeals(t *testing.T) {
	env := newTestEnv(t)

	testCases := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{
			name:    "action required first",
			query:   "",
			wantIDs: []string{"GB-1001", "GB-1006", "GB-1007", "GB-1002", "GB-1003", "GB-1004", "GB-1005", "GB-1008"},
		},
		{name: "awaiting payment", query: "?filter=awaiting-payment", wantIDs: []string{"GB-1002", "GB-1003"}},
		{name: "funds released", query: "?filter=funds-released", wantIDs: []string{"GB-1005"}},
		{name: "search by seller", query: "?q=OVERLAND", wantIDs: []string{"GB-1002"}},
		{name: "search with filter", query: "?filter=complete&q=mustang", wantIDs: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			var list rest.DealList
			resp, err := env.client.Get(context.Background(), "/v1/deals"+tc.query, nil, &list, nil)
			rq.NoError(err)
			rq.Equal(http.StatusOK, resp.StatusCode)

			ids := make([]string, 0, len(list.Deals))
			for _, d := range list.Deals {
				ids = append(ids, d.ID)
			}
			rq.Equal(tc.wantIDs, ids)

			rq.Equal(8, list.Counts["all"])
			rq.Equal(3, list.Counts["action-required"])
		})
	}
}

func TestListDealsBadFilter(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)

	var errResp rest.Error
	resp, err := env.client.Get(context.Background(), "/v1/deals?filter=shipped", nil, nil, &errResp)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)
	rq.Equal(rest.ErrorCode(errcodes.InvalidDealFilter), errResp.Code)
	rq.NotEmpty(errResp.SupportID)
}

func TestDealSettlementOverHTTP(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t)

	var deal rest.Deal
	resp, err := env.client.Get(ctx, "/v1/deals/GB-1001", nil, &deal, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal("PAYMENT_RECEIVED", deal.Status)
	rq.True(deal.ActionRequired)
	rq.Equal(14500.0, deal.SalePrice)
	rq.Equal(725.0, deal.PlatformFee)
	rq.Equal(13775.0, deal.SellerPayout)

	steps := []struct {
		path       string
		wantStatus string
	}{
		{path: "mark-paid", wantStatus: "FUNDS_HELD"},
		{path: "release-funds", wantStatus: "FUNDS_HELD"},
		{path: "request-payout", wantStatus: "PAYOUT_REQUESTED"},
		{path: "send-payout", wantStatus: "COMPLETE"},
	}

	for _, step := range steps {
		resp, err = env.client.Post(ctx, "/v1/deals/GB-1001/"+step.path, nil, struct{}{}, &deal, nil)
		rq.NoError(err)
		rq.Equal(http.StatusOK, resp.StatusCode, step.path)
		rq.Equal(step.wantStatus, deal.Status, step.path)
	}

	rq.NotNil(deal.FundsReleasedAt)
	last := deal.Timeline[len(deal.Timeline)-1]
	rq.Equal("Payout sent", last.Event)
	rq.Equal("$13,775.00 sent to Chase ••••4321 (checking)", last.Note)

	var errResp rest.Error
	resp, err = env.client.Post(ctx, "/v1/deals/GB-1001/confirm-payment", nil, struct{}{}, nil, &errResp)
	rq.NoError(err)
	rq.Equal(http.StatusConflict, resp.StatusCode)
	rq.Equal(rest.ErrorCode(errcodes.InvalidDealTransition), errResp.Code)
}

func TestSendPayoutNeedsPayoutInfo(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t)

	var errResp rest.Error
	resp, err := env.client.Post(ctx, "/v1/deals/GB-1006/send-payout", nil, struct{}{}, nil, &errResp)
	rq.NoError(err)
	rq.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	rq.Equal(rest.ErrorCode(errcodes.PayoutInfoMissing), errResp.Code)

	errResp = rest.Error{}
	resp, err = env.client.Put(ctx, "/v1/deals/GB-1006/payout-info", nil,
		rest.PayoutInfo{BankName: "Chase", Last4: "12a4", AccountType: "checking"}, nil, &errResp)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)
	rq.Equal(rest.ErrorCode(errcodes.ValidationError), errResp.Code)

	var deal rest.Deal
	resp, err = env.client.Put(ctx, "/v1/deals/GB-1006/payout-info", nil,
		rest.PayoutInfo{BankName: "Chase", Last4: "4321", AccountType: "savings"}, &deal, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal("PAYOUT_REQUESTED", deal.Status)
	rq.NotNil(deal.Seller.PayoutInfo)

	resp, err = env.client.Post(ctx, "/v1/deals/GB-1006/send-payout", nil, struct{}{}, &deal, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal("COMPLETE", deal.Status)
}

func TestDealNotFound(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)

	var errResp rest.Error
	resp, err := env.client.Get(context.Background(), "/v1/deals/GB-4040", nil, nil, &errResp)
	rq.NoError(err)
	rq.Equal(http.StatusNotFound, resp.StatusCode)
	rq.Equal(rest.ErrorCode(errcodes.DealNotFound), errResp.Code)
}

func TestDealTimer(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)

	var countdown rest.Countdown
	resp, err := env.client.Get(context.Background(), "/v1/deals/GB-1002/timer", nil, &countdown, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal(rest.Countdown{Hours: 42}, countdown)

	var deal rest.Deal
	_, err = env.client.Get(context.Background(), "/v1/deals/GB-1003", nil, &deal, nil)
	rq.NoError(err)
	rq.True(deal.PaymentOverdue)
}

func TestDealTimerStreamEndsWhenExpired(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)

	resp, err := http.Get(env.url + "/v1/deals/GB-1003/timer/stream")
	rq.NoError(err)
	defer resp.Body.Close()

	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal("text/event-stream", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(resp.Body)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	rq.Equal([]string{"event: timer", `data: {"hours":0,"minutes":0,"seconds":0,"expired":true}`, ""}, lines)
}

func TestContactLink(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)

	var link rest.ContactLink
	resp, err := env.client.Get(context.Background(), "/v1/deals/GB-1001/contact/buyer", nil, &link, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.True(strings.HasPrefix(link.URL, "mailto:bidder42@example.com?subject="), link.URL)

	var errResp rest.Error
	resp, err = env.client.Get(context.Background(), "/v1/deals/GB-1001/contact/courier", nil, nil, &errResp)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)
	rq.Equal(rest.ErrorCode(errcodes.InvalidParty), errResp.Code)
}

func TestBankerSwipeFlow(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t)

	var queue rest.BankerQueue
	resp, err := env.client.Get(ctx, "/v1/banker/queue", nil, &queue, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal("item-1", queue.Current.ID)
	rq.Equal("item-2", queue.Next.ID)
	rq.Equal(8, queue.Remaining)
	rq.False(queue.Locked)
	rq.Equal(6.9, queue.EffectiveAPR)

	var swipe rest.SwipeResult
	resp, err = env.client.Post(ctx, "/v1/banker/swipe", nil, rest.SwipeRequest{Direction: "right"}, &swipe, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.False(swipe.NeedsConfirmation)
	rq.NotNil(swipe.Decision)
	rq.Equal("offered", swipe.Decision.State.Status)
	rq.Equal(3, swipe.Decision.Rank)

	// у item-2 нет VIN.
	swipe = rest.SwipeResult{}
	resp, err = env.client.Post(ctx, "/v1/banker/swipe", nil, rest.SwipeRequest{Direction: "right"}, &swipe, nil)
	rq.NoError(err)
	rq.True(swipe.NeedsConfirmation)
	rq.Equal("item-2", swipe.ItemID)
	rq.Equal([]string{"missingVin"}, swipe.RiskReasons)

	var decision rest.Decision
	resp, err = env.client.Post(ctx, "/v1/banker/confirm-risk", nil, struct{}{}, &decision, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal("item-2", decision.Item.ID)
	rq.True(decision.State.ConfirmedHighRisk)

	var standing rest.Standing
	resp, err = env.client.Get(ctx, "/v1/banker/items/item-1/standing", nil, &standing, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal(3, standing.MyRank)
	rq.Equal(6.0, standing.BestCompetingAPR)

	decision = rest.Decision{}
	resp, err = env.client.Post(ctx, "/v1/banker/items/item-1/beat-best", nil, struct{}{}, &decision, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal(5.95, decision.Offer.APR)
	rq.Equal(1, decision.Rank)

	var key rest.KeyResult
	resp, err = env.client.Post(ctx, "/v1/banker/keys", nil, rest.KeyRequest{Key: "z", Meta: true}, &key, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.True(key.Handled)
	rq.True(key.Undo.Undone)
	rq.Equal(6.9, key.Undo.Entry.PreviousOffer.APR)

	var undo rest.UndoResult
	for range 2 {
		undo = rest.UndoResult{}
		resp, err = env.client.Post(ctx, "/v1/banker/undo", nil, struct{}{}, &undo, nil)
		rq.NoError(err)
		rq.True(undo.Undone)
	}

	undo = rest.UndoResult{}
	resp, err = env.client.Post(ctx, "/v1/banker/undo", nil, struct{}{}, &undo, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.False(undo.Undone)
}

func TestBankerRiskGateOverHTTP(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t)

	resp, err := env.client.Put(ctx, "/v1/banker/filter", nil, rest.BankerFilter{Risk: "flagged"}, nil, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)

	var errResp rest.Error
	resp, err = env.client.Post(ctx, "/v1/banker/actions", nil, rest.ActionRequest{Action: "offer"}, nil, &errResp)
	rq.NoError(err)
	rq.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	rq.Equal(rest.ErrorCode(errcodes.RiskConfirmationRequired), errResp.Code)

	var decision rest.Decision
	resp, err = env.client.Post(ctx, "/v1/banker/actions", nil,
		rest.ActionRequest{Action: "offer", ConfirmedRisk: true}, &decision, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal("item-2", decision.Item.ID)

	var cancel rest.CancelRiskResponse
	resp, err = env.client.Post(ctx, "/v1/banker/cancel-risk", nil, struct{}{}, &cancel, nil)
	rq.NoError(err)
	rq.False(cancel.Cancelled)
}

func TestBankerCustomOfferAndNudge(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t)

	resp, err := env.client.Put(ctx, "/v1/banker/template", nil, rest.SetTemplateRequest{TemplateID: "aggressive"}, nil, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)

	var nudge rest.NudgeResponse
	resp, err = env.client.Post(ctx, "/v1/banker/nudge", nil, rest.NudgeRequest{Direction: "up"}, &nudge, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal(6.0, nudge.EffectiveAPR)

	term := 36
	var decision rest.Decision
	resp, err = env.client.Post(ctx, "/v1/banker/actions", nil,
		rest.ActionRequest{Action: "custom_offer", TermMonths: &term}, &decision, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal(6.0, decision.Offer.APR)
	rq.Equal(36, decision.Offer.TermMonths)
	rq.Equal("aggressive", decision.Offer.TemplateID)

	var errResp rest.Error
	resp, err = env.client.Put(ctx, "/v1/banker/template", nil, rest.SetTemplateRequest{TemplateID: "reckless"}, nil, &errResp)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)
	rq.Equal(rest.ErrorCode(errcodes.UnknownTemplate), errResp.Code)

	errResp = rest.Error{}
	resp, err = env.client.Post(ctx, "/v1/banker/swipe", nil, rest.SwipeRequest{Direction: "sideways"}, nil, &errResp)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)
	rq.Equal(rest.ErrorCode(errcodes.ValidationError), errResp.Code)
}

func TestBankerLocked(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t)

	env.clock.Set(time.Date(2026, time.February, 9, 12, 30, 0, 0, time.UTC)) // Monday

	var lock rest.LockStatus
	resp, err := env.client.Get(ctx, "/v1/banker/lock", nil, &lock, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.True(lock.Locked)
	rq.NotNil(lock.UnlocksAt)
	rq.Equal("2026-02-10T00:00:00Z", *lock.UnlocksAt)

	var errResp rest.Error
	resp, err = env.client.Post(ctx, "/v1/banker/swipe", nil, rest.SwipeRequest{Direction: "left"}, nil, &errResp)
	rq.NoError(err)
	rq.Equal(http.StatusLocked, resp.StatusCode)
	rq.Equal(rest.ErrorCode(errcodes.BankerLocked), errResp.Code)

	errResp = rest.Error{}
	resp, err = env.client.Post(ctx, "/v1/banker/undo", nil, struct{}{}, nil, &errResp)
	rq.NoError(err)
	rq.Equal(http.StatusLocked, resp.StatusCode)
}

func TestBankerLockStream(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(contextx.WithTraceID(context.Background(), "lock-stream"))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.url+"/v1/banker/lock/stream", http.NoBody)
	rq.NoError(err)

	resp, err := env.http.Do(req)
	rq.NoError(err)
	defer resp.Body.Close()

	rq.Equal("text/event-stream", resp.Header.Get("Content-Type"))
	rq.Equal("lock-stream", resp.Header.Get(httpx.HeaderTraceID))

	reader := bufio.NewReader(resp.Body)

	event, err := reader.ReadString('\n')
	rq.NoError(err)
	rq.Equal("event: lock\n", event)

	data, err := reader.ReadString('\n')
	rq.NoError(err)
	rq.Contains(data, `"locked":false`)
	rq.Contains(data, `"locksAt":"2026-02-09T12:00:00Z"`)
	rq.Contains(data, `"hours":122`)
}
