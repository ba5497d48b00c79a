package payout_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal/kvstore/memory"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/payout"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/payout/kvrepo"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("Handler", func() {
	var (
		svc    *payout.Service
		router *chi.Mux
	)

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		svc = payout.NewService(kvrepo.New(memory.New(), "handler"), nil, payout.DefaultPolicy(), quietLogger())
		_, err := svc.Initialize(context.Background(), payout.DefaultSeed())
		Expect(err).NotTo(HaveOccurred())

		h := payout.NewHandler(svc, quietLogger())
		router = chi.NewRouter()
		router.Get("/admin/payouts", h.ListPending)
		router.Post("/admin/payouts/{id}/approve", h.Approve)
		router.Post("/admin/payouts/{id}/reject", h.Reject)
		router.Get("/admin/history", h.History)
		router.Get("/admin/stats", h.Stats)
		router.Post("/payouts", h.Submit)
		router.Get("/payment-methods", h.PaymentMethods)
		router.Get("/me/overview", h.Overview)
	})

	It("should list the seeded pending requests", func() {
		w := do(http.MethodGet, "/admin/payouts", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var resp payout.PendingResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(ids(resp.Requests)).To(Equal([]int64{1, 2, 4}))
	})

	It("should approve and then report a no-op for the same id", func() {
		w := do(http.MethodPost, "/admin/payouts/2/approve", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp payout.ResolveResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Resolved).To(BeTrue())
		Expect(resp.Request.RequestStatus).To(Equal(payout.StatusApproved))
		Expect(resp.Request.Timestamp).NotTo(BeNil())

		w = do(http.MethodPost, "/admin/payouts/2/reject", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"resolved":false}`))
	})

	It("should reject malformed ids", func() {
		w := do(http.MethodPost, "/admin/payouts/abc/approve", nil)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("INVALID_ID"))

		w = do(http.MethodPost, "/admin/payouts/0/reject", nil)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should serve history and stats after decisions", func() {
		do(http.MethodPost, "/admin/payouts/1/approve", nil)
		do(http.MethodPost, "/admin/payouts/4/reject", nil)

		w := do(http.MethodGet, "/admin/history", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var view payout.HistoryView
		Expect(json.NewDecoder(w.Body).Decode(&view)).To(Succeed())
		Expect(view.Requests).To(HaveLen(2))
		Expect(view.Summary.ApprovedCount).To(Equal(1))
		Expect(view.Summary.RejectedCount).To(Equal(1))

		w = do(http.MethodGet, "/admin/stats", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"totalUsers":3,"pendingCount":1,"approvedCount":1,"rejectedCount":1,"approvedAmountTotal":1200}`))
	})

	It("should create a pending request on submit", func() {
		w := do(http.MethodPost, "/payouts", map[string]interface{}{
			"name":          "Mike Johnson",
			"hours":         20,
			"earnings":      5000,
			"payoutAmount":  800,
			"paymentMethod": "PayPal",
		})
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created payout.PayoutRequest
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.ID).To(Equal(int64(5)))
		Expect(created.PayoutAmount.Equal(decimal.NewFromInt(800))).To(BeTrue())
	})

	It("should explain a submission below the minimum", func() {
		w := do(http.MethodPost, "/payouts", map[string]interface{}{
			"name":          "Mike Johnson",
			"payoutAmount":  100,
			"paymentMethod": "PayPal",
		})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("Minimum withdrawal limit not reached."))
	})

	It("should refuse unknown body fields", func() {
		w := do(http.MethodPost, "/payouts", map[string]interface{}{"requestStatus": "Approved"})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("INVALID_BODY"))
	})

	It("should serve payment methods and the overview", func() {
		w := do(http.MethodGet, "/payment-methods", nil)
		Expect(w.Body.String()).To(MatchJSON(`{"paymentMethods":["Wise","PayPal","Bitcoin","Gift Card"]}`))

		w = do(http.MethodGet, "/me/overview", nil)
		Expect(w.Body.String()).To(MatchJSON(`{"hoursRecorded":12.5,"totalEarnings":3250,"availableToPayout":1200,"minimumWithdrawal":500}`))
	})
})
