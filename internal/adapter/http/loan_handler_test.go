package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"lending-ledger/internal/adapter/repository/memory"
	domain "lending-ledger/internal/domain/loan"
	"lending-ledger/internal/testutil/loanmock"
	"lending-ledger/internal/usecase/ledger"
)

const (
	borrowerLower    = "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"
	borrowerChecksum = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
)

// -------- helpers --------

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

// newAPI wires the full route table over repo without idempotency.
func newAPI(repo domain.Repository) *echo.Echo {
	e := newEchoWithValidator()
	uc := ledger.NewUsecase(repo, ledger.WithClock(func() time.Time { return time.Unix(1_700_000_000, 0) }))
	Register(e, NewHandler(), NewLoanHandler(uc), NewCommandHandler(stubCommander{}), nil)
	return e
}

func serve(e *echo.Echo, method, target string, body any) *httptest.ResponseRecorder {
	var req *stdhttp.Request
	if body != nil {
		req = httptest.NewRequest(method, target, mustJSON(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("bad json: %v; raw=%s", err, rec.Body.String())
	}
	return v
}

func loansPath(borrower string) string { return "/borrowers/" + borrower + "/loans" }

// -------- tests --------

func TestCreateLoan_Success(t *testing.T) {
	e := newAPI(memory.NewLoanRepository())

	rec := serve(e, stdhttp.MethodPost, loansPath(borrowerLower), map[string]string{
		"collateral_amount": "150",
		"loan_amount":       "100",
	})
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201; body=%s", rec.Code, rec.Body.String())
	}
	got := decode[ledger.LoanDTO](t, rec)
	if got.Borrower != borrowerChecksum {
		t.Fatalf("borrower = %q, want checksum form %q", got.Borrower, borrowerChecksum)
	}
	if got.CollateralAmount != "150" || got.LoanAmount != "100" {
		t.Fatalf("unexpected amounts: %+v", got)
	}
	if got.Index != 0 || !got.IsActive || got.Status != string(domain.StatusActive) {
		t.Fatalf("unexpected dto: %+v", got)
	}
	if got.EndTime-got.StartTime != domain.DurationSeconds {
		t.Fatalf("duration = %d, want %d", got.EndTime-got.StartTime, domain.DurationSeconds)
	}
}

func TestCreateLoan_InvalidBorrower(t *testing.T) {
	e := newAPI(&loanmock.Repo{}) // must not be reached

	rec := serve(e, stdhttp.MethodPost, loansPath("alice"), map[string]string{
		"collateral_amount": "150",
		"loan_amount":       "100",
	})
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateLoan_BindError(t *testing.T) {
	e := newEchoWithValidator()
	h := NewLoanHandler(ledger.NewUsecase(&loanmock.Repo{}))

	req := httptest.NewRequest(stdhttp.MethodPost, "/", strings.NewReader(`{"collateral_amount":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("borrower")
	c.SetParamValues(borrowerLower)

	if err := h.CreateLoan(c); err != nil {
		t.Fatalf("CreateLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if er := decode[ErrorResponse](t, rec); er.Error != "invalid body" {
		t.Fatalf("error = %q, want %q", er.Error, "invalid body")
	}
}

func TestCreateLoan_ValidationError(t *testing.T) {
	e := newAPI(&loanmock.Repo{})

	rec := serve(e, stdhttp.MethodPost, loansPath(borrowerLower), map[string]string{
		"collateral_amount": "-5",
	})
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	er := decode[ErrorResponse](t, rec)
	if er.Error != "validation failed" {
		t.Fatalf("error = %q, want %q", er.Error, "validation failed")
	}
	if !containsFieldMsg(er.Details, "CollateralAmount", "non-negative decimal") {
		t.Fatalf("missing amount detail: %+v", er.Details)
	}
	if !containsFieldMsg(er.Details, "LoanAmount", "is required") {
		t.Fatalf("missing required detail: %+v", er.Details)
	}
}

func TestCreateLoan_RuleViolations(t *testing.T) {
	cases := []struct {
		collateral, amount string
		want               error
	}{
		{"99", "50", domain.ErrCollateralTooSmall},
		{"20000", "10001", domain.ErrLoanTooLarge},
		{"119", "100", domain.ErrInsufficientCollateral},
	}
	for _, tc := range cases {
		e := newAPI(memory.NewLoanRepository())
		rec := serve(e, stdhttp.MethodPost, loansPath(borrowerLower), map[string]string{
			"collateral_amount": tc.collateral,
			"loan_amount":       tc.amount,
		})
		if rec.Code != stdhttp.StatusUnprocessableEntity {
			t.Fatalf("%s/%s: status = %d, want 422", tc.collateral, tc.amount, rec.Code)
		}
		if er := decode[ErrorResponse](t, rec); er.Error != tc.want.Error() {
			t.Fatalf("%s/%s: error = %q, want %q", tc.collateral, tc.amount, er.Error, tc.want.Error())
		}
	}
}

func TestCreateLoan_StoreFailure(t *testing.T) {
	repo := &loanmock.Repo{
		FindFn: func(ctx context.Context, f domain.Filter) ([]domain.Loan, error) {
			return nil, errors.New("connection refused")
		},
	}
	e := newAPI(repo)

	rec := serve(e, stdhttp.MethodPost, loansPath(borrowerLower), map[string]string{
		"collateral_amount": "150",
		"loan_amount":       "100",
	})
	if rec.Code != stdhttp.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if er := decode[ErrorResponse](t, rec); strings.Contains(er.Error, "connection refused") {
		t.Fatalf("store cause leaked to client: %q", er.Error)
	}
}

func TestRepayAndDetails_Flow(t *testing.T) {
	e := newAPI(memory.NewLoanRepository())
	base := loansPath(borrowerLower)

	for _, amt := range []string{"100", "200"} {
		rec := serve(e, stdhttp.MethodPost, base, map[string]string{"collateral_amount": "500", "loan_amount": amt})
		if rec.Code != stdhttp.StatusCreated {
			t.Fatalf("create %s: status = %d", amt, rec.Code)
		}
	}

	rec := serve(e, stdhttp.MethodPost, base+"/0/repay", nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("repay: status = %d, body=%s", rec.Code, rec.Body.String())
	}
	if got := decode[ledger.LoanDTO](t, rec); got.IsActive || got.Status != string(domain.StatusRepaid) {
		t.Fatalf("repaid dto still active: %+v", got)
	}

	rec = serve(e, stdhttp.MethodPost, base+"/0/repay", nil)
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("second repay: status = %d, want 409", rec.Code)
	}

	rec = serve(e, stdhttp.MethodPost, base+"/9/repay", nil)
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("repay missing: status = %d, want 404", rec.Code)
	}

	rec = serve(e, stdhttp.MethodGet, base+"/1", nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("details: status = %d", rec.Code)
	}
	if got := decode[ledger.LoanDTO](t, rec); got.Index != 1 || got.LoanAmount != "200" {
		t.Fatalf("details dto: %+v", got)
	}

	rec = serve(e, stdhttp.MethodGet, base+"/5", nil)
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("details missing: status = %d, want 404", rec.Code)
	}

	rec = serve(e, stdhttp.MethodGet, base+"/active", nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("active: status = %d", rec.Code)
	}
	active := decode[activeLoansResp](t, rec)
	if len(active.Loans) != 1 || active.Loans[0].Index != 1 {
		t.Fatalf("active loans: %+v", active)
	}

	rec = serve(e, stdhttp.MethodGet, "/borrowers/"+borrowerLower+"/total-borrowed", nil)
	if got := decode[totalResp](t, rec); got.Total != "300" || got.Borrower != borrowerChecksum {
		t.Fatalf("total borrowed: %+v", got)
	}

	rec = serve(e, stdhttp.MethodGet, "/ledger/total-lent", nil)
	if got := decode[totalResp](t, rec); got.Total != "300" {
		t.Fatalf("total lent: %+v", got)
	}
}

func TestIndexParam_Invalid(t *testing.T) {
	e := newAPI(memory.NewLoanRepository())
	for _, idx := range []string{"-1", "abc", "1.5"} {
		rec := serve(e, stdhttp.MethodGet, loansPath(borrowerLower)+"/"+idx, nil)
		if rec.Code != stdhttp.StatusBadRequest {
			t.Fatalf("index %q: status = %d, want 400", idx, rec.Code)
		}
		rec = serve(e, stdhttp.MethodPost, loansPath(borrowerLower)+"/"+idx+"/repay", nil)
		if rec.Code != stdhttp.StatusBadRequest {
			t.Fatalf("repay index %q: status = %d, want 400", idx, rec.Code)
		}
	}
}

func TestActiveLoans_EmptyIsArray(t *testing.T) {
	e := newAPI(memory.NewLoanRepository())

	rec := serve(e, stdhttp.MethodGet, loansPath(borrowerLower)+"/active", nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"loans":[]`) {
		t.Fatalf("want empty array, got %s", rec.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		domain.ErrParse:                            stdhttp.StatusUnprocessableEntity,
		domain.ErrCollateralTooSmall:               stdhttp.StatusUnprocessableEntity,
		domain.ErrLoanTooLarge:                     stdhttp.StatusUnprocessableEntity,
		domain.ErrInsufficientCollateral:           stdhttp.StatusUnprocessableEntity,
		domain.ErrLoanNotFound:                     stdhttp.StatusNotFound,
		domain.ErrLoanNotActive:                    stdhttp.StatusConflict,
		domain.ErrLoanExpired:                      stdhttp.StatusConflict,
		domain.StoreFailure(errors.New("timeout")): stdhttp.StatusServiceUnavailable,
		errors.New("boom"):                         stdhttp.StatusInternalServerError,
	}
	for err, want := range cases {
		if got := statusFor(err); got != want {
			t.Fatalf("statusFor(%v) = %d, want %d", err, got, want)
		}
	}
}
