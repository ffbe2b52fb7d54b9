package http

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"

	"lending-ledger/internal/usecase/ledger"
)

type LoanHandler struct{ uc *ledger.Usecase }

func NewLoanHandler(uc *ledger.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type createLoanReq struct {
	CollateralAmount string `json:"collateral_amount" validate:"required,amount"`
	LoanAmount       string `json:"loan_amount"       validate:"required,amount"`
}

type activeLoansResp struct {
	Borrower string           `json:"borrower"`
	Loans    []ledger.LoanDTO `json:"loans"`
}

type totalResp struct {
	Borrower string `json:"borrower,omitempty"`
	Total    string `json:"total"`
}

// borrowerParam reads :borrower and returns its checksum form.
func borrowerParam(c echo.Context) (string, bool) {
	raw := c.Param("borrower")
	if !common.IsHexAddress(raw) {
		return "", false
	}
	return common.HexToAddress(raw).Hex(), true
}

func indexParam(c echo.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

func badBorrower(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid borrower address"})
}

func badIndex(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan index"})
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	borrower, ok := borrowerParam(c)
	if !ok {
		return badBorrower(c)
	}
	var req createLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.CreateLoan(c.Request().Context(), ledger.CreateLoanInput{
		Borrower:         borrower,
		CollateralAmount: req.CollateralAmount,
		LoanAmount:       req.LoanAmount,
	})
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) RepayLoan(c echo.Context) error {
	borrower, ok := borrowerParam(c)
	if !ok {
		return badBorrower(c)
	}
	idx, ok := indexParam(c)
	if !ok {
		return badIndex(c)
	}
	dto, err := h.uc.RepayLoan(c.Request().Context(), borrower, idx)
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	borrower, ok := borrowerParam(c)
	if !ok {
		return badBorrower(c)
	}
	idx, ok := indexParam(c)
	if !ok {
		return badIndex(c)
	}
	dto, found, err := h.uc.GetLoanDetails(c.Request().Context(), borrower, idx)
	if err != nil {
		return ledgerError(c, err)
	}
	if !found {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "loan not found"})
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) ActiveLoans(c echo.Context) error {
	borrower, ok := borrowerParam(c)
	if !ok {
		return badBorrower(c)
	}
	loans, err := h.uc.GetActiveLoans(c.Request().Context(), borrower)
	if err != nil {
		return ledgerError(c, err)
	}
	if loans == nil {
		loans = []ledger.LoanDTO{}
	}
	return c.JSON(http.StatusOK, activeLoansResp{Borrower: borrower, Loans: loans})
}

func (h *LoanHandler) TotalBorrowed(c echo.Context) error {
	borrower, ok := borrowerParam(c)
	if !ok {
		return badBorrower(c)
	}
	total, err := h.uc.GetTotalBorrowed(c.Request().Context(), borrower)
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(http.StatusOK, totalResp{Borrower: borrower, Total: total})
}

func (h *LoanHandler) TotalLent(c echo.Context) error {
	total, err := h.uc.GetTotalLent(c.Request().Context())
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(http.StatusOK, totalResp{Total: total})
}
