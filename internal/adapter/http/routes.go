package http

import "github.com/labstack/echo/v4"

// Register mounts the ledger API on e. idem guards the mutating routes and
// may be nil when no idempotency store is configured.
func Register(e *echo.Echo, h *Handler, loans *LoanHandler, cmds *CommandHandler, idem echo.MiddlewareFunc) {
	var mw []echo.MiddlewareFunc
	if idem != nil {
		mw = append(mw, idem)
	}

	e.GET("/health", h.Health)

	b := e.Group("/borrowers/:borrower")
	b.POST("/loans", loans.CreateLoan, mw...)
	b.POST("/loans/:index/repay", loans.RepayLoan, mw...)
	b.GET("/loans/active", loans.ActiveLoans)
	b.GET("/loans/:index", loans.GetLoan)
	b.GET("/total-borrowed", loans.TotalBorrowed)

	e.GET("/ledger/total-lent", loans.TotalLent)
	e.POST("/commands", cmds.Run, mw...)
}
