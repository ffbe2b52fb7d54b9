package command

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"lending-ledger/internal/usecase/ledger"
)

// Ledger is the subset of the loan ledger the router drives.
type Ledger interface {
	CreateLoan(ctx context.Context, in ledger.CreateLoanInput) (*ledger.LoanDTO, error)
	RepayLoan(ctx context.Context, borrower string, index int) (*ledger.LoanDTO, error)
	GetLoanDetails(ctx context.Context, borrower string, index int) (*ledger.LoanDTO, bool, error)
	GetActiveLoans(ctx context.Context, borrower string) ([]ledger.LoanDTO, error)
	GetTotalBorrowed(ctx context.Context, borrower string) (string, error)
}

const (
	usageCreate  = "Invalid format. Use: create loan <collateral_amount> <loan_amount>"
	usageRepay   = "Invalid format. Use: repay loan <loan_index>"
	usageDetails = "Invalid format. Use: loan details <loan_index>"

	msgInvalidIndex = "Invalid loan index"
	msgNotFound     = "Loan not found"
	msgNoActive     = "No active loans found"
	msgUnknown      = "Unknown command. Type 'lending help' for available commands."

	timeLayout = "2006-01-02 15:04:05 UTC"
)

// TODO: the help text advertises a 150% collateral ratio while
// loan.CollateralRatio enforces 120%; align the copy once product confirms the ratio.
const helpText = `Available lending commands:
1. create loan <collateral_amount> <loan_amount> - Create a new loan
2. repay loan <loan_index> - Repay an existing loan
3. loan details <loan_index> - Get details of a specific loan
4. active loans - List all your active loans
5. total borrowed - Get your total borrowed amount

Requirements:
- Minimum collateral: 100 tokens
- Maximum loan: 10,000 tokens
- Collateral ratio: 150%
- Loan duration: 30 days`

// Router turns free-text lending commands into ledger calls and renders the
// result as a chat reply. It never returns an error; failures become text.
type Router struct {
	ledger Ledger
}

func NewRouter(l Ledger) *Router { return &Router{ledger: l} }

// Handle processes one message sent by sender and returns the reply.
func (r *Router) Handle(ctx context.Context, message, sender string) (reply string) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("command: panic handling %q from %s: %v", message, sender, p)
			reply = "Error: internal error"
		}
	}()

	command := strings.ToLower(strings.TrimSpace(message))
	parts := strings.Fields(command)

	switch {
	case hasVerb(parts, "create", "loan"):
		if len(parts) != 4 {
			return usageCreate
		}
		return r.createLoan(ctx, sender, parts[2], parts[3])

	case hasVerb(parts, "repay", "loan"):
		if len(parts) != 3 {
			return usageRepay
		}
		idx, ok := parseIndex(parts[2])
		if !ok {
			return msgInvalidIndex
		}
		return r.repayLoan(ctx, sender, idx)

	case hasVerb(parts, "loan", "details"):
		if len(parts) != 3 {
			return usageDetails
		}
		idx, ok := parseIndex(parts[2])
		if !ok {
			return msgInvalidIndex
		}
		return r.loanDetails(ctx, sender, idx)

	case command == "active loans":
		return r.activeLoans(ctx, sender)

	case command == "total borrowed":
		return r.totalBorrowed(ctx, sender)

	case command == "help" || command == "lending help":
		return helpText
	}
	return msgUnknown
}

func (r *Router) createLoan(ctx context.Context, sender, collateral, amount string) string {
	l, err := r.ledger.CreateLoan(ctx, ledger.CreateLoanInput{
		Borrower:         sender,
		CollateralAmount: collateral,
		LoanAmount:       amount,
	})
	if err != nil {
		return errorReply(err)
	}
	return fmt.Sprintf("Loan created successfully!\nCollateral: %s tokens\nLoan amount: %s tokens\nDuration: 30 days",
		l.CollateralAmount, l.LoanAmount)
}

func (r *Router) repayLoan(ctx context.Context, sender string, idx int) string {
	l, err := r.ledger.RepayLoan(ctx, sender, idx)
	if err != nil {
		return errorReply(err)
	}
	return fmt.Sprintf("Loan repaid successfully!\nAmount: %s tokens", l.LoanAmount)
}

func (r *Router) loanDetails(ctx context.Context, sender string, idx int) string {
	l, found, err := r.ledger.GetLoanDetails(ctx, sender, idx)
	if err != nil {
		return errorReply(err)
	}
	if !found {
		return msgNotFound
	}
	status := "Repaid"
	if l.IsActive {
		status = "Active"
	}
	return fmt.Sprintf("Loan Details:\nBorrower: %s\nCollateral: %s tokens\nLoan amount: %s tokens\nStart time: %s\nEnd time: %s\nStatus: %s",
		l.Borrower, l.CollateralAmount, l.LoanAmount, formatUnix(l.StartTime), formatUnix(l.EndTime), status)
}

func (r *Router) activeLoans(ctx context.Context, sender string) string {
	loans, err := r.ledger.GetActiveLoans(ctx, sender)
	if err != nil {
		return errorReply(err)
	}
	if len(loans) == 0 {
		return msgNoActive
	}
	blocks := make([]string, 0, len(loans))
	for _, l := range loans {
		blocks = append(blocks, fmt.Sprintf("Loan %d:\nAmount: %s tokens\nCollateral: %s tokens\nEnd time: %s",
			l.Index, l.LoanAmount, l.CollateralAmount, formatUnix(l.EndTime)))
	}
	return strings.Join(blocks, "\n\n")
}

func (r *Router) totalBorrowed(ctx context.Context, sender string) string {
	total, err := r.ledger.GetTotalBorrowed(ctx, sender)
	if err != nil {
		return errorReply(err)
	}
	return fmt.Sprintf("Total borrowed: %s tokens", total)
}

func hasVerb(parts []string, first, second string) bool {
	return len(parts) >= 2 && parts[0] == first && parts[1] == second
}

func parseIndex(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func errorReply(err error) string {
	log.Printf("command: %v", err)
	return "Error: " + err.Error()
}

func formatUnix(sec int64) string { return time.Unix(sec, 0).UTC().Format(timeLayout) }
