package http

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
)

// Commander handles one free-text command on behalf of sender.
type Commander interface {
	Handle(ctx context.Context, message, sender string) string
}

type CommandHandler struct{ router Commander }

func NewCommandHandler(r Commander) *CommandHandler { return &CommandHandler{router: r} }

type commandReq struct {
	Sender  string `json:"sender"  validate:"required,evmaddr"`
	Command string `json:"command" validate:"required,max=512"`
}

type commandResp struct {
	Reply string `json:"reply"`
}

// Run executes a chat-style command for an address-identified sender. The
// reply text is identical to what the bot would send.
func (h *CommandHandler) Run(c echo.Context) error {
	var req commandReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	sender := common.HexToAddress(req.Sender).Hex()
	reply := h.router.Handle(c.Request().Context(), req.Command, sender)
	return c.JSON(http.StatusOK, commandResp{Reply: reply})
}
