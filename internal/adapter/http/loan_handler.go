package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	domainFarmer "agripledge-backend/internal/domain/farmer"
	domainLoan "agripledge-backend/internal/domain/loan"
	domainProduce "agripledge-backend/internal/domain/produce"
	"agripledge-backend/internal/usecase/ledger"
	"agripledge-backend/internal/usecase/origination"
	"agripledge-backend/internal/usecase/revaluation"
)

type LoanHandler struct {
	origination *origination.Usecase
	ledger      *ledger.Usecase
	revaluation *revaluation.Usecase
}

func NewLoanHandler(o *origination.Usecase, l *ledger.Usecase, r *revaluation.Usecase) *LoanHandler {
	return &LoanHandler{origination: o, ledger: l, revaluation: r}
}

type applyReq struct {
	FarmerID     string  `json:"farmer_id"      validate:"required,hex32"`
	ProduceID    string  `json:"produce_id"     validate:"required,hex32"`
	RequestedLTV float64 `json:"requested_ltv"  validate:"gte=0,lte=1"`
	TermDays     int     `json:"term_days"      validate:"gte=0,lte=365"`
	Purpose      string  `json:"purpose"`
	Notes        string  `json:"notes"`
}

func (h *LoanHandler) Apply(c echo.Context) error {
	var req applyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	res, err := h.origination.Apply(c.Request().Context(), origination.ApplyInput{
		FarmerID:     req.FarmerID,
		ProduceID:    req.ProduceID,
		RequestedLTV: req.RequestedLTV,
		TermDays:     req.TermDays,
		Purpose:      req.Purpose,
		Notes:        req.Notes,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	if !res.Eligible {
		// declined, not failed: 200 with the reasons list
		return c.JSON(http.StatusOK, res)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	detail, err := h.ledger.GetByLoanID(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *LoanHandler) ListByFarmer(c echo.Context) error {
	loans, err := h.ledger.ListByFarmer(c.Request().Context(), c.Param("farmer_id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *LoanHandler) ListPending(c echo.Context) error {
	loans, err := h.ledger.ListPending(c.Request().Context())
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *LoanHandler) ListActive(c echo.Context) error {
	loans, err := h.ledger.ListActive(c.Request().Context())
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *LoanHandler) Stats(c echo.Context) error {
	stats, err := h.ledger.Stats(c.Request().Context())
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

type approveReq struct {
	ApproverID string `json:"approver_id" validate:"required,hex32"`
}

func (h *LoanHandler) Approve(c echo.Context) error {
	var req approveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	l, err := h.ledger.Approve(c.Request().Context(), c.Param("loan_id"), req.ApproverID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

type rejectReq struct {
	ApproverID string `json:"approver_id" validate:"required,hex32"`
	Reason     string `json:"reason"`
}

func (h *LoanHandler) Reject(c echo.Context) error {
	var req rejectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	l, err := h.ledger.Reject(c.Request().Context(), c.Param("loan_id"), req.ApproverID, req.Reason)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

type repayReq struct {
	Amount     float64 `json:"amount"      validate:"required,gt=0,dec2"`
	Method     string  `json:"method"      validate:"omitempty,oneof=cash mobile_money bank_transfer card other"`
	Reference  string  `json:"reference"`
	Note       string  `json:"note"`
	RecordedBy string  `json:"recorded_by" validate:"required,hex32"`
}

func (h *LoanHandler) Repay(c echo.Context) error {
	var req repayReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	res, err := h.ledger.Repay(c.Request().Context(), ledger.RepayInput{
		LoanID:     c.Param("loan_id"),
		Amount:     req.Amount,
		Method:     domainLoan.PaymentMethod(req.Method),
		Reference:  req.Reference,
		Note:       req.Note,
		RecordedBy: req.RecordedBy,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type revalueReq struct {
	CollateralValue float64 `json:"collateral_value" validate:"required,gt=0,dec2"`
}

func (h *LoanHandler) Revalue(c echo.Context) error {
	var req revalueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	l, err := h.revaluation.Revalue(c.Request().Context(), c.Param("loan_id"), req.CollateralValue)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *LoanHandler) MarginCheck(c echo.Context) error {
	triggered, err := h.revaluation.CheckAndFlag(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"triggered": triggered})
}

// writeDomainError maps engine sentinels onto HTTP statuses.
func writeDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domainLoan.ErrNotFound),
		errors.Is(err, domainFarmer.ErrNotFound),
		errors.Is(err, domainProduce.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainLoan.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainLoan.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainLoan.ErrPledgeConflict):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainLoan.ErrInvalidAmount):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
