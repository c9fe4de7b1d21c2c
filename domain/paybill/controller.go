package paybill

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// IAccountStatusClient performs the synchronous identity check against
// the merchant's account-management backend.
type IAccountStatusClient interface {
	CheckAccountStatus(ctx context.Context, req *AccountStatusRequest) (*AccountStatusResponse, error)
}

type Controller struct {
	builder   *RequestBuilder
	channel   IAccountStatusClient
	status    ITransferStatusQuerier
	guard     *DuplicateGuard
	launcher  *Launcher
	assembler *Assembler
	journal   IJournal
}

func NewController(
	builder *RequestBuilder,
	channel IAccountStatusClient,
	status ITransferStatusQuerier,
	guard *DuplicateGuard,
	launcher *Launcher,
	assembler *Assembler,
	journal IJournal,
) *Controller {
	return &Controller{
		builder:   builder,
		channel:   channel,
		status:    status,
		guard:     guard,
		launcher:  launcher,
		assembler: assembler,
		journal:   journal,
	}
}

func (c *Controller) InitRoutes(app *fiber.App) {
	app.Post("/paybill/validation", c.postValidation)
	app.Post("/paybill/pay", c.postPay)
	app.Get("/paybill/transaction/:transactionId", c.getTransactionStatus)
	app.Post("/paybill/callback/success", c.postCallbackSuccess)
	app.Post("/paybill/callback/failure", c.postCallbackFailure)
}

// ErrorHandler is the single boundary translator for every error that
// escapes a handler. Wire it as the Fiber app's ErrorHandler.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(Response{Status: fiberErr.Code, Message: fiberErr.Message})
	}

	resp := Classify(err)
	return ctx.Status(resp.Status).JSON(resp)
}

func (c *Controller) postValidation(ctx *fiber.Ctx) error {
	var vc ValidationContext
	if err := json.Unmarshal(ctx.Body(), &vc); err != nil {
		return &ParseError{Err: err}
	}

	req, err := c.builder.BuildAccountStatusRequest(vc)
	if err != nil {
		return err
	}

	status, err := c.channel.CheckAccountStatus(ctx.Context(), req)
	if err != nil {
		return err
	}
	if !status.Exists {
		out := c.assembler.ValidationFailed()
		return ctx.Status(out.Status).JSON(out)
	}

	out, err := c.assembler.ValidationSucceeded(ctx.Context(), status)
	if err != nil {
		return err
	}
	return ctx.Status(out.Status).JSON(out)
}

func (c *Controller) postPay(ctx *fiber.Ctx) error {
	var req PayRequest
	if err := json.Unmarshal(ctx.Body(), &req); err != nil {
		return &ParseError{Err: err}
	}
	if req.TransactionID == "" {
		return &MissingFieldError{Field: "transactionId", Message: "Transaction id is required for PayBill payment"}
	}
	if req.OafValidationRef == "" {
		return &MissingFieldError{Field: "oafValidationRef", Message: "OAF validation reference is required for PayBill payment"}
	}

	if err := c.guard.Check(ctx.Context(), req.TransactionID); err != nil {
		return err
	}
	if err := c.launcher.Launch(ctx.Context(), req); err != nil {
		return err
	}

	out := c.assembler.PayAccepted(req.OafValidationRef)
	return ctx.Status(out.Status).JSON(out)
}

func (c *Controller) getTransactionStatus(ctx *fiber.Ctx) error {
	transactionID := ctx.Params("transactionId")
	if transactionID == "" {
		return &MissingFieldError{Field: "transactionId", Message: "Transaction id is required for transaction status check"}
	}

	body, err := c.status.QueryTransferStatus(ctx.Context(), transactionID)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		out := c.assembler.TransferStatus(nil)
		return ctx.Status(out.Status).JSON(out)
	}

	var status TransferStatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return &ParseError{Err: err}
	}

	out := c.assembler.TransferStatus(&status)
	return ctx.Status(out.Status).JSON(out)
}

func (c *Controller) postCallbackSuccess(ctx *fiber.Ctx) error {
	var status TransferStatusResponse
	if err := json.Unmarshal(ctx.Body(), &status); err != nil {
		return &ParseError{Err: err}
	}

	c.record(ctx.Context(), JournalEntry{
		TransactionID: status.TransactionID,
		TransferID:    status.TransferID,
		State:         status.TransferState,
	})

	out := c.assembler.TransferStatus(&status)
	return ctx.Status(out.Status).JSON(out)
}

func (c *Controller) postCallbackFailure(ctx *fiber.Ctx) error {
	var status TransferStatusResponse
	if len(ctx.Body()) > 0 {
		if err := json.Unmarshal(ctx.Body(), &status); err != nil {
			return &ParseError{Err: err}
		}
	}

	c.record(ctx.Context(), JournalEntry{
		TransactionID: status.TransactionID,
		TransferID:    status.TransferID,
		State:         TransferStateAborted,
	})

	out := c.assembler.TransferStatus(nil)
	return ctx.Status(out.Status).JSON(out)
}

// record journals a callback outcome; a journal fault must not flip the
// response already owed to the workflow engine.
func (c *Controller) record(ctx context.Context, entry JournalEntry) {
	if err := c.journal.Record(ctx, entry); err != nil {
		log.Errorf("journal write failed for transaction %s: %v", entry.TransactionID, err)
	}
}
