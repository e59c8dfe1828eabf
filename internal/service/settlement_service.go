// Package service exposes the settlement engine over Connect RPC.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitsettle/internal/middleware"
	"github.com/mmynk/splitsettle/internal/models"
	"github.com/mmynk/splitsettle/internal/money"
	"github.com/mmynk/splitsettle/internal/settlement"
	"github.com/mmynk/splitsettle/pkg/api"
	"github.com/mmynk/splitsettle/pkg/api/apiconnect"
)

// SettlementService implements the Connect SettlementService
type SettlementService struct {
	apiconnect.UnimplementedSettlementServiceHandler
	engine *settlement.Engine
}

var _ apiconnect.SettlementServiceHandler = (*SettlementService)(nil)

// NewSettlementService creates a new SettlementService backed by engine.
func NewSettlementService(engine *settlement.Engine) *SettlementService {
	return &SettlementService{engine: engine}
}

// callerID returns the authenticated user or an Unauthenticated error.
func callerID(ctx context.Context) (string, error) {
	userID := strings.TrimSpace(middleware.GetUserID(ctx))
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errors.New("authentication required"))
	}
	return userID, nil
}

// toConnectError maps engine errors onto Connect codes.
func toConnectError(op string, err error) error {
	var code connect.Code
	switch {
	case errors.Is(err, settlement.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, settlement.ErrNotAuthorized):
		code = connect.CodePermissionDenied
	case errors.Is(err, settlement.ErrInvalidInput),
		errors.Is(err, settlement.ErrInvalidSplit),
		errors.Is(err, settlement.ErrAmountMismatch):
		code = connect.CodeInvalidArgument
	case errors.Is(err, settlement.ErrInvalidTransition),
		errors.Is(err, settlement.ErrPreconditionFailed),
		errors.Is(err, settlement.ErrExpired):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	default:
		slog.Error(op+" failed", "error", err)
		return connect.NewError(connect.CodeInternal, fmt.Errorf("%s failed", op))
	}
	return connect.NewError(code, err)
}

// CreateSplit creates a split with the caller as creator.
func (s *SettlementService) CreateSplit(ctx context.Context, req *connect.Request[api.CreateSplitRequest]) (*connect.Response[api.CreateSplitResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("CreateSplit request received",
		"title", req.Msg.Title,
		"total_amount", req.Msg.TotalAmount,
		"split_mode", req.Msg.SplitMode,
		"participants", len(req.Msg.Participants),
	)

	in, err := createInput(req.Msg)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	res, err := s.engine.Create(ctx, userID, in)
	if err != nil {
		return nil, toConnectError("CreateSplit", err)
	}
	return connect.NewResponse(&api.CreateSplitResponse{Split: toAPISplit(res)}), nil
}

func createInput(msg *api.CreateSplitRequest) (settlement.CreateInput, error) {
	total, err := money.Parse(msg.TotalAmount)
	if err != nil {
		return settlement.CreateInput{}, fmt.Errorf("total_amount: %w", err)
	}

	mode := models.SplitMode(msg.SplitMode)
	shares := make([]settlement.ParticipantShare, len(msg.Participants))
	for i, p := range msg.Participants {
		shares[i].UserID = p.UserID
		if mode != models.SplitModeCustom {
			continue
		}
		amount, err := money.Parse(p.Amount)
		if err != nil {
			return settlement.CreateInput{}, fmt.Errorf("participants[%d].amount: %w", i, err)
		}
		shares[i].Amount = amount
	}

	return settlement.CreateInput{
		Title:        msg.Title,
		Description:  msg.Description,
		Emoji:        msg.Emoji,
		ImageURL:     msg.ImageURL,
		TotalAmount:  total,
		SplitMode:    mode,
		Participants: shares,
		ExpiresAt:    msg.ExpiresAt,
	}, nil
}

// GetSplit returns a split with its participants.
func (s *SettlementService) GetSplit(ctx context.Context, req *connect.Request[api.GetSplitRequest]) (*connect.Response[api.GetSplitResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.GetSplit(ctx, userID, req.Msg.SplitID)
	if err != nil {
		return nil, toConnectError("GetSplit", err)
	}
	return connect.NewResponse(&api.GetSplitResponse{Split: toAPISplit(res)}), nil
}

// ListSplits returns the caller's splits, newest first.
func (s *SettlementService) ListSplits(ctx context.Context, req *connect.Request[api.ListSplitsRequest]) (*connect.Response[api.ListSplitsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	results, err := s.engine.ListSplits(ctx, userID)
	if err != nil {
		return nil, toConnectError("ListSplits", err)
	}

	splits := make([]*api.Split, len(results))
	for i, res := range results {
		splits[i] = toAPISplit(res)
	}
	slog.Debug("ListSplits successful", "user_id", userID, "count", len(splits))
	return connect.NewResponse(&api.ListSplitsResponse{Splits: splits}), nil
}

// Pay records the caller's payment.
func (s *SettlementService) Pay(ctx context.Context, req *connect.Request[api.PayRequest]) (*connect.Response[api.PayResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Pay(ctx, userID, settlement.PayInput{SplitID: req.Msg.SplitID, TxHash: req.Msg.TxHash})
	if err != nil {
		return nil, toConnectError("Pay", err)
	}
	return connect.NewResponse(&api.PayResponse{
		Split:     toAPISplit(&res.Result),
		PaymentID: res.PaymentID,
		Repeat:    res.Repeat,
	}), nil
}

// Decline declines the caller's share.
func (s *SettlementService) Decline(ctx context.Context, req *connect.Request[api.DeclineRequest]) (*connect.Response[api.DeclineResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Decline(ctx, userID, req.Msg.SplitID)
	if err != nil {
		return nil, toConnectError("Decline", err)
	}
	return connect.NewResponse(&api.DeclineResponse{Split: toAPISplit(res)}), nil
}

// MarkAsPaid records a participant's share as settled outside the app.
func (s *SettlementService) MarkAsPaid(ctx context.Context, req *connect.Request[api.MarkAsPaidRequest]) (*connect.Response[api.MarkAsPaidResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.MarkAsPaidOutsideApp(ctx, userID, settlement.MarkPaidInput{
		SplitID:       req.Msg.SplitID,
		ParticipantID: req.Msg.ParticipantID,
		Note:          req.Msg.Note,
	})
	if err != nil {
		return nil, toConnectError("MarkAsPaid", err)
	}
	return connect.NewResponse(&api.MarkAsPaidResponse{Split: toAPISplit(res)}), nil
}

// SendReminder reminds pending participants and reports each outcome.
func (s *SettlementService) SendReminder(ctx context.Context, req *connect.Request[api.SendReminderRequest]) (*connect.Response[api.SendReminderResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.SendReminder(ctx, userID, settlement.ReminderInput{
		SplitID:        req.Msg.SplitID,
		ParticipantIDs: req.Msg.ParticipantIDs,
	})
	if err != nil {
		return nil, toConnectError("SendReminder", err)
	}

	results := make([]api.ReminderResult, len(res.Outcomes))
	for i, o := range res.Outcomes {
		results[i] = api.ReminderResult{
			UserID:      o.UserID,
			DisplayName: o.DisplayName,
			Sent:        o.Sent,
			Reason:      string(o.Reason),
			Message:     o.Message,
		}
		if !o.RetryAt.IsZero() {
			results[i].RetryAt = o.RetryAt.Unix()
		}
	}
	return connect.NewResponse(&api.SendReminderResponse{
		Split:     toAPISplit(&res.Result),
		Results:   results,
		SentCount: res.SentCount(),
	}), nil
}

// CloseSplit closes a split that has collected at least one payment.
func (s *SettlementService) CloseSplit(ctx context.Context, req *connect.Request[api.CloseSplitRequest]) (*connect.Response[api.CloseSplitResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Close(ctx, userID, req.Msg.SplitID)
	if err != nil {
		return nil, toConnectError("CloseSplit", err)
	}
	return connect.NewResponse(&api.CloseSplitResponse{Split: toAPISplit(res)}), nil
}

// CancelSplit cancels a split nobody has paid yet.
func (s *SettlementService) CancelSplit(ctx context.Context, req *connect.Request[api.CancelSplitRequest]) (*connect.Response[api.CancelSplitResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Cancel(ctx, userID, req.Msg.SplitID)
	if err != nil {
		return nil, toConnectError("CancelSplit", err)
	}
	return connect.NewResponse(&api.CancelSplitResponse{Split: toAPISplit(res)}), nil
}

// ExtendExpiration moves the split's deadline later.
func (s *SettlementService) ExtendExpiration(ctx context.Context, req *connect.Request[api.ExtendExpirationRequest]) (*connect.Response[api.ExtendExpirationResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.ExtendExpiration(ctx, userID, settlement.ExtendInput{
		SplitID:   req.Msg.SplitID,
		ExpiresAt: req.Msg.ExpiresAt,
	})
	if err != nil {
		return nil, toConnectError("ExtendExpiration", err)
	}
	return connect.NewResponse(&api.ExtendExpirationResponse{Split: toAPISplit(res)}), nil
}

// UpdateProfile stores the caller's display name and wallet address.
func (s *SettlementService) UpdateProfile(ctx context.Context, req *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.engine.UpdateProfile(ctx, userID, settlement.ProfileInput{
		DisplayName:   req.Msg.DisplayName,
		WalletAddress: req.Msg.WalletAddress,
	})
	if err != nil {
		return nil, toConnectError("UpdateProfile", err)
	}

	return connect.NewResponse(&api.UpdateProfileResponse{Profile: toAPIProfile(user)}), nil
}
