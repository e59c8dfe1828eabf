// Package apiconnect wires the messages of package api to Connect handlers
// and clients for splitsettle.v1.SettlementService.
package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitsettle/pkg/api"
)

// SettlementServiceName is the fully-qualified name of the SettlementService service.
const SettlementServiceName = "splitsettle.v1.SettlementService"

// Procedure paths of the SettlementService RPCs.
const (
	SettlementServiceCreateSplitProcedure      = "/splitsettle.v1.SettlementService/CreateSplit"
	SettlementServiceGetSplitProcedure         = "/splitsettle.v1.SettlementService/GetSplit"
	SettlementServiceListSplitsProcedure       = "/splitsettle.v1.SettlementService/ListSplits"
	SettlementServicePayProcedure              = "/splitsettle.v1.SettlementService/Pay"
	SettlementServiceDeclineProcedure          = "/splitsettle.v1.SettlementService/Decline"
	SettlementServiceMarkAsPaidProcedure       = "/splitsettle.v1.SettlementService/MarkAsPaid"
	SettlementServiceSendReminderProcedure     = "/splitsettle.v1.SettlementService/SendReminder"
	SettlementServiceCloseSplitProcedure       = "/splitsettle.v1.SettlementService/CloseSplit"
	SettlementServiceCancelSplitProcedure      = "/splitsettle.v1.SettlementService/CancelSplit"
	SettlementServiceExtendExpirationProcedure = "/splitsettle.v1.SettlementService/ExtendExpiration"
	SettlementServiceUpdateProfileProcedure    = "/splitsettle.v1.SettlementService/UpdateProfile"
)

// SettlementServiceHandler is the server API for the SettlementService.
type SettlementServiceHandler interface {
	CreateSplit(context.Context, *connect.Request[api.CreateSplitRequest]) (*connect.Response[api.CreateSplitResponse], error)
	GetSplit(context.Context, *connect.Request[api.GetSplitRequest]) (*connect.Response[api.GetSplitResponse], error)
	ListSplits(context.Context, *connect.Request[api.ListSplitsRequest]) (*connect.Response[api.ListSplitsResponse], error)
	Pay(context.Context, *connect.Request[api.PayRequest]) (*connect.Response[api.PayResponse], error)
	Decline(context.Context, *connect.Request[api.DeclineRequest]) (*connect.Response[api.DeclineResponse], error)
	MarkAsPaid(context.Context, *connect.Request[api.MarkAsPaidRequest]) (*connect.Response[api.MarkAsPaidResponse], error)
	SendReminder(context.Context, *connect.Request[api.SendReminderRequest]) (*connect.Response[api.SendReminderResponse], error)
	CloseSplit(context.Context, *connect.Request[api.CloseSplitRequest]) (*connect.Response[api.CloseSplitResponse], error)
	CancelSplit(context.Context, *connect.Request[api.CancelSplitRequest]) (*connect.Response[api.CancelSplitResponse], error)
	ExtendExpiration(context.Context, *connect.Request[api.ExtendExpirationRequest]) (*connect.Response[api.ExtendExpirationResponse], error)
	UpdateProfile(context.Context, *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	readOnly := append([]connect.HandlerOption{connect.WithIdempotency(connect.IdempotencyNoSideEffects)}, opts...)

	handlers := map[string]http.Handler{
		SettlementServiceCreateSplitProcedure:      connect.NewUnaryHandler(SettlementServiceCreateSplitProcedure, svc.CreateSplit, opts...),
		SettlementServiceGetSplitProcedure:         connect.NewUnaryHandler(SettlementServiceGetSplitProcedure, svc.GetSplit, readOnly...),
		SettlementServiceListSplitsProcedure:       connect.NewUnaryHandler(SettlementServiceListSplitsProcedure, svc.ListSplits, readOnly...),
		SettlementServicePayProcedure:              connect.NewUnaryHandler(SettlementServicePayProcedure, svc.Pay, opts...),
		SettlementServiceDeclineProcedure:          connect.NewUnaryHandler(SettlementServiceDeclineProcedure, svc.Decline, opts...),
		SettlementServiceMarkAsPaidProcedure:       connect.NewUnaryHandler(SettlementServiceMarkAsPaidProcedure, svc.MarkAsPaid, opts...),
		SettlementServiceSendReminderProcedure:     connect.NewUnaryHandler(SettlementServiceSendReminderProcedure, svc.SendReminder, opts...),
		SettlementServiceCloseSplitProcedure:       connect.NewUnaryHandler(SettlementServiceCloseSplitProcedure, svc.CloseSplit, opts...),
		SettlementServiceCancelSplitProcedure:      connect.NewUnaryHandler(SettlementServiceCancelSplitProcedure, svc.CancelSplit, opts...),
		SettlementServiceExtendExpirationProcedure: connect.NewUnaryHandler(SettlementServiceExtendExpirationProcedure, svc.ExtendExpiration, opts...),
		SettlementServiceUpdateProfileProcedure:    connect.NewUnaryHandler(SettlementServiceUpdateProfileProcedure, svc.UpdateProfile, opts...),
	}

	return "/" + SettlementServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// UnimplementedSettlementServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedSettlementServiceHandler struct{}

func unimplemented(procedure string) error {
	name := procedure[strings.LastIndex(procedure, "/")+1:]
	return connect.NewError(connect.CodeUnimplemented, errors.New(SettlementServiceName+"."+name+" is not implemented"))
}

func (UnimplementedSettlementServiceHandler) CreateSplit(context.Context, *connect.Request[api.CreateSplitRequest]) (*connect.Response[api.CreateSplitResponse], error) {
	return nil, unimplemented(SettlementServiceCreateSplitProcedure)
}

func (UnimplementedSettlementServiceHandler) GetSplit(context.Context, *connect.Request[api.GetSplitRequest]) (*connect.Response[api.GetSplitResponse], error) {
	return nil, unimplemented(SettlementServiceGetSplitProcedure)
}

func (UnimplementedSettlementServiceHandler) ListSplits(context.Context, *connect.Request[api.ListSplitsRequest]) (*connect.Response[api.ListSplitsResponse], error) {
	return nil, unimplemented(SettlementServiceListSplitsProcedure)
}

func (UnimplementedSettlementServiceHandler) Pay(context.Context, *connect.Request[api.PayRequest]) (*connect.Response[api.PayResponse], error) {
	return nil, unimplemented(SettlementServicePayProcedure)
}

func (UnimplementedSettlementServiceHandler) Decline(context.Context, *connect.Request[api.DeclineRequest]) (*connect.Response[api.DeclineResponse], error) {
	return nil, unimplemented(SettlementServiceDeclineProcedure)
}

func (UnimplementedSettlementServiceHandler) MarkAsPaid(context.Context, *connect.Request[api.MarkAsPaidRequest]) (*connect.Response[api.MarkAsPaidResponse], error) {
	return nil, unimplemented(SettlementServiceMarkAsPaidProcedure)
}

func (UnimplementedSettlementServiceHandler) SendReminder(context.Context, *connect.Request[api.SendReminderRequest]) (*connect.Response[api.SendReminderResponse], error) {
	return nil, unimplemented(SettlementServiceSendReminderProcedure)
}

func (UnimplementedSettlementServiceHandler) CloseSplit(context.Context, *connect.Request[api.CloseSplitRequest]) (*connect.Response[api.CloseSplitResponse], error) {
	return nil, unimplemented(SettlementServiceCloseSplitProcedure)
}

func (UnimplementedSettlementServiceHandler) CancelSplit(context.Context, *connect.Request[api.CancelSplitRequest]) (*connect.Response[api.CancelSplitResponse], error) {
	return nil, unimplemented(SettlementServiceCancelSplitProcedure)
}

func (UnimplementedSettlementServiceHandler) ExtendExpiration(context.Context, *connect.Request[api.ExtendExpirationRequest]) (*connect.Response[api.ExtendExpirationResponse], error) {
	return nil, unimplemented(SettlementServiceExtendExpirationProcedure)
}

func (UnimplementedSettlementServiceHandler) UpdateProfile(context.Context, *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error) {
	return nil, unimplemented(SettlementServiceUpdateProfileProcedure)
}
