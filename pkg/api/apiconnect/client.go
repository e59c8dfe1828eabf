package apiconnect

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitsettle/pkg/api"
)

// SettlementServiceClient is a client for the SettlementService.
type SettlementServiceClient interface {
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

// NewSettlementServiceClient constructs a client for the SettlementService.
// baseURL is the server root, e.g. http://localhost:8080.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SettlementServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &settlementServiceClient{
		createSplit:      connect.NewClient[api.CreateSplitRequest, api.CreateSplitResponse](httpClient, baseURL+SettlementServiceCreateSplitProcedure, opts...),
		getSplit:         connect.NewClient[api.GetSplitRequest, api.GetSplitResponse](httpClient, baseURL+SettlementServiceGetSplitProcedure, opts...),
		listSplits:       connect.NewClient[api.ListSplitsRequest, api.ListSplitsResponse](httpClient, baseURL+SettlementServiceListSplitsProcedure, opts...),
		pay:              connect.NewClient[api.PayRequest, api.PayResponse](httpClient, baseURL+SettlementServicePayProcedure, opts...),
		decline:          connect.NewClient[api.DeclineRequest, api.DeclineResponse](httpClient, baseURL+SettlementServiceDeclineProcedure, opts...),
		markAsPaid:       connect.NewClient[api.MarkAsPaidRequest, api.MarkAsPaidResponse](httpClient, baseURL+SettlementServiceMarkAsPaidProcedure, opts...),
		sendReminder:     connect.NewClient[api.SendReminderRequest, api.SendReminderResponse](httpClient, baseURL+SettlementServiceSendReminderProcedure, opts...),
		closeSplit:       connect.NewClient[api.CloseSplitRequest, api.CloseSplitResponse](httpClient, baseURL+SettlementServiceCloseSplitProcedure, opts...),
		cancelSplit:      connect.NewClient[api.CancelSplitRequest, api.CancelSplitResponse](httpClient, baseURL+SettlementServiceCancelSplitProcedure, opts...),
		extendExpiration: connect.NewClient[api.ExtendExpirationRequest, api.ExtendExpirationResponse](httpClient, baseURL+SettlementServiceExtendExpirationProcedure, opts...),
		updateProfile:    connect.NewClient[api.UpdateProfileRequest, api.UpdateProfileResponse](httpClient, baseURL+SettlementServiceUpdateProfileProcedure, opts...),
	}
}

type settlementServiceClient struct {
	createSplit      *connect.Client[api.CreateSplitRequest, api.CreateSplitResponse]
	getSplit         *connect.Client[api.GetSplitRequest, api.GetSplitResponse]
	listSplits       *connect.Client[api.ListSplitsRequest, api.ListSplitsResponse]
	pay              *connect.Client[api.PayRequest, api.PayResponse]
	decline          *connect.Client[api.DeclineRequest, api.DeclineResponse]
	markAsPaid       *connect.Client[api.MarkAsPaidRequest, api.MarkAsPaidResponse]
	sendReminder     *connect.Client[api.SendReminderRequest, api.SendReminderResponse]
	closeSplit       *connect.Client[api.CloseSplitRequest, api.CloseSplitResponse]
	cancelSplit      *connect.Client[api.CancelSplitRequest, api.CancelSplitResponse]
	extendExpiration *connect.Client[api.ExtendExpirationRequest, api.ExtendExpirationResponse]
	updateProfile    *connect.Client[api.UpdateProfileRequest, api.UpdateProfileResponse]
}

func (c *settlementServiceClient) CreateSplit(ctx context.Context, req *connect.Request[api.CreateSplitRequest]) (*connect.Response[api.CreateSplitResponse], error) {
	return c.createSplit.CallUnary(ctx, req)
}

func (c *settlementServiceClient) GetSplit(ctx context.Context, req *connect.Request[api.GetSplitRequest]) (*connect.Response[api.GetSplitResponse], error) {
	return c.getSplit.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ListSplits(ctx context.Context, req *connect.Request[api.ListSplitsRequest]) (*connect.Response[api.ListSplitsResponse], error) {
	return c.listSplits.CallUnary(ctx, req)
}

func (c *settlementServiceClient) Pay(ctx context.Context, req *connect.Request[api.PayRequest]) (*connect.Response[api.PayResponse], error) {
	return c.pay.CallUnary(ctx, req)
}

func (c *settlementServiceClient) Decline(ctx context.Context, req *connect.Request[api.DeclineRequest]) (*connect.Response[api.DeclineResponse], error) {
	return c.decline.CallUnary(ctx, req)
}

func (c *settlementServiceClient) MarkAsPaid(ctx context.Context, req *connect.Request[api.MarkAsPaidRequest]) (*connect.Response[api.MarkAsPaidResponse], error) {
	return c.markAsPaid.CallUnary(ctx, req)
}

func (c *settlementServiceClient) SendReminder(ctx context.Context, req *connect.Request[api.SendReminderRequest]) (*connect.Response[api.SendReminderResponse], error) {
	return c.sendReminder.CallUnary(ctx, req)
}

func (c *settlementServiceClient) CloseSplit(ctx context.Context, req *connect.Request[api.CloseSplitRequest]) (*connect.Response[api.CloseSplitResponse], error) {
	return c.closeSplit.CallUnary(ctx, req)
}

func (c *settlementServiceClient) CancelSplit(ctx context.Context, req *connect.Request[api.CancelSplitRequest]) (*connect.Response[api.CancelSplitResponse], error) {
	return c.cancelSplit.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ExtendExpiration(ctx context.Context, req *connect.Request[api.ExtendExpirationRequest]) (*connect.Response[api.ExtendExpirationResponse], error) {
	return c.extendExpiration.CallUnary(ctx, req)
}

func (c *settlementServiceClient) UpdateProfile(ctx context.Context, req *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error) {
	return c.updateProfile.CallUnary(ctx, req)
}
