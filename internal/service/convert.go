package service

import (
	"github.com/mmynk/splitsettle/internal/models"
	"github.com/mmynk/splitsettle/internal/settlement"
	"github.com/mmynk/splitsettle/pkg/api"
)

func toAPISplit(res *settlement.Result) *api.Split {
	s := res.Split
	out := &api.Split{
		ID:                     s.ID,
		CreatorID:              s.CreatorID,
		Title:                  s.Title,
		Description:            s.Description,
		Emoji:                  s.Emoji,
		ImageURL:               s.ImageURL,
		TotalAmount:            s.TotalAmount.String(),
		SplitMode:              string(s.SplitMode),
		Status:                 string(s.Status),
		ExpiresAt:              s.ExpiresAt,
		TotalParticipants:      s.TotalParticipants,
		ActiveParticipantCount: s.ActiveParticipantCount,
		PaidCount:              s.PaidCount,
		TotalCollected:         s.TotalCollected.String(),
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
		CompletedAt:            s.CompletedAt,
		ClosedAt:               s.ClosedAt,
		CancelledAt:            s.CancelledAt,
	}
	if len(res.Participants) > 0 {
		out.Participants = make([]api.Participant, len(res.Participants))
		for i, p := range res.Participants {
			out.Participants[i] = toAPIParticipant(p)
		}
	}
	return out
}

func toAPIParticipant(p *models.Participant) api.Participant {
	return api.Participant{
		UserID:             p.UserID,
		Amount:             p.Amount.String(),
		Status:             string(p.Status),
		PaymentID:          p.PaymentID,
		TxHash:             p.TxHash,
		MarkedPaidNote:     p.MarkedPaidNote,
		MarkedPaidBy:       p.MarkedPaidBy,
		LastReminderSentAt: p.LastReminderSentAt,
		TotalReminderCount: p.TotalReminderCount,
		PaidAt:             p.PaidAt,
		DeclinedAt:         p.DeclinedAt,
	}
}

func toAPIProfile(u *models.User) *api.Profile {
	return &api.Profile{
		UserID:        u.ID,
		DisplayName:   u.DisplayName,
		WalletAddress: u.WalletAddress,
		CreatedAt:     u.CreatedAt,
	}
}
