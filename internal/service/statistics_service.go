package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/verif-backoffice/internal/domain"
	"github.com/spec-kit/verif-backoffice/internal/repository"
)

// Statistics is the dashboard summary.
type Statistics struct {
	Submissions   SubmissionStatistics `json:"submissions"`
	Refunds       RefundStatistics     `json:"refunds"`
	Contacts      ContactStatistics    `json:"contacts"`
	Admins        AdminStatistics      `json:"admins"`
	Notifications NotificationCounters `json:"notifications"`
}

// SubmissionStatistics aggregates coupon submissions.
type SubmissionStatistics struct {
	Total            int             `json:"total"`
	ByStatus         map[string]int  `json:"byStatus"`
	ByType           map[string]int  `json:"byType"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	VerifiedAmount   decimal.Decimal `json:"verifiedAmount"`
	AverageAmount    decimal.Decimal `json:"averageAmount"`
	VerificationRate decimal.Decimal `json:"verificationRate"`
	RejectionRate    decimal.Decimal `json:"rejectionRate"`
}

// RefundStatistics aggregates refund requests.
type RefundStatistics struct {
	Total          int             `json:"total"`
	ByStatus       map[string]int  `json:"byStatus"`
	TotalRequested decimal.Decimal `json:"totalRequested"`
	TotalRefunded  decimal.Decimal `json:"totalRefunded"`
}

// ContactStatistics counts contact messages.
type ContactStatistics struct {
	Total  int `json:"total"`
	Unread int `json:"unread"`
}

// AdminStatistics counts admin accounts.
type AdminStatistics struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
}

// NotificationCounters counts notifications.
type NotificationCounters struct {
	Unread int `json:"unread"`
}

// StatisticsService computes dashboard aggregates.
type StatisticsService struct {
	submissions   repository.SubmissionRepository
	refunds       repository.RefundRepository
	contacts      repository.ContactRepository
	admins        repository.AdminRepository
	notifications repository.NotificationRepository
}

// StatisticsDependencies bundles repositories for the statistics service.
type StatisticsDependencies struct {
	SubmissionRepo   repository.SubmissionRepository
	RefundRepo       repository.RefundRepository
	ContactRepo      repository.ContactRepository
	AdminRepo        repository.AdminRepository
	NotificationRepo repository.NotificationRepository
}

// NewStatisticsService constructs the service.
func NewStatisticsService(deps StatisticsDependencies) *StatisticsService {
	return &StatisticsService{
		submissions:   deps.SubmissionRepo,
		refunds:       deps.RefundRepo,
		contacts:      deps.ContactRepo,
		admins:        deps.AdminRepo,
		notifications: deps.NotificationRepo,
	}
}

// Compute reads every collection and builds the summary.
func (s *StatisticsService) Compute(ctx context.Context) (*Statistics, error) {
	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{})
	if err != nil {
		return nil, err
	}
	refunds, err := s.refunds.List(ctx, repository.RefundFilter{})
	if err != nil {
		return nil, err
	}
	contacts, err := s.contacts.List(ctx, false)
	if err != nil {
		return nil, err
	}
	admins, err := s.admins.List(ctx)
	if err != nil {
		return nil, err
	}
	unread, err := s.notifications.CountUnread(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		Submissions:   summarizeSubmissions(submissions),
		Refunds:       summarizeRefunds(refunds),
		Notifications: NotificationCounters{Unread: unread},
	}
	stats.Contacts.Total = len(contacts)
	for _, c := range contacts {
		if !c.IsRead {
			stats.Contacts.Unread++
		}
	}
	stats.Admins.Total = len(admins)
	for _, a := range admins {
		if a.Status == domain.AdminStatusPendingAuthorization {
			stats.Admins.Pending++
		}
	}
	return stats, nil
}

func summarizeSubmissions(submissions []domain.Submission) SubmissionStatistics {
	out := SubmissionStatistics{
		Total:            len(submissions),
		ByStatus:         map[string]int{},
		ByType:           map[string]int{},
		TotalAmount:      decimal.Zero,
		VerifiedAmount:   decimal.Zero,
		AverageAmount:    decimal.Zero,
		VerificationRate: decimal.Zero,
		RejectionRate:    decimal.Zero,
	}
	for _, sub := range submissions {
		out.ByStatus[string(sub.Status)]++
		out.ByType[sub.Type]++
		out.TotalAmount = out.TotalAmount.Add(sub.TotalAmount())
		for _, c := range sub.Coupons {
			if c.EffectiveStatus() == domain.CouponStatusVerified {
				out.VerifiedAmount = out.VerifiedAmount.Add(c.Amount)
			}
		}
	}
	if out.Total > 0 {
		total := decimal.NewFromInt(int64(out.Total))
		hundred := decimal.NewFromInt(100)
		out.AverageAmount = out.TotalAmount.DivRound(total, 2)
		out.VerificationRate = decimal.NewFromInt(int64(out.ByStatus[string(domain.SubmissionStatusVerified)])).
			Mul(hundred).DivRound(total, 1)
		out.RejectionRate = decimal.NewFromInt(int64(out.ByStatus[string(domain.SubmissionStatusRejected)])).
			Mul(hundred).DivRound(total, 1)
	}
	return out
}

func summarizeRefunds(refunds []domain.RefundRequest) RefundStatistics {
	out := RefundStatistics{
		Total:          len(refunds),
		ByStatus:       map[string]int{},
		TotalRequested: decimal.Zero,
		TotalRefunded:  decimal.Zero,
	}
	for _, r := range refunds {
		out.ByStatus[string(r.Status)]++
		out.TotalRequested = out.TotalRequested.Add(r.TotalAmount)
		if r.Status == domain.RefundStatusCompleted {
			out.TotalRefunded = out.TotalRefunded.Add(r.TotalAmount)
		}
	}
	return out
}
