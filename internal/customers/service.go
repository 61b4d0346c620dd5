package customers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gang93/pos-backend/pkg/db"
	"github.com/gang93/pos-backend/pkg/db/models"
	dbtypes "github.com/gang93/pos-backend/pkg/db/types"
	pkgerrors "github.com/gang93/pos-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service manages loyalty members and point balances.
type Service interface {
	List(ctx context.Context, search string) ([]models.CustomerReward, error)
	Get(ctx context.Context, id int64) (*models.CustomerReward, error)
	Rewards(ctx context.Context, id int64) (*RewardsView, error)
	Create(ctx context.Context, input CreateInput) (*models.CustomerReward, error)
	AdjustPoints(ctx context.Context, id int64, input AdjustPointsInput) (*RewardsView, error)
}

// CreateInput carries a new loyalty member's details.
type CreateInput struct {
	FirstName   string
	LastName    string
	DOB         *dbtypes.Date
	PhoneNumber string
	Email       string
}

// AdjustPointsInput earns (positive) or redeems (negative) points.
type AdjustPointsInput struct {
	Points int64
	Reason string
}

// RewardsView is the point balance plus the effect of the last adjustment.
type RewardsView struct {
	CustomerID     int64 `json:"customerId"`
	Points         int   `json:"points"`
	PointsEarned   int64 `json:"pointsEarned"`
	PointsRedeemed int64 `json:"pointsRedeemed"`
}

type service struct {
	repo Repository
	tx   db.TxRunner
	now  func() time.Time
}

// NewService wires the customers service.
func NewService(repo Repository, tx db.TxRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, search string) ([]models.CustomerReward, error) {
	rows, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list customers")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.CustomerReward, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get customer")
	}
	if customer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return customer, nil
}

func (s *service) Rewards(ctx context.Context, id int64) (*RewardsView, error) {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RewardsView{CustomerID: customer.CustomerID, Points: customer.Points}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.CustomerReward, error) {
	customer := &models.CustomerReward{
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		DOB:         input.DOB,
		PhoneNumber: strings.TrimSpace(input.PhoneNumber),
		Email:       strings.TrimSpace(input.Email),
		DateJoined:  dbtypes.NewDate(s.now()),
	}
	if customer.FirstName == "" || customer.LastName == "" || customer.Email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first name, last name and email are required")
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		if db.IsUniqueViolation(err, "customer_rewards_email_unique", "customer_rewards.email") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create customer")
	}
	return customer, nil
}

// AdjustPoints applies the delta with one conditional UPDATE and reads the new
// balance back inside the same transaction.
func (s *service) AdjustPoints(ctx context.Context, id int64, input AdjustPointsInput) (*RewardsView, error) {
	var view *RewardsView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		applied, err := repo.AddPoints(ctx, id, input.Points)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update points")
		}
		customer, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read points")
		}
		if customer == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		if !applied {
			return pkgerrors.New(pkgerrors.CodeValidation, "insufficient points").
				WithDetails(map[string]any{"points": customer.Points, "requested": input.Points})
		}
		view = &RewardsView{
			CustomerID:     customer.CustomerID,
			Points:         customer.Points,
			PointsEarned:   max(0, input.Points),
			PointsRedeemed: -min(0, input.Points),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}
