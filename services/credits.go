package services

import (
	"context"
	"errors"
	"strings"

	"mandi-backend/models"
	"mandi-backend/notify"
	"mandi-backend/utils"

	"gorm.io/gorm"
)

type NewCredit struct {
	CreditID     string
	CustomerName string
	CreditAmount int64
	Less         int64
	CreatedBy    string
}

// CreateCredit records a jamalu payment: the customer's balance drops by
// creditAmount + less and a "credit" ledger entry is appended.
func (e *Engine) CreateCredit(ctx context.Context, in NewCredit) (*models.Credit, error) {
	in.CreditID = strings.TrimSpace(in.CreditID)
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CreatedBy = strings.TrimSpace(in.CreatedBy)
	switch {
	case in.CustomerName == "":
		return nil, validationError("customerName is required")
	case in.CreatedBy == "":
		return nil, validationError("createdBy is required")
	case in.CreditAmount < 0 || in.Less < 0:
		return nil, validationError("creditAmount and less must not be negative")
	}
	supplied := in.CreditID != ""
	if !supplied {
		in.CreditID = NewCreditID(in.CustomerName, e.now())
	}

	credit := models.Credit{
		CreditID:     in.CreditID,
		CustomerName: in.CustomerName,
		CreditAmount: in.CreditAmount,
		Less:         in.Less,
		TotalAmount:  in.CreditAmount + in.Less,
		CreatedBy:    in.CreatedBy,
		ModifiedBy:   in.CreatedBy,
	}
	err := e.atomically(ctx, "create credit", []string{customerKey(credit.CustomerName)}, func(tx *gorm.DB) error {
		if supplied {
			if err := creditIDUnused(tx, credit.CreditID); err != nil {
				return err
			}
		}
		if _, err := e.balances.Apply(tx, Delta{
			CustomerName: credit.CustomerName,
			Type:         models.LedgerCredit,
			ReferenceID:  credit.CreditID,
			Amount:       credit.TotalAmount,
			Actor:        credit.CreatedBy,
		}); err != nil {
			return err
		}
		return tx.Create(&credit).Error
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, notify.EventNewCredit, credit)
	return &credit, nil
}

// creditIDUnused refuses a creditId that still has a ledger entry. A credit
// removed together with its linked sale keeps that entry.
func creditIDUnused(tx *gorm.DB, creditID string) error {
	var n int64
	if err := tx.Model(&models.CustomerLedger{}).
		Where("type = ? AND reference_id = ?", models.LedgerCredit, creditID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return newError(ErrConflict, CodeConflict, "creditId %q has already been used", creditID)
	}
	return nil
}

// DeleteCredit gives the credit's total back to the customer's balance,
// drops its ledger entry and removes the credit.
func (e *Engine) DeleteCredit(ctx context.Context, creditID string) (*models.Credit, error) {
	creditID = strings.TrimSpace(creditID)
	current, err := e.GetCredit(ctx, creditID)
	if err != nil {
		return nil, err
	}

	var deleted models.Credit
	err = e.atomically(ctx, "delete credit", []string{customerKey(current.CustomerName)}, func(tx *gorm.DB) error {
		credit, err := loadCredit(tx, creditID)
		if err != nil {
			return err
		}
		if _, err := e.balances.Revert(tx, Delta{
			CustomerName: credit.CustomerName,
			Type:         models.LedgerCredit,
			ReferenceID:  credit.CreditID,
			Amount:       credit.TotalAmount,
		}); err != nil {
			return err
		}
		if err := tx.Delete(credit).Error; err != nil {
			return err
		}
		deleted = *credit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

type CreditUpdate struct {
	CreditAmount *int64  `json:"creditAmount,omitempty"`
	Less         *int64  `json:"less,omitempty"`
	CustomerName *string `json:"customerName,omitempty"`
	ModifiedBy   string  `json:"modifiedBy"`
}

var creditColumns = map[string]string{
	"creditAmount": "credit_amount",
	"less":         "less",
}

// UpdateCredit changes the amounts of a credit. A changed total is re-booked
// through the balance ledger so the customer's balance follows.
func (e *Engine) UpdateCredit(ctx context.Context, creditID string, u CreditUpdate) (*models.Credit, error) {
	u.ModifiedBy = strings.TrimSpace(u.ModifiedBy)
	if u.ModifiedBy == "" {
		return nil, validationError("modifiedBy is required")
	}
	if (u.CreditAmount != nil && *u.CreditAmount < 0) || (u.Less != nil && *u.Less < 0) {
		return nil, validationError("creditAmount and less must not be negative")
	}

	current, err := e.GetCredit(ctx, creditID)
	if err != nil {
		return nil, err
	}

	var out models.Credit
	err = e.atomically(ctx, "update credit", []string{customerKey(current.CustomerName)}, func(tx *gorm.DB) error {
		credit, err := loadCredit(tx, creditID)
		if err != nil {
			return err
		}
		if err := unchanged("customerName", u.CustomerName, credit.CustomerName); err != nil {
			return err
		}

		payload := utils.Patch(&u)
		payload["modifiedBy"] = u.ModifiedBy
		if err := e.audit.Record(tx, models.HistoryCredit, credit.CreditID, credit, payload, u.ModifiedBy); err != nil {
			return err
		}

		amount, less := credit.CreditAmount, credit.Less
		if u.CreditAmount != nil {
			amount = *u.CreditAmount
		}
		if u.Less != nil {
			less = *u.Less
		}
		total := amount + less
		if total != credit.TotalAmount {
			if err := e.rebook(tx, models.LedgerCredit, credit.CustomerName, credit.CreditID, credit.TotalAmount, total, u.ModifiedBy); err != nil {
				return err
			}
		}

		cols := utils.PatchColumns(&u, creditColumns)
		cols["total_amount"] = total
		cols["modified_by"] = u.ModifiedBy
		if err := tx.Model(&models.Credit{}).Where("id = ?", credit.ID).Updates(cols).Error; err != nil {
			return err
		}
		reloaded, err := loadCredit(tx, creditID)
		if err != nil {
			return err
		}
		out = *reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func loadCredit(tx *gorm.DB, creditID string) (*models.Credit, error) {
	var c models.Credit
	if err := tx.Where("credit_id = ?", creditID).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, creditNotFound(creditID)
		}
		return nil, err
	}
	return &c, nil
}
