package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/techcart/internal/domain"
)

type ReviewUC struct {
	Products domain.ProductRepo
	// Now defaults to time.Now.
	Now func() time.Time
}

type ReviewInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,max=500"`
}

// Add appends the user's review and recomputes the product rating in the same atomic
// update. A second review by the same user is a conflict and leaves the product untouched.
func (uc *ReviewUC) Add(ctx context.Context, productID uuid.UUID, userID string, in ReviewInput) (*domain.Product, error) {
	const op = "ReviewUC.Add"

	in.Comment = strings.TrimSpace(in.Comment)
	if err := validateStruct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%s: %w", op, domain.NewValidationError("user is required"))
	}

	p, err := uc.Products.UpdateReviews(ctx, productID, func(p *domain.Product) error {
		if !p.IsActive {
			return fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
		}
		if p.HasReviewFrom(userID) {
			return domain.NewConflict(domain.ReasonReviewed)
		}
		p.Reviews = append(p.Reviews, domain.Review{
			ID:        uuid.New(),
			ProductID: p.ID,
			UserID:    userID,
			Rating:    in.Rating,
			Comment:   in.Comment,
			CreatedAt: uc.now(),
		})
		p.ApplyRating()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (uc *ReviewUC) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}
