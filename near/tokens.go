package near

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/AlexZinkM/guest-wallet/internal/common"
	"github.com/AlexZinkM/guest-wallet/internal/model"
)

// maxTokenScan bounds how many token ids one listing walks.
const maxTokenScan = 500

// ListTokens walks token ids 1..get_num_tokens and returns the ones matching
// the filters, newest first.
func (a *App) ListTokens(ctx context.Context, req *model.TokenListRequest) (*model.TokenListResponse, error) {
	ctx = background(ctx)
	if req == nil {
		req = &model.TokenListRequest{}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	owner := req.Owner
	if req.Mine {
		accountID, err := a.accountID()
		if err != nil {
			return nil, err
		}
		owner = &accountID
	}

	total, err := a.invoker.GetNumTokens(ctx)
	if err != nil {
		return nil, err
	}

	from, to := uint64(1), total
	if req.FromID != nil {
		from = *req.FromID
	}
	if req.ToID != nil && *req.ToID < to {
		to = *req.ToID
	}
	if to >= from && to-from+1 > maxTokenScan {
		from = to - maxTokenScan + 1
	}

	tokens := make([]model.Token, 0)
	for id := from; id <= to && id != 0; id++ {
		ownerID, err := a.invoker.GetTokenOwner(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to read owner of token %d: %w", id, err)
		}

		// Filter by owner
		if owner != nil && *owner != ownerID {
			continue
		}

		metadata, err := a.invoker.GetTokenMetadata(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to read metadata of token %d: %w", id, err)
		}

		// Filter by metadata substring
		if req.Contains != nil && !strings.Contains(strings.ToLower(metadata), strings.ToLower(*req.Contains)) {
			continue
		}

		yocto, err := a.invoker.GetPrice(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to read price of token %d: %w", id, err)
		}
		price := common.YoctoToNEAR(yocto)

		// Filter by price (integer comparison, no float precision issues)
		if req.MinPrice != nil {
			cmp, err := common.CompareNEARAmounts(price, *req.MinPrice)
			if err != nil {
				return nil, fmt.Errorf("failed to compare min price: %w", err)
			}
			if cmp < 0 {
				continue
			}
		}
		if req.MaxPrice != nil {
			cmp, err := common.CompareNEARAmounts(price, *req.MaxPrice)
			if err != nil {
				return nil, fmt.Errorf("failed to compare max price: %w", err)
			}
			if cmp > 0 {
				continue
			}
		}

		tokens = append(tokens, model.Token{
			ID:       id,
			OwnerID:  ownerID,
			Metadata: metadata,
			Price:    price,
		})
	}

	// Sort by id DESC (newest first)
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].ID > tokens[j].ID
	})

	return &model.TokenListResponse{
		Total:  total,
		Tokens: tokens,
	}, nil
}
