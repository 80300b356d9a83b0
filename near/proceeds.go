package near

import (
	"context"

	"github.com/AlexZinkM/guest-wallet/internal/common"
	"github.com/AlexZinkM/guest-wallet/internal/model"
)

// GetProceeds returns the withdrawable sale proceeds of accountID, or of the
// active account when accountID is empty.
func (a *App) GetProceeds(ctx context.Context, accountID string) (*model.ProceedsResponse, error) {
	if accountID == "" {
		var err error
		if accountID, err = a.accountID(); err != nil {
			return nil, err
		}
	}

	yocto, err := a.invoker.GetProceeds(background(ctx), accountID)
	if err != nil {
		return nil, err
	}

	return &model.ProceedsResponse{
		AccountID: accountID,
		Yocto:     yocto.String(),
		NEAR:      common.YoctoToNEAR(yocto),
	}, nil
}
