package near

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/guest-wallet/internal/common"
	"github.com/AlexZinkM/guest-wallet/internal/contract"
	"github.com/AlexZinkM/guest-wallet/internal/model"
)

// Mint mints a token owned by the active account.
func (a *App) Mint(ctx context.Context, metadata string) (*model.MintResponse, error) {
	var resp *model.MintResponse
	err := a.withIdentity(func(id contract.Identity) error {
		tokenID, err := a.invoker.Mint(background(ctx), id, metadata)
		if err != nil {
			return err
		}
		resp = &model.MintResponse{
			TokenID: tokenID,
			OwnerID: id.Owner(),
			Method:  contract.MintMethod(id.Kind),
		}
		return nil
	})
	return resp, err
}

// Transfer gives a token of the active account to newOwnerID.
func (a *App) Transfer(ctx context.Context, tokenID uint64, newOwnerID string) (*model.TxResponse, error) {
	err := a.withIdentity(func(id contract.Identity) error {
		return a.invoker.Transfer(background(ctx), id, tokenID, newOwnerID)
	})
	if err != nil {
		return nil, err
	}
	return &model.TxResponse{Success: true, Method: contract.MethodTransfer}, nil
}

// SetPrice lists a token for sale. amount is in NEAR; "0" withdraws it from sale.
func (a *App) SetPrice(ctx context.Context, tokenID uint64, amount string) (*model.TxResponse, error) {
	price, err := common.NEARToYocto(amount)
	if err != nil {
		return nil, &contract.Error{Kind: contract.KindInvalidArgument, Method: contract.MethodSetPrice, Message: fmt.Sprintf("invalid amount: %v", err)}
	}
	err = a.withIdentity(func(id contract.Identity) error {
		return a.invoker.SetPrice(background(ctx), id, tokenID, price)
	})
	if err != nil {
		return nil, err
	}
	return &model.TxResponse{Success: true, Method: contract.MethodSetPrice}, nil
}

// Purchase buys a token for the active account at its listed price.
func (a *App) Purchase(ctx context.Context, tokenID uint64) (*model.TxResponse, error) {
	err := a.withIdentity(func(id contract.Identity) error {
		_, err := a.invoker.Purchase(background(ctx), id, tokenID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &model.TxResponse{Success: true, Method: contract.MethodPurchase}, nil
}

// Withdraw pays out the sale proceeds of beneficiary, the active account when empty.
func (a *App) Withdraw(ctx context.Context, beneficiary string) (*model.TxResponse, error) {
	err := a.withIdentity(func(id contract.Identity) error {
		return a.invoker.Withdraw(background(ctx), id, beneficiary)
	})
	if err != nil {
		return nil, err
	}
	return &model.TxResponse{Success: true, Method: contract.MethodWithdraw}, nil
}
