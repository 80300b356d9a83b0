package model

// SealedFile is the on-disk envelope of an encrypted store file.
type SealedFile struct {
	Version    int    `json:"version"`
	LogN       int    `json:"logN"` // scrypt cost, N = 2^LogN
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"cipherText"`
}

// WalletAccount is a full-access key for a named account, in the layout of
// a NEAR credentials file (~/.near-credentials/<network>/<account>.json).
type WalletAccount struct {
	AccountID  string `json:"account_id"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}
