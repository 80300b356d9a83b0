package model

import "strconv"

// AddKeyRequest is the body of POST /add-key.
type AddKeyRequest struct {
	PublicKey string `json:"publicKey"`
}

// HasAccessKeyRequest is the body of the signed POST /has-access-key.
// Signature is base64 ed25519 over "<contractName>:<issuedAt>".
type HasAccessKeyRequest struct {
	AccountID    string `json:"accountId"`
	ContractName string `json:"contractName"`
	PublicKey    string `json:"publicKey"`
	IssuedAt     int64  `json:"issuedAt"`
	Signature    string `json:"signature"`
}

// IssuerResponse is returned by every issuer endpoint.
type IssuerResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// VerificationMessage is the payload signed for /has-access-key.
func VerificationMessage(contractName string, issuedAt int64) []byte {
	return []byte(contractName + ":" + strconv.FormatInt(issuedAt, 10))
}
