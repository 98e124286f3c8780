package domain

import (
	"github.com/golang-jwt/jwt"

	"github.com/decentraland/land-auction/base/ctx"
)

type JwtCustomClaims struct {
	Address string `json:"data"`
	jwt.StandardClaims
}

type AuthUsecase interface {
	// SignToken issues an access token after verifying the signature proves
	// control of the address.
	SignToken(ctx ctx.Ctx, address Address, message, signature string) (string, error)
	ParseToken(ctx ctx.Ctx, token string) (address string, err error)
}
