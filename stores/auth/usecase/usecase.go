package usecase

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/decentraland/land-auction/base/ctx"
	"github.com/decentraland/land-auction/base/ethereum"
	"github.com/decentraland/land-auction/domain"
)

type impl struct {
	jwtSecret []byte
}

func New(jwtSecret string) domain.AuthUsecase {
	return &impl{
		jwtSecret: []byte(jwtSecret),
	}
}

func (im *impl) SignToken(ctx ctx.Ctx, address domain.Address, message, signature string) (string, error) {
	valid, err := ethereum.ValidateMsgSignature([]byte(message), signature, string(address))
	if err != nil {
		ctx.WithField("err", err).Error("ethereum.ValidateMsgSignature failed")
		return "", err
	}
	if !valid {
		return "", domain.ErrInvalidSignature
	}

	claims := domain.JwtCustomClaims{
		Address: string(address),
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	if ss, err := token.SignedString(im.jwtSecret); err != nil {
		ctx.WithField("err", err).Error("token.SignedString failed")
		return "", err
	} else {
		return ss, nil
	}
}

func (im *impl) ParseToken(ctx ctx.Ctx, str string) (string, error) {
	token, err := jwt.ParseWithClaims(str, &domain.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("Unexpected signing method: %v", token.Header["alg"])
		}
		return im.jwtSecret, nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(*domain.JwtCustomClaims); ok && token.Valid {
		return claims.Address, nil
	}

	return "", domain.ErrInvalidSignature
}
