// Package token 负责验证外部身份提供商签发的会话令牌 (JWT)。
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTManager 负责管理会话令牌的验证（以及测试/开发环境下的签发）。
type JWTManager struct {
	secretKey []byte        // secretKey 与身份提供商共享的验签密钥
	tokenDur  time.Duration // tokenDur 定义了自签令牌的有效期
}

// SessionClaims 是身份提供商在令牌中携带的声明。
// UserID 是外部用户标识；Plan 与 Features 共同构成用户的权益快照，
// 对应提供商的 has({plan}) / has({feature}) 谓词。
type SessionClaims struct {
	UserID   string   `json:"userId"`
	Plan     string   `json:"plan"`
	Features []string `json:"features"`
	jwt.RegisteredClaims
}

// HasPlan 判断用户是否处于指定套餐。
func (c *SessionClaims) HasPlan(plan string) bool {
	return c.Plan == plan
}

// HasFeature 判断用户的权益快照中是否包含指定特性开关。
func (c *SessionClaims) HasFeature(name string) bool {
	for _, f := range c.Features {
		if f == name {
			return true
		}
	}
	return false
}

// NewJWTManager 创建一个新的 JWTManager 实例。
// secret: 与身份提供商共享的验签密钥。
// tokenExpireHours: 自签令牌的过期时间（小时），仅用于测试与开发环境。
func NewJWTManager(secret string, tokenExpireHours int) *JWTManager {
	return &JWTManager{
		secretKey: []byte(secret),
		tokenDur:  time.Hour * time.Duration(tokenExpireHours),
	}
}

// GenerateToken 签发一个带有权益快照的会话令牌。
// 生产环境中令牌由外部身份提供商签发，此方法仅用于测试与本地联调。
func (m *JWTManager) GenerateToken(userID, plan string, features []string) (string, error) {
	claims := SessionClaims{
		UserID:   userID,
		Plan:     plan,
		Features: features,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.tokenDur)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// VerifyToken 验证给定的令牌字符串。
// 如果令牌有效，返回其中的 SessionClaims；签名不匹配或已过期则返回错误。
func (m *JWTManager) VerifyToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 检查签名方法是否为 HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
