// Package auth 游客令牌的签发与校验
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken 令牌无效或已过期
var ErrInvalidToken = errors.New("令牌无效")

const maxNameLength = 24

// Claims 令牌内容
type Claims struct {
	ParticipantID string `json:"pid"`
	Name          string `json:"name"`
	jwt.RegisteredClaims
}

// Issuer 令牌签发器
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer 创建签发器
func NewIssuer(secret, issuer string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// IssueGuest 为游客生成新的参与者 id 并签发令牌
func (i *Issuer) IssueGuest(name string) (string, *Claims, error) {
	name = strings.TrimSpace(name)
	if r := []rune(name); len(r) > maxNameLength {
		name = string(r[:maxNameLength])
	}
	id := uuid.NewString()
	if name == "" {
		name = "Guest-" + id[:4]
	}

	now := i.now()
	claims := &Claims{
		ParticipantID: id,
		Name:          name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("签发令牌失败: %w", err)
	}
	return token, claims, nil
}

// Verify 校验令牌
func (i *Issuer) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.ParticipantID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
