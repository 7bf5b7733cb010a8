package app

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenIssuer 默认 Token 签发者
const DefaultTokenIssuer = "note-feed-service"

// ViewerContextKey gin.Context 中存放查看者身份的键
const ViewerContextKey = "viewer_token"

// TokenConfig Token 管理器配置
type TokenConfig struct {
	SecretKey string        // JWT 签名密钥
	Expiry    time.Duration // Token 过期时间，默认 7 天
	Issuer    string        // Token 签发者
}

// TokenManager Token 管理接口
type TokenManager interface {
	Generate(accountID int64) (string, error)
	Parse(token string) (*ViewerClaims, error)
}

type tokenManager struct {
	config TokenConfig
	now    func() time.Time
}

// NewTokenManager 创建 TokenManager
func NewTokenManager(cfg TokenConfig) TokenManager {
	if cfg.Expiry == 0 {
		cfg.Expiry = 7 * 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultTokenIssuer
	}
	return &tokenManager{config: cfg, now: time.Now}
}

// ViewerClaims JWT 中携带的查看者身份
type ViewerClaims struct {
	AccountID int64 `json:"aid"`
	jwt.RegisteredClaims
}

// Generate 为账号签发 Token
func (t *tokenManager) Generate(accountID int64) (string, error) {
	now := t.now()
	claims := &ViewerClaims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.config.Expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    t.config.Issuer,
			Subject:   strconv.FormatInt(accountID, 10),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.config.SecretKey))
}

// Parse 解析并校验 Token
func (t *tokenManager) Parse(token string) (*ViewerClaims, error) {
	claims := &ViewerClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(t.config.SecretKey), nil
	}, jwt.WithIssuer(t.config.Issuer))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.AccountID <= 0 {
		return nil, fmt.Errorf("token carries no account")
	}
	return claims, nil
}

// SetViewer 将查看者身份写入 gin.Context
func SetViewer(ctx *gin.Context, claims *ViewerClaims) {
	ctx.Set(ViewerContextKey, claims)
}

// GetUID 返回当前查看者账号 ID，匿名请求返回 0
func GetUID(ctx *gin.Context) (out int64) {
	if v, exist := ctx.Get(ViewerContextKey); exist {
		if claims, ok := v.(*ViewerClaims); ok {
			out = claims.AccountID
		}
	}
	return
}
