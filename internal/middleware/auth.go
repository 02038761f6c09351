package middleware

import (
	"fmt"

	"lecture-terrace/live-qa/config"
	"lecture-terrace/live-qa/internal/dto"
	"lecture-terrace/live-qa/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims JWT 载荷
// 令牌由外部身份服务签发，这里只做校验
type Claims struct {
	UserID uint   `json:"user_id"`
	Utorid string `json:"utorid"`
	Email  string `json:"email"`
	Role   string `json:"role"` // STUDENT, TA, PROFESSOR
	jwt.RegisteredClaims
}

// parseToken 从 cookie 或 Authorization header 中解析 token
func parseToken(c *gin.Context) (*Claims, error) {
	var tokenString string

	// 优先从 cookie 中获取 access_token
	tokenString, err := c.Cookie("access_token")
	if err != nil || tokenString == "" {
		// 如果 cookie 中没有，尝试从 Authorization header 获取
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			return nil, fmt.Errorf("missing authentication token")
		}

		// 验证格式: Bearer <token>
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenString = authHeader[7:]
		} else {
			return nil, fmt.Errorf("malformed authorization header")
		}
	}

	// 解析 token
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名算法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.Conf.JWT.Secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("invalid authentication token")
	}

	// 提取 claims
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid authentication token")
}

// JWTAuth JWT 认证中间件（必需认证）
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseToken(c)
		if err != nil {
			dto.ErrorResponse(c, response.NewBusinessError(
				response.WithErrorCode(response.Unauthorized),
				response.WithErrorMessage(err.Error()),
			))
			c.Abort()
			return
		}

		// 将用户信息存入上下文
		c.Set("user_id", claims.UserID)
		c.Set("utorid", claims.Utorid)
		c.Set("email", claims.Email)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}
