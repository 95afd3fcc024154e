package auth

import (
	"net/http"
	"strings"

	"queue_hack/internal/handlers"
	"queue_hack/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func parseBearer(c *gin.Context) (jwt.MapClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{
			Code:    "NO_AUTH_HEADER",
			Message: "Требуется авторизация",
		})
		c.Abort()
		return nil, false
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return handlers.AccessSecret, nil
	})
	if err != nil || !token.Valid {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{
			Code:    "INVALID_TOKEN",
			Message: "Неверный или просроченный токен",
		})
		c.Abort()
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{
			Code:    "INVALID_TOKEN_CLAIMS",
			Message: "Невозможно прочитать claims токена",
		})
		c.Abort()
		return nil, false
	}
	return claims, true
}

// UserAuthMiddleware проверяет access токен пользователя и кладёт userID
// в контекст запроса.
func UserAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c)
		if !ok {
			return
		}
		if role, _ := claims["role"].(string); role != "user" {
			c.JSON(http.StatusForbidden, response.ErrorResponse{
				Code:    "WRONG_ROLE",
				Message: "Эндпоинт доступен только пользователям",
			})
			c.Abort()
			return
		}
		subID, ok := claims["sub_id"].(float64)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:    "INVALID_SUB_ID",
				Message: "Невозможно извлечь идентификатор",
			})
			c.Abort()
			return
		}
		c.Set("userID", uint(subID))
		c.Next()
	}
}

// InstitutionAuthMiddleware проверяет access токен учреждения и кладёт
// institutionID в контекст запроса.
func InstitutionAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c)
		if !ok {
			return
		}
		if role, _ := claims["role"].(string); role != "institution" {
			c.JSON(http.StatusForbidden, response.ErrorResponse{
				Code:    "WRONG_ROLE",
				Message: "Эндпоинт доступен только учреждениям",
			})
			c.Abort()
			return
		}
		subID, ok := claims["sub_id"].(float64)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:    "INVALID_SUB_ID",
				Message: "Невозможно извлечь идентификатор",
			})
			c.Abort()
			return
		}
		c.Set("institutionID", uint(subID))
		c.Next()
	}
}
