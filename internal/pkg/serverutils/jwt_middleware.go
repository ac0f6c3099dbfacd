package serverutils

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	LocalUserID    = "user_id"
	LocalUserEmail = "user_email"
)

// JwtMiddleware rejects requests without a valid bearer token.
func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr, ok := bearerToken(ctx)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}

		claims, err := parseClaims(tokenStr, secret)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		setIdentity(ctx, claims)
		return ctx.Next()
	}
}

// OptionalJwtMiddleware attaches the identity of a valid token and lets anonymous
// requests through. An invalid token is treated as anonymous.
func OptionalJwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if secret == "" {
			return ctx.Next()
		}
		if tokenStr, ok := bearerToken(ctx); ok {
			if claims, err := parseClaims(tokenStr, secret); err == nil {
				setIdentity(ctx, claims)
			}
		}
		return ctx.Next()
	}
}

// Identity returns the user id and email set by the JWT middleware, if any.
func Identity(ctx *fiber.Ctx) (userID, email string) {
	userID, _ = ctx.Locals(LocalUserID).(string)
	email, _ = ctx.Locals(LocalUserEmail).(string)
	return userID, email
}

// bearerToken reads the Authorization header, then the "token" query parameter that
// browsers use for websocket handshakes.
func bearerToken(ctx *fiber.Ctx) (string, bool) {
	authHeader := ctx.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:]), true
	}
	if token := ctx.Query("token"); token != "" {
		return token, true
	}
	return "", false
}

func parseClaims(tokenStr, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func setIdentity(ctx *fiber.Ctx, claims jwt.MapClaims) {
	if id, ok := claims["user_id"].(string); ok {
		ctx.Locals(LocalUserID, id)
	} else if sub, err := claims.GetSubject(); err == nil && sub != "" {
		ctx.Locals(LocalUserID, sub)
	}
	if email, ok := claims["email"].(string); ok {
		ctx.Locals(LocalUserEmail, email)
	}
}
