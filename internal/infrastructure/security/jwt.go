// Package security provides JWT token utilities
package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ConversationClaims is the decoded payload of a conversation token.
type ConversationClaims struct {
	SessionID    string `json:"sessionId"`
	LockedIntent string `json:"lockedIntent"`
	UserType     string `json:"userType"`
	DisplayName  string `json:"displayName"`
}

// ValidateJWT validates a JWT token and returns the claims
func ValidateJWT(tokenString, jwtSecret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// GenerateConversationToken creates a JWT carried by the chat widget after a
// session authenticates. It binds the session id to the locked intent and
// verified user type.
func GenerateConversationToken(claims ConversationClaims, jwtSecret string, ttl time.Duration) (string, error) {
	mapClaims := jwt.MapClaims{
		"sessionId":    claims.SessionID,
		"lockedIntent": claims.LockedIntent,
		"userType":     claims.UserType,
		"displayName":  claims.DisplayName,
		"type":         "conversation_auth",
		"iat":          time.Now().UTC().Unix(),
		"exp":          time.Now().UTC().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)
	return token.SignedString([]byte(jwtSecret))
}

// GetConversationClaims extracts conversation claims from validated JWT claims.
func GetConversationClaims(claims jwt.MapClaims) *ConversationClaims {
	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "conversation_auth" {
		return nil
	}

	out := &ConversationClaims{}
	if v, ok := claims["sessionId"].(string); ok {
		out.SessionID = v
	}
	if v, ok := claims["lockedIntent"].(string); ok {
		out.LockedIntent = v
	}
	if v, ok := claims["userType"].(string); ok {
		out.UserType = v
	}
	if v, ok := claims["displayName"].(string); ok {
		out.DisplayName = v
	}
	if out.SessionID == "" {
		return nil
	}
	return out
}
