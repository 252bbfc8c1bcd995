package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rvworks/servicedesk/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

// Manager issues and parses the HS256 bearer tokens used by the API.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

func (m *Manager) Issue(p model.Principal) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":          p.UserID.String(),
		"dealershipId": p.DealershipID.String(),
		"role":         string(p.Role),
		"iat":          now.Unix(),
		"exp":          now.Add(m.ttl).Unix(),
	})
	return token.SignedString(m.secret)
}

func (m *Manager) Parse(raw string) (model.Principal, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return model.Principal{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.Principal{}, ErrInvalidToken
	}

	userID, err := parseUUIDClaim(claims, "sub")
	if err != nil {
		return model.Principal{}, err
	}
	dealershipID, err := parseUUIDClaim(claims, "dealershipId")
	if err != nil {
		return model.Principal{}, err
	}
	role, _ := claims["role"].(string)
	if !model.Role(role).Valid() {
		return model.Principal{}, ErrInvalidToken
	}

	return model.Principal{
		UserID:       userID,
		DealershipID: dealershipID,
		Role:         model.Role(role),
	}, nil
}

func parseUUIDClaim(claims jwt.MapClaims, key string) (uuid.UUID, error) {
	raw, _ := claims[key].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}
