package httpadapter

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
	"github.com/praktiki/internship-credit-portal/internal/core/ports"
)

const (
	roleMentor  = "mentor"
	roleStudent = "student"
)

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies the portal's two token kinds: a
// single configured mentor account, and ABC student accounts provisioned
// by approvals.
type Authenticator struct {
	secret         []byte
	ttl            time.Duration
	mentorUsername string
	mentorPassword string
	students       ports.StudentRepository
}

func NewAuthenticator(
	secret, mentorUsername, mentorPassword string,
	ttl time.Duration,
	students ports.StudentRepository,
) *Authenticator {
	return &Authenticator{
		secret:         []byte(secret),
		ttl:            ttl,
		mentorUsername: mentorUsername,
		mentorPassword: mentorPassword,
		students:       students,
	}
}

func (a *Authenticator) MentorLogin(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.mentorUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.mentorPassword)) == 1
	if !userOK || !passOK {
		return "", domain.WrapError(domain.ErrUnauthorized, "mentor login", errors.New("bad credentials"))
	}
	return a.issue(username, roleMentor)
}

func (a *Authenticator) StudentLogin(ctx context.Context, apaarID, password string) (string, error) {
	student, err := a.students.GetStudent(ctx, apaarID)
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(password)); err != nil {
		return "", domain.WrapError(domain.ErrUnauthorized, "student login", errors.New("bad credentials"))
	}
	return a.issue(apaarID, roleStudent)
}

func (a *Authenticator) issue(subject, role string) (string, error) {
	now := time.Now().UTC()
	claims := tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the bearer token and role and returns the subject.
func (a *Authenticator) Verify(tokenString, wantRole string) (string, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return "", domain.WrapError(domain.ErrUnauthorized, "verify token", errors.New("invalid token"))
	}
	if claims.Role != wantRole {
		return "", domain.WrapError(domain.ErrUnauthorized, "verify token", errors.New("wrong role"))
	}
	return claims.Subject, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

func (rt *Router) requireMentor(r *http.Request) error {
	_, err := rt.auth.Verify(bearerToken(r), roleMentor)
	return err
}

func (rt *Router) requireStudent(r *http.Request) (string, error) {
	return rt.auth.Verify(bearerToken(r), roleStudent)
}
