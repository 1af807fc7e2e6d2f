package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bookstore-admin/internal/core/model"
)

var ErrNoToken = errors.New("login response carried no token")

// AuthSession owns the login/logout lifecycle of the stored credential.
type AuthSession struct {
	client AuthClient
	store  CredentialStore
	log    *slog.Logger
}

func NewAuthSession(client AuthClient, store CredentialStore, logger *slog.Logger) *AuthSession {
	return &AuthSession{client: client, store: store, log: orDefault(logger)}
}

func (s *AuthSession) Login(ctx context.Context, email, password string) error {
	req := model.LoginRequest{Email: email, Password: password}
	if err := model.Validate(req); err != nil {
		return err
	}
	res, err := s.client.Login(ctx, req)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if res.Token == "" {
		return ErrNoToken
	}
	if err := s.store.Save(res.Token); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	s.log.Info("logged in", "email", email)
	return nil
}

// Register returns the server's message, or a default one.
func (s *AuthSession) Register(ctx context.Context, req model.RegisterRequest) (string, error) {
	if err := model.Validate(req); err != nil {
		return "", err
	}
	res, err := s.client.Register(ctx, req)
	if err != nil {
		return "", fmt.Errorf("registration failed: %w", err)
	}
	return messageOr(res.Message, "registered"), nil
}

func (s *AuthSession) Logout() error {
	return s.store.Clear()
}

func (s *AuthSession) Authenticated() bool {
	_, ok := s.store.Token()
	return ok
}
