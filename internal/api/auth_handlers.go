package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/staybook/staybook-server/internal/domain"
	"github.com/staybook/staybook-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	var limit huma.Middlewares
	if s.authRateLimiter != nil {
		limit = huma.Middlewares{s.rateLimitMiddleware(s.authRateLimiter)}
	}

	huma.Register(s.api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/register",
		Summary:       "Register new user",
		Description:   "Creates a user account. Emails are unique case-insensitively.",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusOK,
		Middlewares:   limit,
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID:   "login",
		Method:        http.MethodPost,
		Path:          "/login",
		Summary:       "User login",
		Description:   "Checks credentials and returns a bearer token",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusOK,
		Middlewares:   limit,
	}, s.handleLogin)
}

// === DTOs ===

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	_        struct{} `json:"-" additionalProperties:"true"`
	Name     string   `json:"name" required:"false" doc:"Display name"`
	Email    string   `json:"email" required:"false" doc:"User email address"`
	Password string   `json:"password" required:"false" doc:"User password"`
}

// RegisterInput wraps the register request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

// RegisterResponse contains the created user.
type RegisterResponse struct {
	Success bool        `json:"success" doc:"Always true"`
	NewUser domain.User `json:"newUser" doc:"Created user without password"`
}

// RegisterOutput wraps the register response for Huma.
type RegisterOutput struct {
	Body RegisterResponse
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	_        struct{} `json:"-" additionalProperties:"true"`
	Email    string   `json:"email" required:"false" doc:"User email"`
	Password string   `json:"password" required:"false" doc:"User password"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// LoginResponse contains the token and the user it was issued to.
type LoginResponse struct {
	Success bool                `json:"success" doc:"Always true"`
	User    service.LoginResult `json:"user" doc:"Access token and user summary"`
}

// LoginOutput wraps the login response for Huma.
type LoginOutput struct {
	Body LoginResponse
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
	user, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Name:     input.Body.Name,
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, s.fail(err)
	}

	return &RegisterOutput{Body: RegisterResponse{Success: true, NewUser: *user}}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	res, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, s.fail(err)
	}

	return &LoginOutput{Body: LoginResponse{Success: true, User: *res}}, nil
}
