package shopapi

import (
	"bytes"
	"context"

	"github.com/shopdirect/shopdirect-manager/internal/entity"
)

// Users lists all users (customers).
func (c *Client) Users(ctx context.Context) ([]entity.Customer, error) {
	env, err := c.get(ctx, "/users", nil, "Failed to fetch customers")
	if err != nil {
		return nil, err
	}
	return decodeList[entity.Customer](env.Data, "users")
}

// UserByID fetches a single user.
func (c *Client) UserByID(ctx context.Context, id string) (*entity.Customer, error) {
	env, err := c.get(ctx, "/users/"+id, nil, "Failed to fetch customer")
	if err != nil {
		return nil, err
	}
	return decodeObject[entity.Customer](env.Data, "user")
}

// Me fetches the authenticated user.
func (c *Client) Me(ctx context.Context) (*entity.Customer, error) {
	env, err := c.get(ctx, "/users/me", nil, "Failed to fetch current user")
	if err != nil {
		return nil, err
	}
	return decodeObject[entity.Customer](env.Data, "user")
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupInput is the signup payload.
type SignupInput struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// Login authenticates against the upstream and stores the returned
// bearer token on the client.
func (c *Client) Login(ctx context.Context, creds Credentials) (*entity.Customer, error) {
	resp, err := c.cli.R().SetContext(ctx).SetBody(creds).Post("/users/login")
	env, err := decodeResponse(resp, err, "Invalid credentials. Please try again.")
	if err != nil {
		return nil, err
	}
	if env.Token != "" {
		c.SetToken(env.Token)
	}
	return decodeObject[entity.Customer](env.Data, "user")
}

// Signup registers a new account and stores the returned bearer token.
func (c *Client) Signup(ctx context.Context, in SignupInput) (*entity.Customer, error) {
	resp, err := c.cli.R().SetContext(ctx).SetBody(in).Post("/users/sign-up")
	env, err := decodeResponse(resp, err, "Failed to create account. Please try again.")
	if err != nil {
		return nil, err
	}
	if env.Token != "" {
		c.SetToken(env.Token)
	}
	return decodeObject[entity.Customer](env.Data, "user")
}

// ProfileInput is the update-profile payload, sent as multipart because
// the photo rides along with it.
type ProfileInput struct {
	Name  string
	Email string
	Photo *Upload
}

// UpdateMe updates the authenticated user's profile.
func (c *Client) UpdateMe(ctx context.Context, in ProfileInput) (*entity.Customer, error) {
	req := c.cli.R().SetContext(ctx)
	form := map[string]string{}
	if in.Name != "" {
		form["name"] = in.Name
	}
	if in.Email != "" {
		form["email"] = in.Email
	}
	req.SetMultipartFormData(form)
	if in.Photo != nil {
		req.SetMultipartField("photo", in.Photo.Filename, "application/octet-stream", bytes.NewReader(in.Photo.Content))
	}

	resp, err := req.Patch("/users/updateMe")
	env, err := decodeResponse(resp, err, "Failed to update profile")
	if err != nil {
		return nil, err
	}
	return decodeObject[entity.Customer](env.Data, "user")
}

// PasswordInput is the change-password payload.
type PasswordInput struct {
	PasswordCurrent string `json:"passwordCurrent" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// UpdatePassword changes the authenticated user's password; the upstream
// rotates the token on success.
func (c *Client) UpdatePassword(ctx context.Context, in PasswordInput) error {
	resp, err := c.cli.R().SetContext(ctx).SetBody(in).Patch("/users/updateMyPassword")
	env, err := decodeResponse(resp, err, "Failed to update password")
	if err != nil {
		return err
	}
	if env.Token != "" {
		c.SetToken(env.Token)
	}
	return nil
}
