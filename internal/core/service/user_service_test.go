package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tuiter/tuiter-api/internal/core/domain"
	"github.com/tuiter/tuiter-api/internal/core/ports"
)

func signupInput(tag string) ports.CreateUserInput {
	return ports.CreateUserInput{
		Tag:      tag,
		Username: "User " + tag,
		Email:    tag + "@example.com",
		Password: "hunter22hunter22",
	}
}

func TestUserService_Create_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)

	created, err := svc.Create(context.Background(), signupInput("pepe"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.Tag != "pepe" {
		t.Errorf("expected tag pepe, got %q", created.Tag)
	}
	if created.PasswordHash == "hunter22hunter22" {
		t.Error("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("hunter22hunter22")); err != nil {
		t.Error("stored hash must verify against the original password")
	}
	for _, f := range domain.DefaultUserFeatures() {
		if !created.HasFeature(f) {
			t.Errorf("expected default feature %q", f)
		}
	}
	if created.HasFeature("create:tuit") {
		t.Error("content features must not be granted at signup")
	}
}

func TestUserService_Create_DuplicateTag(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)

	if _, err := svc.Create(context.Background(), signupInput("pepe")); err != nil {
		t.Fatalf("seed user failed: %v", err)
	}

	input := signupInput("PEPE")
	input.Username = "someone else"
	input.Email = "else@example.com"

	_, err := svc.Create(context.Background(), input)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var domainErr *domain.Error
	errors.As(err, &domainErr)
	if domainErr.Key != "tag" {
		t.Errorf("expected key tag, got %q", domainErr.Key)
	}
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)

	if _, err := svc.Create(context.Background(), signupInput("pepe")); err != nil {
		t.Fatalf("seed user failed: %v", err)
	}

	input := signupInput("other")
	input.Email = "PEPE@example.com"

	_, err := svc.Create(context.Background(), input)
	var domainErr *domain.Error
	if !errors.As(err, &domainErr) || domainErr.Key != "email" {
		t.Fatalf("expected validation error on email, got %v", err)
	}
}

func TestUserService_Update_PartialFields(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)

	created, _ := svc.Create(context.Background(), signupInput("pepe"))

	description := "hola"
	updated, err := svc.Update(context.Background(), created.Tag, ports.UpdateUserInput{
		Description: &description,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Description != "hola" {
		t.Errorf("expected description updated, got %q", updated.Description)
	}
	if updated.Tag != "pepe" || updated.Email != "pepe@example.com" {
		t.Error("untouched fields must keep their values")
	}
}

func TestUserService_Update_TagCollision(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)

	svc.Create(context.Background(), signupInput("pepe"))
	svc.Create(context.Background(), signupInput("toto"))

	newTag := "pepe"
	_, err := svc.Update(context.Background(), "toto", ports.UpdateUserInput{Tag: &newTag})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUserService_Update_SameTagIsNoCollision(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)

	created, _ := svc.Create(context.Background(), signupInput("pepe"))

	sameTag := created.Tag
	if _, err := svc.Update(context.Background(), created.Tag, ports.UpdateUserInput{Tag: &sameTag}); err != nil {
		t.Fatalf("re-sending the current tag must not collide: %v", err)
	}
}

func TestUserService_Ban_Nukes(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)

	created, _ := svc.Create(context.Background(), signupInput("pepe"))

	banned, err := svc.Ban(context.Background(), created.Tag, BanTypeNuke)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(banned.Features) != 1 || banned.Features[0] != domain.FeatureNuked {
		t.Errorf("expected only the nuked marker, got %v", banned.Features)
	}
	if !banned.IsNuked() {
		t.Error("banned user must report IsNuked")
	}
}

func TestUserService_Ban_UnsupportedType(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)

	created, _ := svc.Create(context.Background(), signupInput("pepe"))

	_, err := svc.Ban(context.Background(), created.Tag, "timeout")
	var domainErr *domain.Error
	if !errors.As(err, &domainErr) || domainErr.Key != "ban_type" {
		t.Fatalf("expected validation error on ban_type, got %v", err)
	}
}

func TestUserService_Ban_AlreadyNuked(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, nil, discardLogger)

	created, _ := svc.Create(context.Background(), signupInput("pepe"))
	svc.Ban(context.Background(), created.Tag, BanTypeNuke)

	_, err := svc.Ban(context.Background(), created.Tag, BanTypeNuke)
	if !errors.Is(err, domain.ErrUnprocessable) {
		t.Fatalf("expected unprocessable error, got %v", err)
	}
}

type recordingCascader struct {
	calls int
	last  uuid.UUID
}

func (r *recordingCascader) CascadeBan(_ context.Context, userID uuid.UUID) error {
	r.calls++
	r.last = userID
	return nil
}

func TestUserService_Ban_RunsCascader(t *testing.T) {
	repo := newStubUserRepo()
	cascader := &recordingCascader{}
	svc := NewUserService(repo, cascader, discardLogger)

	created, _ := svc.Create(context.Background(), signupInput("pepe"))

	if _, err := svc.Ban(context.Background(), created.Tag, BanTypeNuke); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cascader.calls != 1 || cascader.last != created.ID {
		t.Errorf("expected cascader to run once for %s, got %d calls for %s",
			created.ID, cascader.calls, cascader.last)
	}
}
