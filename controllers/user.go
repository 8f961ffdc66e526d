package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"marketplace/apperr"
	"marketplace/models"
	"marketplace/services"
	"marketplace/utils"
)

// UserController handles registration, login and profile requests
type UserController struct {
	Users *services.UserService
	Email *utils.EmailService
}

func NewUserController(users *services.UserService, email *utils.EmailService) *UserController {
	return &UserController{Users: users, Email: email}
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		FullName    string `json:"full_name"`
		Address     string `json:"address"`
		PhoneNumber string `json:"phone_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteError(w, apperr.E(apperr.InvalidState, "Invalid input"))
		return
	}

	user := &models.User{
		Username:    input.Username,
		Email:       input.Email,
		FullName:    input.FullName,
		Address:     input.Address,
		PhoneNumber: input.PhoneNumber,
	}
	saved, err := uc.Users.Register(r.Context(), user, input.Password)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	go func(email, name string) {
		if err := uc.Email.SendWelcomeEmail(email, name); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", email, err)
		}
	}(saved.Email, saved.FullName)

	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"status":  "success",
		"message": "User registered successfully",
		"user":    saved,
	})
}

// Login verifies credentials and issues a JWT
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteError(w, apperr.E(apperr.InvalidState, "Invalid input"))
		return
	}

	user, err := uc.Users.Authenticate(r.Context(), input.Username, input.Password)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	token, err := utils.GenerateJWT(user.Username, user.Email, user.RoleNames())
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteSuccess(w, "Login successful", map[string]any{
		"token": token,
		"user":  user,
	})
}

// GetProfile returns the authenticated user's account
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, uc.Users)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, "Profile fetched successfully", map[string]any{"user": user})
}

// PromoteToAdmin grants the ADMIN role to a user (admin only)
func (uc *UserController) PromoteToAdmin(w http.ResponseWriter, r *http.Request) {
	userID := routeVar(r, "id")

	user, err := uc.Users.PromoteToAdmin(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, "User promoted successfully", map[string]any{"user": user})
}
