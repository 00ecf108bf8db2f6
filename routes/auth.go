package routes

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"voyages-server/models"
	"voyages-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler owns identity issuance: register, login and refresh.
type AuthHandler struct {
	DB     *gorm.DB
	Tokens *utils.TokenManager
}

type RegisterUserInput struct {
	FirstName string `json:"firstName" validate:"required,max=256"`
	LastName  string `json:"lastName" validate:"required,max=256"`
	Email     string `json:"email" validate:"required,max=256,email"`
	Password  string `json:"password" validate:"required,min=6,max=256"`
}

type LoginUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Register(ctx iris.Context) {
	var userInput RegisterUserInput
	if err := ctx.ReadJSON(&userInput); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	email := strings.ToLower(userInput.Email)

	var existingUser models.User
	err := h.DB.Where("email = ?", email).First(&existingUser).Error
	if err == nil {
		utils.JSONError(ctx, iris.StatusConflict, "Email already registered")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Println("register lookup failed:", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(userInput.Password)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	newUser := models.User{
		FirstName: userInput.FirstName,
		LastName:  userInput.LastName,
		Email:     email,
		Password:  hashedPassword,
		Role:      models.RoleUser,
	}

	if err := h.DB.Create(&newUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.JSONError(ctx, iris.StatusConflict, "Email already registered")
			return
		}
		log.Println("register failed:", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	h.returnUser(&newUser, ctx)
}

func (h *AuthHandler) Login(ctx iris.Context) {
	var userInput LoginUserInput
	if err := ctx.ReadJSON(&userInput); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	errorMsg := "Invalid email or password."

	var existingUser models.User
	err := h.DB.Where("email = ?", strings.ToLower(userInput.Email)).First(&existingUser).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.JSONError(ctx, iris.StatusUnauthorized, errorMsg)
		return
	}
	if err != nil {
		log.Println("login lookup failed:", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(existingUser.Password), []byte(userInput.Password)) != nil {
		utils.JSONError(ctx, iris.StatusUnauthorized, errorMsg)
		return
	}

	h.returnUser(&existingUser, ctx)
}

// Refresh rotates a verified refresh token: the presented token must still be
// on the allow-list, it is consumed, and a fresh pair is issued. Runs behind
// the refresh-token verifier.
func (h *AuthHandler) Refresh(ctx iris.Context) {
	token := jwt.GetVerifiedToken(ctx)
	if token == nil {
		utils.JSONError(ctx, iris.StatusUnauthorized, "Invalid token")
		return
	}

	ok, err := h.Tokens.Rotate(string(token.Token))
	if err != nil {
		log.Println("refresh rotation failed:", err)
		utils.CreateInternalServerError(ctx)
		return
	}
	if !ok {
		utils.JSONError(ctx, iris.StatusUnauthorized, "Invalid token")
		return
	}

	userID, parseErr := strconv.ParseUint(token.StandardClaims.Subject, 10, 32)
	if parseErr != nil {
		utils.JSONError(ctx, iris.StatusUnauthorized, "Invalid token")
		return
	}

	var user models.User
	if err := h.DB.First(&user, uint(userID)).Error; err != nil {
		utils.JSONError(ctx, iris.StatusUnauthorized, "Unknown user")
		return
	}

	h.returnUser(&user, ctx)
}

func (h *AuthHandler) returnUser(user *models.User, ctx iris.Context) {
	accessToken, refreshToken, tokenErr := h.Tokens.CreateTokenPair(user)
	if tokenErr != nil {
		log.Println("token pair creation failed:", tokenErr)
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"ID":           user.ID,
		"firstName":    user.FirstName,
		"lastName":     user.LastName,
		"email":        user.Email,
		"role":         user.Role,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

func hashAndSaltPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
